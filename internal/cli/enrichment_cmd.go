package cli

import (
	"context"
	"fmt"

	"github.com/sinaulab/sinau/internal/cli/formatter"
	"github.com/sinaulab/sinau/internal/service"
	"github.com/spf13/cobra"
)

func newEnrichmentCmd(app *App) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "enrichment",
		Short: "Track enrichment videos",
	}
	cmd.PersistentFlags().StringVar(&userID, "user", "", "User ID")
	_ = cmd.MarkPersistentFlagRequired("user")

	run := func(call func(ctx context.Context, args []string) (*service.EnrichmentResult, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			res, err := call(cmd.Context(), args)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEnrichment(res.Progress, res.TotalVideos, res.Completion))
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "watch ENRICHMENT_ID VIDEO_ID",
			Short: "Mark a video watched; the last one completes the enrichment",
			Args:  cobra.ExactArgs(2),
			RunE: run(func(ctx context.Context, args []string) (*service.EnrichmentResult, error) {
				return app.Enrichments.MarkVideoWatched(ctx, userID, args[0], args[1])
			}),
		},
		&cobra.Command{
			Use:   "complete ENRICHMENT_ID",
			Short: "Mark an enrichment completed without watching every video",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, args []string) (*service.EnrichmentResult, error) {
				return app.Enrichments.MarkEnrichmentCompleted(ctx, userID, args[0])
			}),
		},
		&cobra.Command{
			Use:   "show ENRICHMENT_ID",
			Short: "Show watched videos for an enrichment",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, args []string) (*service.EnrichmentResult, error) {
				return app.Enrichments.GetProgress(ctx, userID, args[0])
			}),
		},
	)

	return cmd
}
