package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sinaulab/sinau/internal/cli/formatter"
	"github.com/sinaulab/sinau/internal/domain"
	"github.com/spf13/cobra"
)

func newProgressCmd(app *App) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "progress MODULE_ID",
		Short: "Show a user's completion percentage for a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Progress.GetModuleProgress(cmd.Context(), userID, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatModuleProgress(p, args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newRankCmd(app *App) *cobra.Command {
	var userID, moduleID string

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Show a student's rank, globally or within a module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Ranking.GetRank(cmd.Context(), userID, moduleID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRank(st, scopeLabel(moduleID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	cmd.Flags().StringVar(&moduleID, "module", "", "Rank within this module instead of globally")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// minWatchInterval is the shortest --watch refresh; every tick is a ranking read.
const minWatchInterval = time.Second

func newLeaderboardCmd(app *App) *cobra.Command {
	var moduleID, highlight string
	var limit int
	var watch time.Duration

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the student leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch != 0 && watch < minWatchInterval {
				return fmt.Errorf("--watch %s must be at least %s: %w", watch, minWatchInterval, domain.ErrValidation)
			}
			title := leaderboardTitle(moduleID)
			if watch > 0 {
				m := newLeaderboardModel(cmd.Context(), app.Ranking, leaderboardQuery{
					moduleID:  moduleID,
					limit:     limit,
					highlight: highlight,
					interval:  watch,
				})
				_, err := tea.NewProgram(m,
					tea.WithContext(cmd.Context()),
					tea.WithInput(cmd.InOrStdin()),
					tea.WithOutput(cmd.OutOrStdout()),
				).Run()
				return err
			}

			standings, err := app.Ranking.Leaderboard(cmd.Context(), moduleID, limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatLeaderboard(title, standings, highlight))
			return nil
		},
	}

	cmd.Flags().StringVar(&moduleID, "module", "", "Module ID (default global)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of rows, 0 for all")
	cmd.Flags().StringVar(&highlight, "user", "", "Highlight this user")
	cmd.Flags().DurationVar(&watch, "watch", 0, "Keep the board open and refresh at this interval")

	return cmd
}

func scopeLabel(moduleID string) string {
	if moduleID == "" {
		return "global"
	}
	return "module " + moduleID
}

func leaderboardTitle(moduleID string) string {
	if moduleID == "" {
		return "Global leaderboard"
	}
	return "Leaderboard " + moduleID
}
