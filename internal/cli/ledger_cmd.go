package cli

import (
	"fmt"
	"time"

	"github.com/sinaulab/sinau/internal/cli/formatter"
	"github.com/sinaulab/sinau/internal/domain"
	"github.com/sinaulab/sinau/internal/service"
	"github.com/spf13/cobra"
)

func newCompleteCmd(app *App) *cobra.Command {
	var userID string
	var points int

	cmd := &cobra.Command{
		Use:   "complete KIND UNIT_ID",
		Short: "Mark a unit completed for a user and award its points",
		Long: "Mark a unit completed for a user and award its points.\n\n" +
			"KIND is one of: material, enrichment, cpmk, learning_objective, quiz, assignment.\n" +
			"Completing the same unit again is reported but awards nothing.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseUnitKind(args[0])
			if err != nil {
				return err
			}
			var override *int
			if cmd.Flags().Changed("points") {
				override = &points
			}
			c, err := app.Ledger.MarkCompleted(cmd.Context(), userID, kind, args[1], override)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCompletion(c))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	cmd.Flags().IntVar(&points, "points", 0, "Award this many points instead of the unit's reward")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newSubmitCmd(app *App) *cobra.Command {
	var userID, at, attachment string

	cmd := &cobra.Command{
		Use:   "submit ASSIGNMENT_ID",
		Short: "Submit an assignment; points depend on how early it arrives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.SubmitRequest{UserID: userID, AssignmentID: args[0], Attachment: attachment}
			if at != "" {
				ts, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at %q (want RFC 3339): %w", at, domain.ErrValidation)
				}
				req.SubmittedAt = ts
			}
			out, err := app.Submissions.Submit(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSubmission(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	cmd.Flags().StringVar(&at, "at", "", "Submission time, RFC 3339 (default now)")
	cmd.Flags().StringVar(&attachment, "attachment", "", "Reference to the uploaded file")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newGradeCmd(app *App) *cobra.Command {
	var score int
	var feedback string

	cmd := &cobra.Command{
		Use:   "grade SUBMISSION_ID",
		Short: "Record a score and feedback on a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := app.Submissions.Grade(cmd.Context(), args[0], score, feedback)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Graded submission %s: score %d\n", formatter.TruncID(sub.ID), *sub.Score)
			return nil
		},
	}

	cmd.Flags().IntVar(&score, "score", 0, "Score 0..100")
	cmd.Flags().StringVar(&feedback, "feedback", "", "Feedback for the student")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}

func newSubmissionsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "submissions ASSIGNMENT_ID",
		Short: "List submissions for an assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subs, err := app.Submissions.ListByAssignment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSubmissionList(subs))
			return nil
		},
	}
}

func newQuizCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Record and list quiz attempts",
	}

	var userID string
	var score int
	attempt := &cobra.Command{
		Use:   "attempt QUIZ_ID",
		Short: "Record a quiz attempt; the first attempt completes the quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Quizzes.RecordAttempt(cmd.Context(), userID, args[0], score)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatQuizAttempt(res.Attempt, res.AttemptNo))
			return nil
		},
	}
	attempt.Flags().StringVar(&userID, "user", "", "User ID")
	attempt.Flags().IntVar(&score, "score", 0, "Score 0..100")
	_ = attempt.MarkFlagRequired("user")
	_ = attempt.MarkFlagRequired("score")

	var listUser string
	list := &cobra.Command{
		Use:   "list QUIZ_ID",
		Short: "List a user's attempts on a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attempts, err := app.Quizzes.ListAttempts(cmd.Context(), listUser, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatQuizAttempts(attempts))
			return nil
		},
	}
	list.Flags().StringVar(&listUser, "user", "", "User ID")
	_ = list.MarkFlagRequired("user")

	cmd.AddCommand(attempt, list)
	return cmd
}
