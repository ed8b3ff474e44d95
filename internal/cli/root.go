package cli

import (
	"github.com/sinaulab/sinau/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Users       service.UserService
	Ledger      service.LedgerService
	Submissions service.SubmissionService
	Enrichments service.EnrichmentService
	Quizzes     service.QuizService
	Progress    service.ProgressService
	Ranking     service.RankingService
	Import      service.ImportService

	// IsInteractive reports whether stdin is a terminal. Nil means never.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "sinau" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "sinau",
		Short:         "Course progress and points ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newImportCmd(app),
		newUserCmd(app),
		newCompleteCmd(app),
		newSubmitCmd(app),
		newGradeCmd(app),
		newSubmissionsCmd(app),
		newQuizCmd(app),
		newEnrichmentCmd(app),
		newProgressCmd(app),
		newRankCmd(app),
		newLeaderboardCmd(app),
	)

	return root
}
