package cli

import (
	"fmt"

	"github.com/sinaulab/sinau/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import modules, units and users from a YAML or JSON course file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Import.ImportCourse(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d modules, %d units, %d videos, %d users %s\n",
				res.ModuleCount, res.UnitCount, res.VideoCount, res.UserCount, formatter.Dim("from "+args[0]))
			return nil
		},
	}
}
