package cli

import (
	"fmt"

	"github.com/sinaulab/sinau/internal/cli/formatter"
	"github.com/sinaulab/sinau/internal/domain"
	"github.com/spf13/cobra"
)

func newUserCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	cmd.AddCommand(
		newUserAddCmd(app),
		newUserListCmd(app),
		newUserShowCmd(app),
	)

	return cmd
}

func newUserAddCmd(app *App) *cobra.Command {
	var id, name, email, role string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" && app.interactive() {
				if err := userForm(&name, &email, &role).Run(); err != nil {
					return err
				}
			}
			u := &domain.User{ID: id, Name: name, Email: email, Role: domain.Role(role)}
			if err := app.Users.Create(cmd.Context(), u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s (%s)\n", u.Role, formatter.Bold(u.Name), u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "User ID (generated when empty)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleStudent), "Role: student, instructor or admin")

	return cmd
}

func newUserListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.Users.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUsers(users))
			return nil
		},
	}
}

func newUserShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show USER_ID",
		Short: "Show a user and their points balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := app.Users.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUser(u))
			return nil
		},
	}
}
