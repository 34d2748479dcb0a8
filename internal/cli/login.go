package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Authenticate against the endpoint and store the session",
		Long: `Authenticate against the endpoint and store the session.

Login is the only command that requires connectivity. The password is read
from --password or, when omitted, from stdin.

Example:
  gdl login amit --password secret`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil {
					return WrapExitError(ExitCommandError, "read password", err)
				}
				password = strings.TrimSpace(line)
			}

			user, err := app.Engine.Login(cmd.Context(), args[0], password)
			if err != nil {
				return app.refusal(err)
			}
			return app.Out.Success(user, fmt.Sprintf("Logged in as %s (%s)", user.Name, user.Role))
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when omitted)")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Long: `Clear the stored session.

Local data survives: the replica, outbound queue, and sync checkpoint stay
on this device for the next login.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Engine.Logout(cmd.Context()); err != nil {
				return WrapExitError(ExitCommandError, "logout", err)
			}
			return app.Out.Success(map[string]string{"session": "cleared"}, "Logged out")
		},
	}
}
