package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"snapcourier/cli/internal/backend"
	"snapcourier/cli/internal/httperrors"
)

// whoamiCmd shows the account behind the stored session. Resolving it may
// renew the tokens; if renewal fails the session is cleared.
var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Show current authenticated account",
	Long: `The whoami command resolves the stored session against the backend and shows the
signed-in account and its role.

If the access token has expired it is renewed transparently. If no valid session
exists, it will indicate that the user is not logged in.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}

		s.ctrl.Init(cmd.Context())
		v := s.ctrl.View()
		if !v.LoggedIn() {
			if cause := s.ctrl.Err(); httperrors.IsNetworkError(cause) {
				return httperrors.FormatNetworkError(cause, "resolving the current user")
			}
			printNotLoggedIn()
			return nil
		}

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Current user")).
			WithPadding(1).
			Println(describeUser(v.User))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func describeUser(u *backend.User) string {
	return fmt.Sprintf("👤 %s\nEmail: %s\nRole:  %s\nID:    %s", u.DisplayName(), u.Email, u.Role, u.ID)
}
