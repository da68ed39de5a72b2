// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// logoutCmd clears the stored session.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved session tokens",
	Long: `The logout command removes the access and refresh tokens from the OS keychain.
It never contacts the backend and always succeeds, even when you are not
logged in.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		s.ctrl.Logout()

		pterm.Println("✅ Session tokens have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
