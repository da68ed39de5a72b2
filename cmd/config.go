// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"snapcourier/cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change CLI settings",
	Long: `The config command manages the non-secret settings kept in the XDG config
directory. Tokens are never written there.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings, including environment overrides",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.Path()
		if err != nil {
			return err
		}
		c, err := config.LoadFrom(p)
		if err != nil {
			return err
		}
		data := pterm.TableData{
			{"Setting", "Value"},
			{"backend_url", c.BackendURL},
			{"log_level", c.LogLevel},
			{"keyring", c.Keyring},
			{"timeout_seconds", strconv.Itoa(int(c.Timeout().Seconds()))},
			{"endpoints.login", c.Endpoints.Login},
			{"endpoints.refresh_token", c.Endpoints.RefreshToken},
			{"endpoints.user_info", c.Endpoints.UserInfo},
		}
		pterm.Printf("Config file: %s\n\n", p)
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Change one setting",
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.Keys,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.Path()
		if err != nil {
			return err
		}
		if _, err := config.UpdateFile(p, func(c *config.Config) error {
			return c.Set(args[0], args[1])
		}); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		pterm.Printf("✅ %s updated\n", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
