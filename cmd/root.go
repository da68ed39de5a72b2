// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the Snapcourier CLI.
// It implements sign-in, sign-out, identity, view navigation and raw
// authenticated requests against the Snapcourier backend using the Cobra CLI
// framework, with pterm for terminal output.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"snapcourier/cli/internal/logging"
)

var (
	showVersion bool
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "snapcourier",
	Short:         "Snapcourier CLI for courier and admin accounts",
	Long:          `Snapcourier signs you in to the Snapcourier backend, keeps your session alive across runs and lets you open the views your role allows.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			return printVersion(cmd)
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, logging.PresentError("Error", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI and backend version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose debug output")
}
