// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	// Version holds the CLI version information.
	// This value is typically set at build time using -ldflags.
	Version = "0.0.0-dev"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI and backend version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printVersion(cmd)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// printVersion prints the CLI version and, when reachable, the backend's.
func printVersion(cmd *cobra.Command) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	backendVersion, err := s.ctrl.API().GetVersion(ctx)
	if err != nil {
		s.log.Debug("backend version unavailable", s.log.Args("error", err.Error()))
		backendVersion = "unreachable"
	}
	pterm.Printf("snapcourier %s\nbackend %s\n", Version, backendVersion)
	return nil
}
