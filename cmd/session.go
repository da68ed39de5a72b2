// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"snapcourier/cli/internal/auth"
	"snapcourier/cli/internal/backend"
	"snapcourier/cli/internal/config"
	"snapcourier/cli/internal/keychain"
	"snapcourier/cli/internal/logging"
	"snapcourier/cli/internal/terminal"
	"snapcourier/cli/internal/xdg"
)

// envKeyringPassphrase unlocks the file keyring without a prompt.
const envKeyringPassphrase = "SNAPCOURIER_KEYRING_PASSPHRASE"

// session bundles what every command needs: settings, a logger, the
// credential store and the controller bound to them.
type session struct {
	cfg   config.Config
	log   *pterm.Logger
	store keychain.Store
	ctrl  *auth.Controller
}

// openSession loads the configuration and wires the controller. The session
// is not resolved yet; callers that need the user run ctrl.Init.
func openSession(cmd *cobra.Command) (*session, error) {
	if verbose {
		os.Setenv(logging.EnvVerbose, "1")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log := logging.New(cfg.LogLevel, os.Stderr)
	store := openStore(cfg, log)

	ctrl := auth.New(store, func(onTeardown func()) backend.API {
		opts := backend.FromConfig(cfg)
		opts.Store = store
		opts.OnTeardown = onTeardown
		opts.Logger = log
		return backend.New(opts)
	}, auth.WithLogger(log))

	log.Debug("session wired", log.Args("backend_url", cfg.BackendURL, "command", cmd.Name()))
	return &session{cfg: cfg, log: log, store: store, ctrl: ctrl}, nil
}

// openStore opens the configured credential store. When no persistent store
// is reachable the CLI still works, but the session ends with the process.
func openStore(cfg config.Config, log *pterm.Logger) keychain.Store {
	opts := keychain.Options{Backend: cfg.Keyring}
	if cfg.Keyring == "file" {
		if dir, err := xdg.DataDir(); err == nil {
			opts.FileDir = dir
		}
		opts.FilePassword = filePassphrase
	}

	m, err := keychain.Open(opts)
	if err != nil {
		log.Warn("credential store unavailable; sign-in will not persist", log.Args("error", err.Error()))
		return keychain.NewMemory()
	}
	log.Debug("credential store opened", log.Args("backend", m.Backend()))
	return m
}

func filePassphrase(prompt string) (string, error) {
	if p := os.Getenv(envKeyringPassphrase); p != "" {
		return p, nil
	}
	return terminal.PromptSecret(prompt + ": ")
}

// printNotLoggedIn is the shared hint for commands that need a session.
func printNotLoggedIn() {
	pterm.Println("🔒 You're not logged in yet!")
	pterm.Println("   Run 'snapcourier login' to get started.")
}
