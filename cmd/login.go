// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"snapcourier/cli/internal/backend"
	"snapcourier/cli/internal/guard"
	"snapcourier/cli/internal/httperrors"
	"snapcourier/cli/internal/terminal"
)

var loginEmail string

var errLoginFailed = errors.New("login failed")

// loginCmd signs in with email and password and stores the issued token pair.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Sign in with your email and password",
	Long: `The login command exchanges your email and password for a session and stores the
resulting tokens in the OS keychain. The password is read without echo.

If a stored session is still valid, the command reports it and does nothing.
After signing in it shows the view your role lands on.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		s, err := openSession(cmd)
		if err != nil {
			return err
		}

		s.ctrl.Init(ctx)
		if v := s.ctrl.View(); v.LoggedIn() {
			pterm.Printf("Already logged in as %s\n", v.User.Email)
			return nil
		}

		in := bufio.NewReader(os.Stdin)
		email := loginEmail
		if email == "" {
			promptText := "Email: "
			if email, err = terminal.PromptLine(os.Stdout, in, promptText); err != nil {
				return err
			}
			if terminal.IsInteractive() {
				terminal.ClearPreviousLines(len(promptText) + len(email))
			}
		}
		email, err = validateEmail(email)
		if err != nil {
			return err
		}

		password, err := readPassword(in)
		if err != nil {
			return err
		}

		stop := startInlineSpinner(os.Stdout, "Signing in", []string{"|", "/", "-", "\\"}, 120*time.Millisecond)
		ok := s.ctrl.Login(ctx, email, password)
		stop()

		if !ok {
			if cause := s.ctrl.Err(); httperrors.IsNetworkError(cause) {
				return httperrors.FormatNetworkError(cause, "signing in to "+httperrors.ExtractHostFromURL(s.cfg.BackendURL))
			}
			pterm.Println("❌ Login failed. Check your email and password and try again.")
			if !verbose {
				pterm.Println("   Re-run with --verbose for details.")
			}
			return errLoginFailed
		}

		showLoginGreeting(s.ctrl.View().User)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email (prompted when omitted)")
}

// validateEmail rejects input that is not a bare address before any backend
// round trip.
func validateEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", errors.New("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("invalid email address format: %q", email)
	}
	return email, nil
}

// readPassword prompts without echo on a terminal and falls back to one line
// of stdin when input is piped.
func readPassword(in *bufio.Reader) (string, error) {
	password, err := terminal.PromptSecret("Password: ")
	if errors.Is(err, terminal.ErrNotInteractive) {
		password, err = terminal.PromptLine(os.Stderr, in, "")
	}
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}

// showLoginGreeting prints a greeting and the landing view for the user's role.
func showLoginGreeting(u *backend.User) {
	if u == nil {
		pterm.Println("✅ Login successful!")
		return
	}
	pterm.Println(getRandomLoginGreeting(u.DisplayName()))
	landing := guard.LandingFor(u.Role)
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Role:    ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(string(u.Role)))
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Landing: ") + pterm.NewStyle(pterm.FgLightBlue).Sprint(landing))
	pterm.Println()
	pterm.Printf("Open it with: snapcourier open %s\n", landing)
}

// getRandomLoginGreeting returns a random greeting phrase with the user's identifier
func getRandomLoginGreeting(identifier string) string {
	greetings := []string{
		"🎉 Welcome back, %s!",
		"✨ Great to see you, %s!",
		"🚀 You're all set, %s!",
		"👋 Hello %s! Ready to deliver?",
		"💫 Successfully authenticated as %s",
		"✅ Authentication complete! Hi %s!",
		"🔓 Access granted! Welcome %s!",
	}

	idx := rand.Intn(len(greetings))
	return fmt.Sprintf(greetings[idx], identifier)
}
