// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"snapcourier/cli/internal/auth"
	"snapcourier/cli/internal/guard"
)

// openCmd navigates to a view and reports what the route guard decided.
var openCmd = &cobra.Command{
	Use:   "open [view]",
	Short: "Open a view, or list the views you can open",
	Long: `The open command checks whether the current session may open a view:
"/" and "/login" are public, "/courier" needs a courier account and "/admin"
needs an admin account. Without an argument it lists every view together with
what the guard would do.`,
	Args: cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		s.ctrl.Init(cmd.Context())
		v := s.ctrl.View()

		if len(args) == 0 {
			return listViews(v)
		}

		route, d, err := guard.Resolve(args[0], v)
		if errors.Is(err, guard.ErrUnknownRoute) {
			pterm.Printf("❌ No such view: %s\n", args[0])
			pterm.Printf("   Known views: %s\n", strings.Join(guard.Paths(), ", "))
			return err
		}
		if err != nil {
			return err
		}

		switch d.Outcome {
		case guard.Allow:
			pterm.Printf("✅ Opening %s (%s)\n", route.Title, route.Path)
			return nil
		case guard.Redirect:
			pterm.Printf("🔒 %s is not available to this session; redirecting to %s\n", route.Title, d.Target)
			if !v.LoggedIn() {
				printNotLoggedIn()
			}
			return nil
		default:
			pterm.Println("⏳ Session is still loading")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func listViews(v auth.View) error {
	data := pterm.TableData{{"View", "Title", "Access"}}
	for _, p := range guard.Paths() {
		route, d, err := guard.Resolve(p, v)
		if err != nil {
			return err
		}
		access := d.Outcome.String()
		if d.Outcome == guard.Redirect {
			access += " → " + d.Target
		}
		data = append(data, []string{route.Path, route.Title, access})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
