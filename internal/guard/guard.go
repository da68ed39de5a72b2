// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package guard decides whether a protected view may be shown for the current
// session view.
package guard

import (
	"snapcourier/cli/internal/auth"
	"snapcourier/cli/internal/backend"
)

// LoginPath is where unauthenticated and unauthorized users are sent.
const LoginPath = "/login"

// Outcome is the result kind of a guard decision.
type Outcome int

const (
	// Pending means the session is still loading; render nothing yet.
	Pending Outcome = iota
	// Redirect means navigate to Decision.Target instead.
	Redirect
	// Allow means render the protected view.
	Allow
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Redirect:
		return "redirect"
	case Allow:
		return "allow"
	default:
		return "unknown"
	}
}

// Decision is what to do with a navigation.
type Decision struct {
	Outcome Outcome
	// Target is set for Redirect only.
	Target string
}

// Decide applies the guard rules in order: loading, no user, role mismatch.
// With no required roles any authenticated user is allowed.
//
// A role mismatch redirects to the login view like an absent user does.
func Decide(v auth.View, required ...backend.Role) Decision {
	if v.Loading {
		return Decision{Outcome: Pending}
	}
	if v.User == nil {
		return Decision{Outcome: Redirect, Target: LoginPath}
	}
	if len(required) > 0 && !hasRole(v.User.Role, required) {
		return Decision{Outcome: Redirect, Target: LoginPath}
	}
	return Decision{Outcome: Allow}
}

func hasRole(r backend.Role, set []backend.Role) bool {
	for _, want := range set {
		if r == want {
			return true
		}
	}
	return false
}
