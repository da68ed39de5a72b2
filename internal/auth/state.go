// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import "snapcourier/cli/internal/backend"

// State is the session lifecycle position.
type State int

const (
	// Initializing is the start state; nothing is assumed about stored credentials.
	Initializing State = iota
	// Unauthenticated means no valid session.
	Unauthenticated
	// Authenticated means identity resolution succeeded.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// View is the session as seen by routing and UI code.
type View struct {
	User    *backend.User
	Loading bool
}

// LoggedIn reports whether a user is present.
func (v View) LoggedIn() bool { return v.User != nil }
