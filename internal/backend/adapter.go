// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides interfaces and implementations for communicating with the Snap courier backend.
// It defines the API contract for login, token renewal, identity lookup and generic authenticated calls.
// The package includes both interface definitions and an HTTP implementation whose authenticated
// traffic runs through the session pipeline.
package backend

import (
	"context"
	"io"
	"net/http"

	"snapcourier/cli/internal/keychain"
)

// API defines backend operations the CLI depends on.
// Implementations may call real HTTP endpoints or provide fakes for tests.
type API interface {
	GetVersion(ctx context.Context) (string, error)
	// Login exchanges credentials for a token pair. It does not store it.
	Login(ctx context.Context, email, password string) (keychain.Pair, error)
	// RefreshToken exchanges a refresh token for a new pair over the plain
	// transport.
	RefreshToken(ctx context.Context, refreshToken string) (keychain.Pair, error)
	// UserInfo returns the identity behind the stored access token.
	UserInfo(ctx context.Context) (User, error)
	// Do performs an authenticated call to path relative to the backend URL.
	// The caller closes the response body.
	Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error)
}
