// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "snapcourier/cli/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), ClassTimeout},
		{"client timeout", errors.New("Client.Timeout exceeded while awaiting headers"), ClassTimeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "api.invalid"}, ClassDNS},
		{"refused op", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, ClassRefused},
		{"refused text", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), ClassRefused},
		{"tls", errors.New("x509: certificate signed by unknown authority"), ClassTLS},
		{"server", errors.New("user-info failed: 502 bad gateway"), ClassServer},
		{"other", errors.New("EOF"), ClassUnreachable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestFormatNetworkErrorWraps(t *testing.T) {
	require.NoError(t, FormatNetworkError(nil, "signing in"))

	cause := errors.New("EOF")
	err := FormatNetworkError(cause, "signing in")
	require.ErrorIs(t, err, cause)
}

func TestExtractHostFromURL(t *testing.T) {
	require.Equal(t, "api.snap.example:8443", ExtractHostFromURL("https://api.snap.example:8443/api"))
	require.Equal(t, "server", ExtractHostFromURL("not a url"))
}

func TestIsNetworkError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"client error", &url.Error{Op: "Post", URL: "http://x/api/auth/login", Err: errors.New("EOF")}, true},
		{"wrapped dial", fmt.Errorf("login: %w", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}), true},
		{"deadline", context.DeadlineExceeded, true},
		{"backend rejection", apperrors.WithStatus(apperrors.Unauthorized, 401, "login failed: 401"), false},
		{"plain", errors.New("keychain locked"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsNetworkError(tt.err))
		})
	}
}
