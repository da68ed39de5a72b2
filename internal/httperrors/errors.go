// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns transport failures against the backend into
// troubleshooting output for the terminal.
package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"snapcourier/cli/internal/logging"
)

// Class is the broad category of a network failure.
type Class string

const (
	ClassTimeout     Class = "timeout"
	ClassDNS         Class = "dns"
	ClassRefused     Class = "refused"
	ClassTLS         Class = "tls"
	ClassServer      Class = "server"
	ClassUnreachable Class = "unreachable"
)

// advice is what the terminal shows for one Class.
type advice struct {
	icon     string
	headline string
	hints    []string
}

var adviceFor = map[Class]advice{
	ClassTimeout: {"⏱️ ", "Connection timeout", []string{
		"The backend did not answer in time; check your connection",
		"Raise timeout_seconds with: snapcourier config set timeout_seconds 30",
	}},
	ClassDNS: {"🌐", "Cannot resolve the backend address", []string{
		"Check backend_url with: snapcourier config show",
		"SNAPCOURIER_BACKEND_URL overrides the config file",
	}},
	ClassRefused: {"🚫", "Connection refused", []string{
		"The backend is not listening on that host and port",
		"Check backend_url with: snapcourier config show",
	}},
	ClassTLS: {"🔒", "Secure connection failed", []string{
		"The certificate was rejected or a proxy interfered with HTTPS",
		"A wrong system clock also breaks certificate checks",
	}},
	ClassServer: {"⚠️ ", "The Snapcourier backend reported an internal error", []string{
		"This is not a problem with your setup; try again in a few minutes",
	}},
	ClassUnreachable: {"❌", "Cannot reach the Snapcourier backend", []string{
		"Check your internet connection and backend_url",
	}},
}

// IsNetworkError reports whether err comes from the transport rather than
// from a backend response.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	var netErr net.Error
	return errors.As(err, &urlErr) || errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded)
}

// FormatNetworkError prints troubleshooting output for err and returns it
// wrapped. doing describes the action, e.g. "signing in".
func FormatNetworkError(err error, doing string) error {
	if err == nil {
		return nil
	}
	class := Classify(err)
	a := adviceFor[class]
	pterm.Printf("%s %s while %s\n\n", a.icon, a.headline, doing)
	for _, h := range a.hints {
		pterm.Printf("  • %s\n", h)
	}
	pterm.Println()
	pterm.Debug.Printf("Technical details: %s\n", truncate(logging.Mask(err.Error()), 200))
	return fmt.Errorf("network error: %w", err)
}

// Classify sorts err into a Class. Checks run from most to least specific.
func Classify(err error) Class {
	msg := strings.ToLower(err.Error())
	var netErr net.Error
	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout(),
		strings.Contains(msg, "timeout"):
		return ClassTimeout
	case errors.As(err, &dnsErr):
		return ClassDNS
	case errors.Is(err, syscall.ECONNREFUSED), strings.Contains(msg, "connection refused"):
		return ClassRefused
	case containsAny(msg, "tls", "x509", "certificate", "handshake"):
		return ClassTLS
	case containsAny(msg, " 500", " 502", " 503", " 504", "bad gateway", "service unavailable"):
		return ClassServer
	default:
		return ClassUnreachable
	}
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
