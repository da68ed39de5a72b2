// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// EnvVerbose forces debug logging when set to "1".
const EnvVerbose = "SNAPCOURIER_VERBOSE"

// New returns a pterm structured logger writing to w at the named level.
// Unknown levels fall back to info; SNAPCOURIER_VERBOSE=1 wins over level.
func New(level string, w io.Writer) *pterm.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl := ParseLevel(level)
	if os.Getenv(EnvVerbose) == "1" {
		lvl = pterm.LogLevelDebug
	}
	return pterm.DefaultLogger.
		WithWriter(w).
		WithLevel(lvl).
		WithTime(false)
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *pterm.Logger {
	return pterm.DefaultLogger.WithWriter(io.Discard).WithLevel(pterm.LogLevelDisabled)
}

// ParseLevel maps a config string onto a pterm level.
func ParseLevel(level string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "off", "disabled":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelInfo
	}
}
