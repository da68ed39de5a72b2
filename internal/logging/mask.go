// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides utilities for secure logging and error presentation.
// It includes functions for masking sensitive information in log messages and
// formatting errors for user-friendly display while protecting credentials and secrets.
//
// The package helps ensure that bearer tokens, refresh tokens and passwords
// are not accidentally exposed in logs or error messages shown to users.
package logging

import (
	"regexp"
	"strings"
)

var (
	rePassword = regexp.MustCompile(`(?i)(password=)([^\s;&]+)`)
	reToken    = regexp.MustCompile(`(?i)(token=|bearer\s+)([A-Za-z0-9._~+/=-]+)`)
	reJSONSec  = regexp.MustCompile(`(?i)("(?:access_?token|refresh_?token|password)"\s*:\s*")([^"]*)(")`)
	reAPIKey   = regexp.MustCompile(`(?i)(apikey=|api_key=)([^\s;&]+)`)
)

// Mask replaces sensitive values in the input string with "***".
func Mask(s string) string {
	out := s
	out = rePassword.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reJSONSec.ReplaceAllString(out, "$1***$3")
	out = reAPIKey.ReplaceAllString(out, "$1***")
	return out
}

// Email keeps the first two characters of the local part and the domain.
func Email(s string) string {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || domain == "" || strings.Contains(domain, "@") {
		return "***"
	}
	if len(local) > 2 {
		local = local[:2] + "***"
	} else {
		local = "***"
	}
	return local + "@" + domain
}
