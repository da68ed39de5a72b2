// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import "strings"

// extractAccessToken extracts the access token from the response payload.
// It tries multiple common field names to be resilient to different response formats,
// including a nested "data" envelope.
func extractAccessToken(result map[string]any) string {
	return firstString(result, "accessToken", "access_token", "token")
}

// extractRefreshToken extracts the refresh token from the response payload.
// Returns empty string if no refresh token is present.
func extractRefreshToken(result map[string]any) string {
	return firstString(result, "refreshToken", "refresh_token")
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if data, ok := m["data"].(map[string]any); ok {
		return firstString(data, keys...)
	}
	return ""
}
