// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"net/http"

	apperrors "snapcourier/cli/internal/errors"
	"snapcourier/cli/internal/keychain"
)

// Login calls POST /api/auth/login with { email, password } through the
// pipeline and returns the issued pair.
func (h *HTTP) Login(ctx context.Context, email, password string) (keychain.Pair, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	resp, err := h.postJSON(ctx, h.client, h.endpoints.Login, body)
	if err != nil {
		return keychain.Pair{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return keychain.Pair{}, statusError("login", resp)
	}
	pair, err := decodePair(resp)
	if err != nil {
		return keychain.Pair{}, err
	}
	if pair.RefreshToken == "" {
		return keychain.Pair{}, apperrors.New(apperrors.InvalidResponse, "no refresh token in login response")
	}
	return pair, nil
}

// RefreshToken calls POST /api/auth/refresh-token with { refreshToken } on
// the plain client. The backend rotates both tokens; when it leaves the
// refresh token out, the one sent is kept so the pair stays complete.
func (h *HTTP) RefreshToken(ctx context.Context, refreshToken string) (keychain.Pair, error) {
	body := map[string]string{
		"refreshToken": refreshToken,
	}
	resp, err := h.postJSON(ctx, h.plain, h.endpoints.RefreshToken, body)
	if err != nil {
		return keychain.Pair{}, apperrors.Wrap(apperrors.RenewalFailed, "refresh-token", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return keychain.Pair{}, apperrors.Wrap(apperrors.RenewalFailed, "refresh-token", statusError("refresh-token", resp))
	}
	pair, err := decodePair(resp)
	if err != nil {
		return keychain.Pair{}, apperrors.Wrap(apperrors.RenewalFailed, "refresh-token", err)
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}
	return pair, nil
}

// decodePair reads a token response. The access token is required.
func decodePair(resp *http.Response) (keychain.Pair, error) {
	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return keychain.Pair{}, apperrors.Wrap(apperrors.InvalidResponse, "decode token response", err)
	}
	pair := keychain.Pair{
		AccessToken:  extractAccessToken(result),
		RefreshToken: extractRefreshToken(result),
	}
	if pair.AccessToken == "" {
		return keychain.Pair{}, apperrors.New(apperrors.InvalidResponse, "no access token in response")
	}
	return pair, nil
}
