// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import "errors"

// Keys used for storing the token pair.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
)

// Pair is the access/refresh credential pair. Both tokens are opaque.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Complete reports whether both halves are present.
func (p Pair) Complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// LoadPair reads the stored pair. A half pair is treated as no pair and the
// orphaned half is removed.
func LoadPair(s Store) (Pair, bool) {
	access, okA := s.Get(KeyAccessToken)
	refresh, okR := s.Get(KeyRefreshToken)
	if okA && okR {
		return Pair{AccessToken: access, RefreshToken: refresh}, true
	}
	if okA || okR {
		ClearPair(s)
	}
	return Pair{}, false
}

// SavePair writes both tokens. If either write fails the store is cleared so
// no half pair survives.
func SavePair(s Store, p Pair) error {
	if !p.Complete() {
		return errors.New("keychain: refusing to save incomplete token pair")
	}
	if err := s.Set(KeyAccessToken, p.AccessToken); err != nil {
		ClearPair(s)
		return err
	}
	if err := s.Set(KeyRefreshToken, p.RefreshToken); err != nil {
		ClearPair(s)
		return err
	}
	return nil
}

// ClearPair removes both tokens, ignoring errors.
func ClearPair(s Store) {
	_ = s.Remove(KeyAccessToken)
	_ = s.Remove(KeyRefreshToken)
}
