// Copyright (c) 2025 Snapcourier
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain is the credential store for snapcourier.
// It persists the access/refresh token pair across process restarts in the
// OS keychain/credential store, behind a small key-value contract that the
// request pipeline and the session controller share.
//
// The package supports macOS Keychain, Windows Credential Manager, the Secret
// Service on Linux, the pass password store and an encrypted file keyring,
// with thread-safe operations. An in-memory store backs tests and is the
// fallback when no persistent backend can be opened.
package keychain

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/99designs/keyring"

	apperrors "snapcourier/cli/internal/errors"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "snapcourier"

// Store is the credential store contract. Get reports absence rather than an
// error; an unreadable backend looks the same as an empty one.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// Manager provides thread-safe operations over the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
	name    string
}

var _ Store = (*Manager)(nil)

// keychainBackend defines the interface for native keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// Options selects and configures the backend opened by Open.
type Options struct {
	// Backend is "auto", "file" or "memory".
	Backend string
	// FileDir is the directory of the encrypted file keyring.
	FileDir string
	// FilePassword supplies the file keyring passphrase.
	FilePassword keyring.PromptFunc
}

// Open creates a Manager for the requested backend. Failures are reported as
// apperrors.StoreUnavailable so callers can fall back to NewMemory.
func Open(opts Options) (*Manager, error) {
	switch opts.Backend {
	case "memory":
		return NewMemory(), nil
	case "file":
		return openFile(opts)
	case "", "auto":
	default:
		return nil, apperrors.New(apperrors.StoreUnavailable, fmt.Sprintf("unknown keyring backend %q", opts.Backend))
	}

	// Try native security backend first on macOS
	if runtime.GOOS == "darwin" {
		if backend, err := newSecurityBackend(); err == nil {
			return &Manager{backend: backend, name: "security"}, nil
		}
		// Fall through to keyring library if security command fails
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:              ServiceName,
		AllowedBackends:          nativeBackends(),
		PassPrefix:               ServiceName,
		WinCredPrefix:            ServiceName,
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.StoreUnavailable, "open OS keychain", err)
	}
	return &Manager{ring: ring, name: "keyring"}, nil
}

// nativeBackends lists the OS credential stores we accept, in preference order.
func nativeBackends() []keyring.BackendType {
	switch runtime.GOOS {
	case "darwin":
		return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend}
	default:
		return []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	}
}

func openFile(opts Options) (*Manager, error) {
	if opts.FileDir == "" {
		return nil, apperrors.New(apperrors.StoreUnavailable, "file keyring needs a directory")
	}
	if opts.FilePassword == nil {
		return nil, apperrors.New(apperrors.StoreUnavailable, "file keyring needs a passphrase")
	}
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      ServiceName,
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          opts.FileDir,
		FilePasswordFunc: opts.FilePassword,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.StoreUnavailable, "open file keyring", err)
	}
	return &Manager{ring: ring, name: "file"}, nil
}

// NewMemory returns a Manager that lives only as long as the process.
func NewMemory() *Manager {
	return &Manager{ring: keyring.NewArrayKeyring(nil), name: "memory"}
}

// Backend names the storage actually in use.
func (m *Manager) Backend() string { return m.name }

// Get returns the value stored under key. Missing, empty or unreadable
// entries all report false.
func (m *Manager) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.backend != nil {
		v, err := m.backend.Get(key)
		if err != nil || v == "" {
			return "", false
		}
		return v, true
	}

	it, err := m.ring.Get(key)
	if err != nil || len(it.Data) == 0 {
		return "", false
	}
	return string(it.Data), true
}

// Set stores value under key.
func (m *Manager) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Set(key, value)
	}
	return m.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

// Remove deletes key. Removing a missing key is not an error.
func (m *Manager) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Delete(key)
	}
	if err := m.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
