// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for askdata.
// This module manages all interactions with the OS keychain/credential store,
// which holds the completion service API keys so they never touch the config file.
//
// The package supports macOS Keychain, Windows Credential Manager and the Linux
// Secret Service, with thread-safe operations and proper error handling.
package keychain

import (
	"errors"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	globalError   error
	mu            sync.Mutex
)

// ErrNotFound is returned when no secret is stored under a key.
var ErrNotFound = errors.New("key not found")

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	backend keychainBackend
}

// keychainBackend defines the interface for keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "askdata"

// keyPrefix prefixes the per-provider API key entries.
const keyPrefix = "api_key_"

// APIKeyName returns the keychain entry name of a provider's API key.
func APIKeyName(provider string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(provider))
}

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	// Try native security backend first on macOS
	if runtime.GOOS == "darwin" {
		backend, err := newSecurityBackend()
		if err == nil {
			return &Manager{backend: backend}, nil
		}
		// Fall through to keyring library if security command fails
	}

	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return NewManagerWithRing(ring), nil
}

// NewManagerWithRing wraps an already opened keyring.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{backend: ringBackend{ring: ring}}
}

// GetManager returns the global keychain manager instance.
// If not initialized, it will be created on first call.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}

	globalManager, globalError = NewManager()
	if globalError != nil {
		return nil, globalError
	}
	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends only.
// There is no encrypted-file fallback: without a native store, keys come
// from the environment.
func openRing() (keyring.Keyring, error) {
	var allowedBackends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		// pass requires 'pass' utility installed: brew install pass
		allowedBackends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	case "linux":
		allowedBackends = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on this OS")
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. On macOS 26.0+, install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

// SaveAPIKey stores a provider's API key.
// This method is thread-safe.
func (m *Manager) SaveAPIKey(provider, key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("empty API key")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backend.Set(APIKeyName(provider), strings.TrimSpace(key))
}

// LoadAPIKey retrieves a provider's API key.
// This method is thread-safe.
func (m *Manager) LoadAPIKey(provider string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key, err := m.backend.Get(APIKeyName(provider))
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", ErrNotFound
	}
	return key, nil
}

// ClearAPIKey removes a provider's API key. Missing keys are not an error.
// This method is thread-safe.
func (m *Manager) ClearAPIKey(provider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backend.Delete(APIKeyName(provider))
}

// ClearAll removes the API keys of every given provider.
// This method is thread-safe and should be used with caution.
func (m *Manager) ClearAll(providers ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, p := range providers {
		if err := m.backend.Delete(APIKeyName(p)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ringBackend adapts a keyring.Keyring to keychainBackend.
type ringBackend struct {
	ring keyring.Keyring
}

func (r ringBackend) Set(key, value string) error {
	return r.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

func (r ringBackend) Get(key string) (string, error) {
	it, err := r.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(it.Data), nil
}

func (r ringBackend) Delete(key string) error {
	if err := r.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
