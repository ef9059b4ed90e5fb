// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain stores remembered connection URLs in the OS keychain or
// credential store, so secrets typed once need not be retyped or written to
// the config file.
package keychain

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "sqlpilot"

// keyPrefix namespaces remembered connection URLs by connection name.
const keyPrefix = "connection_url:"

// ErrNotFound is returned when no URL is remembered under a name.
var ErrNotFound = errors.New("no remembered connection URL")

// Manager provides thread-safe operations on the OS keychain.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewManager opens the OS keyring using native platform backends only.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// NewWithRing wraps an already opened keyring.
func NewWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	case "linux":
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, fmt.Errorf("secure storage not supported on %s", runtime.GOOS)
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
		// Items are readable by this binary without a prompt per access.
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open keychain: %w", err)
	}
	return ring, nil
}

func key(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("connection name is required")
	}
	return keyPrefix + name, nil
}

// SaveURL remembers the connection URL for a connection name, replacing any
// previous value.
func (m *Manager) SaveURL(name, url string) error {
	k, err := key(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{
		Key:         k,
		Data:        []byte(url),
		Label:       "SQLPilot connection " + name,
		Description: "database connection URL",
	})
}

// LoadURL returns the remembered URL for a connection name.
func (m *Manager) LoadURL(name string) (string, error) {
	k, err := key(name)
	if err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(k)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w for %q", ErrNotFound, name)
	}
	if err != nil {
		return "", err
	}
	if len(it.Data) == 0 {
		return "", fmt.Errorf("%w for %q", ErrNotFound, name)
	}
	return string(it.Data), nil
}

// DeleteURL forgets the URL for a connection name. Forgetting an unknown
// name is not an error.
func (m *Manager) DeleteURL(name string) error {
	k, err := key(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ring.Remove(k); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// Names lists connection names with a remembered URL.
func (m *Manager) Names() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys, err := m.ring.Keys()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, k := range keys {
		if n, ok := strings.CutPrefix(k, keyPrefix); ok {
			names = append(names, n)
		}
	}
	return names, nil
}
