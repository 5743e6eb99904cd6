// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package secrets

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/zalando/go-keyring"

	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
)

// indexSuffix is appended to the service name to form the key under which
// the JSON index of stored key names is kept. go-keyring cannot enumerate
// keys natively, so List() reads this index instead.
const indexSuffix = "::keys-index"

// KeyringStore implements Store using the OS keyring via zalando/go-keyring.
// On macOS it uses Keychain, on Linux secret-service (D-Bus), and on Windows
// the Credential Manager.
type KeyringStore struct{}

// NewKeyringStore returns a KeyringStore.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{}
}

func (s *KeyringStore) Store(service, key, value string) error {
	if err := validateRef(service, key, "store"); err != nil {
		return err
	}

	if err := keyring.Set(service, key, value); err != nil {
		return ddkerr.Wrapf(err, ddkerr.CodeSecretStoreFailure, "storing secret %s/%s", service, key)
	}

	return s.addToIndex(service, key)
}

func (s *KeyringStore) Retrieve(service, key string) (string, error) {
	if err := validateRef(service, key, "retrieve"); err != nil {
		return "", err
	}

	val, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ddkerr.Errorf(ddkerr.CodeSecretNotFound, "secret %s/%s not found", service, key)
		}
		return "", ddkerr.Wrapf(err, ddkerr.CodeSecretStoreFailure, "retrieving secret %s/%s", service, key)
	}
	return val, nil
}

func (s *KeyringStore) Delete(service, key string) error {
	if err := validateRef(service, key, "delete"); err != nil {
		return err
	}

	if err := keyring.Delete(service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ddkerr.Errorf(ddkerr.CodeSecretNotFound, "secret %s/%s not found", service, key)
		}
		return ddkerr.Wrapf(err, ddkerr.CodeSecretDeleteFailure, "deleting secret %s/%s", service, key)
	}

	return s.removeFromIndex(service, key)
}

func (s *KeyringStore) List(service string) ([]string, error) {
	return s.loadIndex(service)
}

func validateRef(service, key, op string) error {
	if service == "" {
		return ddkerr.Errorf(ddkerr.CodeSecretInvalidInput, "secret %s: service must not be empty", op)
	}
	if key == "" {
		return ddkerr.Errorf(ddkerr.CodeSecretInvalidInput, "secret %s: key must not be empty", op)
	}
	return nil
}

// loadIndex reads the JSON key index for a service from the keyring.
func (s *KeyringStore) loadIndex(service string) ([]string, error) {
	raw, err := keyring.Get(service, service+indexSuffix)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, ddkerr.Wrapf(err, ddkerr.CodeSecretStoreFailure, "loading key index for service %s", service)
	}

	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, ddkerr.Wrapf(err, ddkerr.CodeSecretStoreFailure, "decoding key index for service %s", service)
	}

	return keys, nil
}

// saveIndex writes the JSON key index for a service to the keyring.
func (s *KeyringStore) saveIndex(service string, keys []string) error {
	indexKey := service + indexSuffix

	if len(keys) == 0 {
		// Clean up the index entry when empty.
		if delErr := keyring.Delete(service, indexKey); delErr != nil {
			slog.Debug("failed to clean up empty key index", "service", service, "error", delErr)
		}
		return nil
	}

	data, err := json.Marshal(keys)
	if err != nil {
		return ddkerr.Wrapf(err, ddkerr.CodeSecretStoreFailure, "encoding key index for service %s", service)
	}

	if err := keyring.Set(service, indexKey, string(data)); err != nil {
		return ddkerr.Wrapf(err, ddkerr.CodeSecretStoreFailure, "saving key index for service %s", service)
	}

	return nil
}

// addToIndex adds a key to the service's key index (idempotent).
func (s *KeyringStore) addToIndex(service, key string) error {
	keys, err := s.loadIndex(service)
	if err != nil {
		return err
	}

	for _, k := range keys {
		if k == key {
			return nil
		}
	}

	return s.saveIndex(service, append(keys, key))
}

// removeFromIndex removes a key from the service's key index.
func (s *KeyringStore) removeFromIndex(service, key string) error {
	keys, err := s.loadIndex(service)
	if err != nil {
		return err
	}

	filtered := keys[:0]
	for _, k := range keys {
		if k != key {
			filtered = append(filtered, k)
		}
	}

	return s.saveIndex(service, filtered)
}
