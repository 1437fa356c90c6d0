package framecheck

import (
	"errors"
	"fmt"
	"strings"

	"framecheck/shared/storage"
)

const (
	keyStorageKey = "geminiApiKey"
	keyPrefix     = "AIza"
	minKeyLength  = 8
)

var (
	ErrEmptyKey         = errors.New("empty API key")
	ErrInvalidKeyFormat = errors.New(`invalid API key format: Gemini API keys start with "AIza"`)
)

// KeyStore persists the Gemini API key.
type KeyStore struct {
	store storage.Store
}

func NewKeyStore(store storage.Store) *KeyStore {
	return &KeyStore{store: store}
}

// Load returns the saved key, or "" when none is saved.
func (k *KeyStore) Load() (string, error) {
	var key string
	if _, err := k.store.Get(keyStorageKey, &key); err != nil {
		return "", fmt.Errorf("failed to load API key: %w", err)
	}
	return key, nil
}

// Save validates and persists key, returning the trimmed value. Storage is left
// untouched when validation fails.
func (k *KeyStore) Save(key string) (string, error) {
	key, err := ValidateKey(key)
	if err != nil {
		return "", err
	}
	if err := k.store.Set(keyStorageKey, key); err != nil {
		return "", fmt.Errorf("failed to save API key: %w", err)
	}
	return key, nil
}

func (k *KeyStore) Delete() error {
	if err := k.store.Delete(keyStorageKey); err != nil {
		return fmt.Errorf("failed to delete API key: %w", err)
	}
	return nil
}

// ValidateKey trims key and checks it looks like a Gemini API key.
func ValidateKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrEmptyKey
	}
	if !strings.HasPrefix(key, keyPrefix) || len(key) < minKeyLength {
		return "", ErrInvalidKeyFormat
	}
	return key, nil
}

// Mask shows the first and last four characters of key.
func Mask(key string) string {
	if len(key) < minKeyLength {
		return key
	}
	return key[:4] + "..." + key[len(key)-4:]
}
