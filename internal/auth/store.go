package auth

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Store is the key-value cache that survives between runs.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryStore is a [Store] that lives as long as the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// loadCredential reads both cache keys. ok reports whether anything was stored: it is false only when both
// keys are absent, and a half-written or unreadable entry comes back with ok set and no valid expiry.
func loadCredential(s Store) (c Credential, ok bool, err error) {
	token, hasToken, err := s.Get(TokenKey)
	if err != nil {
		return Credential{}, false, fmt.Errorf("failed to read %s: %w", TokenKey, err)
	}
	raw, hasExpiry, err := s.Get(ExpiryKey)
	if err != nil {
		return Credential{}, false, fmt.Errorf("failed to read %s: %w", ExpiryKey, err)
	}
	if !hasToken || !hasExpiry {
		return Credential{}, hasToken || hasExpiry, nil
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Credential{AccessToken: token}, true, nil
	}
	return Credential{AccessToken: token, Expiry: time.UnixMilli(ms)}, true, nil
}

func saveCredential(s Store, c Credential) error {
	if err := s.Set(TokenKey, c.AccessToken); err != nil {
		return fmt.Errorf("failed to write %s: %w", TokenKey, err)
	}
	if err := s.Set(ExpiryKey, strconv.FormatInt(c.Expiry.UnixMilli(), 10)); err != nil {
		return fmt.Errorf("failed to write %s: %w", ExpiryKey, err)
	}
	return nil
}

func clearCredential(s Store) error {
	return errors.Join(s.Delete(TokenKey), s.Delete(ExpiryKey))
}
