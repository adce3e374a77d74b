// Package identity holds the external collaborators of the client: the
// token storage the bearer token comes from and the profile the preferred
// currency comes from. Both are interfaces so the host application plugs
// in its own secure storage.
package identity

import (
	"context"
	"errors"
	"sync"
)

var ErrNoToken = errors.New("no token stored")

type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

type ProfileProvider interface {
	PreferredCurrency(ctx context.Context) string
}

// MemoryStore is an in-process TokenProvider and ProfileProvider for the
// CLI and tests. Host applications replace it with their own storage.
type MemoryStore struct {
	mu       sync.RWMutex
	token    string
	currency string
}

func NewMemoryStore(token, currency string) *MemoryStore {
	return &MemoryStore{token: token, currency: currency}
}

func (s *MemoryStore) Token(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrNoToken
	}
	return s.token, nil
}

func (s *MemoryStore) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// ClearSession drops the stored token, e.g. after the backend reported
// the credentials invalid.
func (s *MemoryStore) ClearSession() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

func (s *MemoryStore) PreferredCurrency(_ context.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currency
}

func (s *MemoryStore) SetPreferredCurrency(currency string) {
	s.mu.Lock()
	s.currency = currency
	s.mu.Unlock()
}
