package credential

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrUnusableKey is returned when a key selected for storage is empty or a
// stringified missing value.
var ErrUnusableKey = errors.New("selected key is empty or invalid")

type ownerKey struct{}

// WithOwner returns a copy of ctx identifying the owner whose selected key
// SessionKeyStore should serve.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// OwnerFromContext returns the owner carried by ctx.
func OwnerFromContext(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(ownerKey{}).(string)
	return owner, ok && owner != ""
}

// SessionKeyStore keeps keys selected by signed-in users in memory only.
// It is the KeySelector of the HTTP API: users select a key through an
// endpoint, so opening the dialog has nothing further to wait for.
type SessionKeyStore struct {
	mu   sync.RWMutex
	keys map[string]string
}

// NewSessionKeyStore creates an empty store.
func NewSessionKeyStore() *SessionKeyStore {
	return &SessionKeyStore{keys: make(map[string]string)}
}

// Select stores key for owner, replacing any previous selection.
func (s *SessionKeyStore) Select(owner, key string) error {
	if !Usable(key) {
		return ErrUnusableKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[owner] = strings.TrimSpace(key)
	return nil
}

// Clear forgets owner's selection.
func (s *SessionKeyStore) Clear(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, owner)
}

// Has reports whether owner has a selected key.
func (s *SessionKeyStore) Has(owner string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[owner]
	return ok
}

// HasSelectedKey implements KeySelector for the owner carried by ctx.
func (s *SessionKeyStore) HasSelectedKey(ctx context.Context) (bool, error) {
	owner, ok := OwnerFromContext(ctx)
	if !ok {
		return false, nil
	}
	return s.Has(owner), nil
}

// OpenSelectKey implements KeySelector. Selection happens out of band via
// Select, so there is no dialog to wait for.
func (s *SessionKeyStore) OpenSelectKey(ctx context.Context) error {
	return ctx.Err()
}

// SelectedKey implements KeySelector for the owner carried by ctx.
func (s *SessionKeyStore) SelectedKey(ctx context.Context) (string, error) {
	owner, ok := OwnerFromContext(ctx)
	if !ok {
		return "", nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[owner], nil
}
