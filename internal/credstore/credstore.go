// Package credstore persists the bearer credential across client restarts.
// It is the client-side durable storage for the auth token: one opaque
// string kept under a fixed key, cleared on logout or when the startup
// session check rejects it.
package credstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenKey is the fixed key the auth token is stored under.
const TokenKey = "authToken"

// Store persists and recalls the bearer token. Implementations must treat
// an empty token as "no credential".
type Store interface {
	// Token returns the stored token, or "" when none is stored.
	Token() string
	// SetToken durably records the token before returning.
	SetToken(token string) error
	// Clear removes any stored token.
	Clear() error
}

// =============================================================================
// File store
// =============================================================================

// FileStore keeps the token in a single file, written atomically via a
// temp-file rename so a crash mid-write never leaves a corrupt credential.
type FileStore struct {
	mu    sync.RWMutex
	path  string
	token string
}

var _ Store = (*FileStore)(nil)

// NewFileStore opens (or creates the directory for) the token file at path
// and loads any previously persisted token.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("token file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create token dir: %w", err)
	}

	s := &FileStore{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read token file: %w", err)
		}
		return s, nil
	}
	s.token = strings.TrimSpace(string(data))
	return s, nil
}

// Token returns the in-memory copy of the persisted token.
func (s *FileStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken persists the token to disk before updating the in-memory copy,
// so a caller observing success can rely on the credential surviving a
// restart.
func (s *FileStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}
	s.token = token
	return nil
}

// Clear removes the token file and forgets the in-memory copy.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	s.token = ""
	return nil
}

// =============================================================================
// Memory store
// =============================================================================

// MemoryStore holds the token in memory only. Intended for tests and for
// callers that opt out of persistence.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
