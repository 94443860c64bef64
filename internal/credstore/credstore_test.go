package credstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth", TokenKey)

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if got := s.Token(); got != "" {
		t.Fatalf("fresh store has token %q", got)
	}

	if err := s.SetToken("tok-123"); err != nil {
		t.Fatalf("set token: %v", err)
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	if got := reopened.Token(); got != "tok-123" {
		t.Fatalf("expected persisted token, got %q", got)
	}
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), TokenKey)
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.SetToken("tok"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := s.Token(); got != "" {
		t.Fatalf("token survived clear: %q", got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("token file survived clear: %v", err)
	}
	// Clearing an already-empty store is not an error.
	if err := s.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestFileStoreNoTemporaryLeftovers(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, TokenKey))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.SetToken("tok"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != TokenKey {
		t.Fatalf("unexpected dir contents: %v", entries)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	if err := s.SetToken("tok"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if got := s.Token(); got != "tok" {
		t.Fatalf("got %q", got)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := s.Token(); got != "" {
		t.Fatalf("token survived clear: %q", got)
	}
}
