// Package session owns the authority credential. The store is the
// single writer; every authenticated collaborator reads through it and
// never mutates the token directly. The token is not validated
// locally; the server is the source of truth and an expired token
// surfaces as an unauthorized response from a subsequent call.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store holds the current authority credential for the process
// lifetime.
type Store interface {
	// Save replaces the stored token.
	Save(token string) error

	// Current returns the stored token, if any. It is synchronous and
	// never touches the network.
	Current() (string, bool)

	// Clear destroys the session.
	Clear() error
}

// sessionFile is the on-disk shape of the persisted credential.
type sessionFile struct {
	AccessToken string `yaml:"access_token"`
}

// FileStore persists the token in a yaml file so it survives process
// restarts. Reads are served from memory.
type FileStore struct {
	path string

	mu    sync.RWMutex
	token string
}

// NewFileStore loads any previously saved session from path. A missing
// file is not an error; the store starts empty.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var f sessionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	s.token = f.AccessToken
	return s, nil
}

// DefaultPath returns the session file location under the user config
// directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "session.yaml"
	}
	return filepath.Join(home, ".config", "potholectl", "session.yaml")
}

// Save implements Store.
func (s *FileStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(sessionFile{AccessToken: token})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	s.token = token
	return nil
}

// Current implements Store.
func (s *FileStore) Current() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Clear implements Store.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests and embedding.
type MemStore struct {
	mu    sync.RWMutex
	token string
}

// Save implements Store.
func (s *MemStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Current implements Store.
func (s *MemStore) Current() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Clear implements Store.
func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
