// Package storage is the local key-value store standing in for the browser's
// persistent storage: tokens, remembered email, theme, language and a free
// form settings blob, kept as a YAML document on disk. A file lock guards
// the document against concurrent processes.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/minjae-ko/playkit/client"
)

// SchemaVersion is compared against the version stamped in the file on open.
// A mismatch wipes every key outside the preserved set, then stamps the
// current version.
const SchemaVersion = "3"

// Well-known keys.
const (
	KeyAccessToken     = "access_token"
	KeyRefreshToken    = "refresh_token"
	KeyRememberedEmail = "remembered_email"
	KeyTheme           = "theme"
	KeyLanguage        = "language"
	KeySettings        = "settings"

	keySchemaVersion = "schema_version"
)

// preservedKeys survive a schema-version wipe: losing the session or the
// chosen language over an app update would be hostile.
var preservedKeys = map[string]bool{
	KeyAccessToken:     true,
	KeyRefreshToken:    true,
	KeyRememberedEmail: true,
	KeyLanguage:        true,
}

// Store is a flat string-to-string store persisted after every write.
type Store struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
	data map[string]string
}

// Open loads (or creates) the store at path and applies the schema-version
// wipe when the stored version differs from SchemaVersion.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("empty storage path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &Store{
		path: path,
		lock: flock.New(path + ".lock"),
		data: make(map[string]string),
	}

	if err := s.lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire storage lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run: nothing to migrate.
	case err != nil:
		return nil, fmt.Errorf("read storage file: %w", err)
	default:
		if err := yaml.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("parse storage file: %w", err)
		}
		if s.data == nil {
			s.data = make(map[string]string)
		}
	}

	if s.data[keySchemaVersion] != SchemaVersion {
		kept := make(map[string]string)
		for key, value := range s.data {
			if preservedKeys[key] {
				kept[key] = value
			}
		}
		s.data = kept
	}
	s.data[keySchemaVersion] = SchemaVersion

	if err := s.saveLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the value for key and whether it is present.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	return value, ok
}

// Set stores a value and persists the document.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.persistLocked()
}

// Delete removes a key and persists the document.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return s.persistLocked()
}

// Keys returns all stored keys, sorted.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// persistLocked writes the document under the file lock. Caller holds s.mu.
func (s *Store) persistLocked() error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire storage lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()
	return s.saveLocked()
}

// saveLocked marshals and writes atomically via a temp file and rename.
// Caller holds both s.mu (or is inside Open) and the file lock.
func (s *Store) saveLocked() error {
	raw, err := yaml.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}

// Tokens implements client.TokenSource.
func (s *Store) Tokens() (client.TokenPair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	access := s.data[KeyAccessToken]
	refresh := s.data[KeyRefreshToken]
	if access == "" && refresh == "" {
		return client.TokenPair{}, false
	}
	return client.TokenPair{Access: access, Refresh: refresh}, true
}

// SetTokens implements client.TokenSource.
func (s *Store) SetTokens(pair client.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[KeyAccessToken] = pair.Access
	s.data[KeyRefreshToken] = pair.Refresh
	return s.persistLocked()
}

// ClearTokens implements client.TokenSource.
func (s *Store) ClearTokens() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, KeyAccessToken)
	delete(s.data, KeyRefreshToken)
	return s.persistLocked()
}
