package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/h0rv/posdash/internal/domain"
)

// SessionStore persists the last login on disk.
type SessionStore struct {
	Path string
	Now  func() time.Time
}

type sessionFile struct {
	JWT     string      `json:"jwt"`
	User    domain.User `json:"user"`
	SavedAt time.Time   `json:"saved_at"`
}

// NewSessionStore returns a store writing to path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{Path: path, Now: time.Now}
}

func (s *SessionStore) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Save writes sess with owner-only permissions.
func (s *SessionStore) Save(sess domain.Session) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.MarshalIndent(sessionFile{JWT: sess.JWT, User: sess.User, SavedAt: s.now()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Load reads the cached session. A missing file yields ErrNoToken.
func (s *SessionStore) Load() (*domain.Session, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no cached session at %s", ErrNoToken, s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if f.JWT == "" {
		return nil, fmt.Errorf("%w: cached session is empty", ErrNoToken)
	}
	return &domain.Session{JWT: f.JWT, User: f.User}, nil
}

// Clear removes the cached session.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
