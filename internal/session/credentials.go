package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/a-manpathan/kata-frontend/internal/domain"
)

// Saved is the durable session payload, the file analogue of the token the
// browser build keeps under its well-known localStorage key. The identity is
// stored alongside the token so hydration can restore both.
type Saved struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// CredentialStore persists the session across restarts.
type CredentialStore interface {
	Save(saved Saved) error
	Load() (saved Saved, ok bool, err error)
	Clear() error
}

type fileCredentialStore struct {
	path string
}

// NewFileCredentialStore stores the session as JSON at path, created with
// owner-only permissions.
func NewFileCredentialStore(path string) CredentialStore {
	return &fileCredentialStore{path: path}
}

func (f *fileCredentialStore) Save(saved Saved) error {
	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (f *fileCredentialStore) Load() (Saved, bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Saved{}, false, nil
		}
		return Saved{}, false, fmt.Errorf("failed to read session file: %w", err)
	}

	var saved Saved
	if err := json.Unmarshal(data, &saved); err != nil {
		return Saved{}, false, fmt.Errorf("failed to decode session file: %w", err)
	}
	return saved, true, nil
}

func (f *fileCredentialStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// memoryCredentialStore keeps the session in process memory only. Used by
// tests and as the fallback when no session file path is configured.
type memoryCredentialStore struct {
	mu    sync.Mutex
	saved Saved
	set   bool
}

func NewMemoryCredentialStore() CredentialStore {
	return &memoryCredentialStore{}
}

func (m *memoryCredentialStore) Save(saved Saved) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = saved
	m.set = true
	return nil
}

func (m *memoryCredentialStore) Load() (Saved, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved, m.set, nil
}

func (m *memoryCredentialStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = Saved{}
	m.set = false
	return nil
}
