package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// DefaultLabel is the label used when a session is saved without one
const DefaultLabel = "default"

// Session is a browser session copied from a logged-in Instagram tab
type Session struct {
	Label     string    `json:"label"`
	SessionID string    `json:"session_id"`
	CSRFToken string    `json:"csrf_token"`
	SavedAt   time.Time `json:"saved_at"`
}

// Store persists sessions by label
type Store interface {
	Save(s *Session) error
	Load(label string) (*Session, error)
	Delete(label string) error
}

// Errors
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidSession   = errors.New("invalid session")
	ErrStoreUnavailable = errors.New("session store unavailable")
)

// Manager saves to the first store that accepts a session and loads from
// the first store that has one
type Manager struct {
	stores []Store
}

// NewManager uses the system keyring when available and an encrypted file
// in dir otherwise
func NewManager(dir string) (*Manager, error) {
	var stores []Store

	if ks, err := NewKeyringStore(); err == nil {
		stores = append(stores, ks)
	}

	fs, err := NewFileStore(filepath.Join(dir, "sessions.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, fs)

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores builds a Manager over explicit stores
func NewManagerWithStores(stores ...Store) *Manager {
	return &Manager{stores: stores}
}

// Save validates and stores s
func (m *Manager) Save(s *Session) error {
	if s == nil || s.SessionID == "" {
		return fmt.Errorf("%w: session ID is required", ErrInvalidSession)
	}
	if s.Label == "" {
		s.Label = DefaultLabel
	}
	s.SavedAt = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Save(s); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store session: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Load returns the session saved under label
func (m *Manager) Load(label string) (*Session, error) {
	if label == "" {
		label = DefaultLabel
	}
	for _, store := range m.stores {
		if s, err := store.Load(label); err == nil && s != nil {
			return s, nil
		}
	}
	return nil, ErrSessionNotFound
}

// Delete removes label from every store
func (m *Manager) Delete(label string) error {
	if label == "" {
		label = DefaultLabel
	}

	deleted := false
	for _, store := range m.stores {
		if err := store.Delete(label); err == nil {
			deleted = true
		}
	}
	if !deleted {
		return ErrSessionNotFound
	}
	return nil
}

// ConfigDir returns the per-user directory holding igposts state
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "igposts")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "igposts")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "igposts")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "igposts")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// Masked returns a copy of s safe to print
func (s *Session) Masked() *Session {
	c := *s
	c.SessionID = maskString(s.SessionID)
	c.CSRFToken = maskString(s.CSRFToken)
	return &c
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
