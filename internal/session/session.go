package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"callcenter-go/internal/types"
)

// ErrNoSession is returned by Require when nobody is signed in.
var ErrNoSession = errors.New("not signed in")

// Store holds the signed-in identity. Get returns nil, nil when absent.
type Store interface {
	Save(token string, profile types.Profile) error
	Get() (*types.Session, error)
	Clear() error
}

// Require returns the current session or ErrNoSession.
func Require(s Store) (*types.Session, error) {
	sess, err := s.Get()
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.Token == "" {
		return nil, ErrNoSession
	}
	return sess, nil
}

// FileStore persists the session as JSON on disk.
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Save(token string, profile types.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(types.Session{
		Token:   token,
		Profile: profile,
		SavedAt: f.now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (f *FileStore) Get() (*types.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s types.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", f.path, err)
	}
	return &s, nil
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	sess *types.Session
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Save(token string, profile types.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = &types.Session{Token: token, Profile: profile, SavedAt: time.Now().UTC()}
	return nil
}

func (m *MemoryStore) Get() (*types.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return nil, nil
	}
	cp := *m.sess
	return &cp, nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}
