package tracker

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/AsifaBeedi/jewel-site-booster/internal/logging"
)

// Keys used in session storage.
const (
	SessionIDKey   = "analytics_session_id"
	AttributionKey = "utm_params"
)

// Storage is per-session key/value storage. Writes are fire-and-forget.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// MemoryStorage lives as long as the process.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// FileStorage keeps values in a JSON file so a session can span several
// process runs (the CLI uses it).
type FileStorage struct {
	path string
	mu   sync.Mutex
}

// NewFileStorage stores values at path. The file is created on first Set.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values := f.load()
	v, ok := values[key]
	return v, ok
}

func (f *FileStorage) Set(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values := f.load()
	values[key] = value

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		logging.L().Warn("failed to encode session storage", "error", err)
		return
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			logging.L().Warn("failed to create session storage dir", "path", dir, "error", err)
			return
		}
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		logging.L().Warn("failed to write session storage", "path", f.path, "error", err)
	}
}

func (f *FileStorage) load() map[string]string {
	values := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.L().Warn("failed to read session storage", "path", f.path, "error", err)
		}
		return values
	}
	if err := json.Unmarshal(data, &values); err != nil {
		logging.L().Warn("ignoring corrupt session storage", "path", f.path, "error", err)
		return make(map[string]string)
	}
	return values
}
