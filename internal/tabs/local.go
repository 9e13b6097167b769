package tabs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/Iron-Ham/filterbox/internal/errors"
)

// TabDataKey is the store key tabs are saved under.
const TabDataKey = "TabDataStore"

const (
	lockFileName   = ".lock"
	lockRetryDelay = 10 * time.Millisecond
)

// LocalStore is a file-backed key-value store scoped to one application and
// user. Each key maps to a file under <dir>/<application>/<user>. Writes are
// atomic, and a lock file serializes writers across processes.
type LocalStore struct {
	root string
	lock *flock.Flock
	mu   sync.Mutex
}

// NewLocalStore creates the store directory if needed.
func NewLocalStore(dir, application, user string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.NewValidationError("store directory is required").WithField("tabs.store_dir")
	}
	root := filepath.Join(dir, safeSegment(application), safeSegment(user))
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &LocalStore{
		root: root,
		lock: flock.New(filepath.Join(root, lockFileName)),
	}, nil
}

func safeSegment(s string) string {
	if s == "" {
		return "default"
	}
	return filepath.Base(filepath.Clean("/" + s))
}

// Root returns the directory holding this store's keys.
func (s *LocalStore) Root() string {
	return s.root
}

// Path returns the file backing key.
func (s *LocalStore) Path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Get returns the data stored under key, or a NotFoundError.
func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lock.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return nil, s.persistenceError("failed to lock store", key, err)
	}
	defer s.lock.Unlock()

	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("key", key)
		}
		return nil, s.persistenceError("failed to read key", key, err)
	}
	return data, nil
}

// Save replaces the data under key atomically.
func (s *LocalStore) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return s.persistenceError("failed to lock store", key, err)
	}
	defer s.lock.Unlock()

	path := s.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return s.persistenceError("failed to create directory", key, err)
	}
	if err := atomicWriteFile(path, data, 0644); err != nil {
		return s.persistenceError("failed to write key", key, err)
	}
	return nil
}

// DeleteAll removes every key in the store. The store stays usable.
func (s *LocalStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return s.persistenceError("failed to lock store", "", err)
	}
	defer s.lock.Unlock()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return s.persistenceError("failed to list store", "", err)
	}
	for _, entry := range entries {
		if entry.Name() == lockFileName {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.root, entry.Name())); err != nil {
			return s.persistenceError("failed to delete key", entry.Name(), err)
		}
	}
	return nil
}

func (s *LocalStore) persistenceError(msg, key string, cause error) error {
	return errors.NewPersistenceError(msg, cause).WithMode(SavingLocal.String()).WithKey(key)
}

// atomicWriteFile writes data to a temporary file in the target directory,
// then renames it over path so readers never see a partial file.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
