package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Local is the legacy flat-file ledger adapter. It reads and writes the same
// wire format as Remote from a path on disk. Kept for installs that predate
// the bucket-hosted ledger; selected once at startup, never mixed mid-run.
type Local struct {
	path string

	mu  sync.Mutex
	set *Set
}

// NewLocal builds a local ledger at path.
func NewLocal(path string) *Local {
	return &Local{path: path}
}

// Load reads and caches the record, treating a missing file as the empty set.
func (l *Local) Load(ctx context.Context) (*Set, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.set = NewSet()
			return l.set, nil
		}
		return nil, fmt.Errorf("load ledger %s: %w", l.path, err)
	}
	l.set = DecodeSet(data)
	return l.set, nil
}

// Commit adds key and rewrites the file atomically via a rename.
func (l *Local) Commit(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.set == nil {
		return errors.New("ledger not loaded")
	}
	l.set.Add(key)

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure ledger directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(l.set.Encode()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close ledger: %w", err)
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
