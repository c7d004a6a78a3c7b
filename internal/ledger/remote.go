package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"kamishibai/internal/storage"
)

const ledgerContentType = "text/plain; charset=utf-8"

// Remote stores the ledger as a single text object in the storage bucket.
type Remote struct {
	store storage.ObjectStore
	key   string

	mu  sync.Mutex
	set *Set
}

// NewRemote builds a remote ledger at the given object key.
func NewRemote(store storage.ObjectStore, key string) *Remote {
	return &Remote{store: store, key: key}
}

// Load reads and caches the record. A missing ledger object is the empty set
// (first run); any other read failure is surfaced so the caller can abort,
// since without the record the pipeline cannot know what was already published.
func (r *Remote) Load(ctx context.Context) (*Set, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			r.set = NewSet()
			return r.set, nil
		}
		return nil, fmt.Errorf("load ledger %s: %w", r.key, err)
	}
	r.set = DecodeSet(data)
	return r.set, nil
}

// Commit adds key to the in-memory record and rewrites the serialized set in
// one overwrite. The in-memory record keeps the key even when the write
// fails, so slot computation within the run stays consistent; the caller is
// responsible for warning the operator about the durability gap.
func (r *Remote) Commit(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.set == nil {
		return errors.New("ledger not loaded")
	}
	r.set.Add(key)
	if err := r.store.Put(ctx, r.key, r.set.Encode(), ledgerContentType); err != nil {
		return fmt.Errorf("commit ledger %s: %w", r.key, err)
	}
	return nil
}
