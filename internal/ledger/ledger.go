// Package ledger persists the set of successfully published identifiers.
//
// The ledger is the pipeline's only durable state: a key appears in it if and
// only if the item's full pipeline completed without a surfaced error. Every
// commit rewrites the entire serialized set. Commit cost grows with ledger
// size, which is acceptable at the expected scale of a few thousand items and
// keeps recovery reasoning trivial.
package ledger

import "context"

// Ledger loads and appends to the publication record.
type Ledger interface {
	// Load returns the current record. A ledger that does not exist yet is
	// the empty set, not an error.
	Load(ctx context.Context) (*Set, error)
	// Commit durably records one identifier by rewriting the full set.
	Commit(ctx context.Context, key string) error
}
