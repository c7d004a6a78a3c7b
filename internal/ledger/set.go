package ledger

import (
	"sort"
	"strings"
)

// Set is the in-memory publication record: the identifiers that have been
// successfully published. The zero value is not usable; use NewSet.
type Set struct {
	keys map[string]struct{}
}

// NewSet returns a Set seeded with the provided keys.
func NewSet(keys ...string) *Set {
	s := &Set{keys: make(map[string]struct{}, len(keys))}
	for _, key := range keys {
		s.Add(key)
	}
	return s
}

// Add inserts a key. Blank keys are ignored; duplicates are a no-op.
func (s *Set) Add(key string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	s.keys[key] = struct{}{}
}

// Contains reports whether key has been published.
func (s *Set) Contains(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Len returns the number of published identifiers. The count drives publish
// slot computation.
func (s *Set) Len() int {
	return len(s.keys)
}

// Keys returns the identifiers sorted ascending.
func (s *Set) Keys() []string {
	out := make([]string, 0, len(s.keys))
	for key := range s.keys {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Encode serializes the set in ledger wire format: UTF-8, one identifier per
// line, sorted ascending, deduplicated, trailing newline.
func (s *Set) Encode() []byte {
	keys := s.Keys()
	if len(keys) == 0 {
		return []byte{}
	}
	return []byte(strings.Join(keys, "\n") + "\n")
}

// DecodeSet parses ledger wire format. Blank lines and surrounding whitespace
// are tolerated; duplicates collapse.
func DecodeSet(data []byte) *Set {
	s := NewSet()
	for _, line := range strings.Split(string(data), "\n") {
		s.Add(line)
	}
	return s
}
