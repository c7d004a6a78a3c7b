// Package catalog resolves which remote recordings still need publishing.
package catalog

import (
	"sort"
	"strings"

	"kamishibai/internal/ledger"
)

// audioExtensions are the recognized recording formats.
var audioExtensions = map[string]struct{}{
	".m4a": {},
	".mp3": {},
}

// Resolve filters the full remote listing down to an ordered candidate list:
// recognized audio extensions only, minus the unconditional ignore set, minus
// everything already in the publication record, sorted lexicographically.
// The result is independent of listing order, so repeated runs against an
// unchanged bucket and ledger resolve the identical sequence, which in turn
// keeps slot assignment deterministic.
func Resolve(listing []string, ignore map[string]struct{}, published *ledger.Set) []string {
	candidates := make([]string, 0, len(listing))
	for _, key := range listing {
		if !IsAudio(key) {
			continue
		}
		if _, skip := ignore[key]; skip {
			continue
		}
		if published != nil && published.Contains(key) {
			continue
		}
		candidates = append(candidates, key)
	}
	sort.Strings(candidates)
	return candidates
}

// IsAudio reports whether the key carries a recognized audio extension.
func IsAudio(key string) bool {
	lower := strings.ToLower(key)
	for ext := range audioExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
