// Package titles derives human display titles from opaque recording keys.
//
// The recordings follow several naming conventions accumulated over years of
// uploads: some carry the title in corner brackets, some carry numeric
// prefixes from the recorder, some carry session labels. The extraction chain
// tries the most reliable convention first and degrades to returning the
// cleaned stem.
package titles

import (
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	cornerBracket  = regexp.MustCompile(`「(.+?)」`)
	numericPrefix  = regexp.MustCompile(`^\d{4,6}[-_]?`)
	sessionLabel   = regexp.MustCompile(`^(語り|朗読|新規録音)[\s　]*(　|#\d+)?`)
	trailingMarker = regexp.MustCompile(`(新規録音.*|#\d+.*|\(\d+\)|\(重複\)|【.*】)$`)
)

// FromKey extracts a display title from an object key. The first matching
// rule wins:
//
//  1. A corner-bracketed segment 「…」 is the title verbatim.
//  2. Otherwise the stem is stripped of numeric prefixes, session labels,
//     and trailing duplicate markers.
//
// Keys are NFC-normalized first; recordings uploaded from macOS arrive with
// decomposed kana. FromKey never fails; worst case it returns the cleaned
// stem unchanged, or "" for a key that is nothing but an extension.
func FromKey(key string) string {
	stem := norm.NFC.String(path.Base(key))
	if idx := strings.LastIndex(stem, "."); idx >= 0 {
		stem = stem[:idx]
	}

	if m := cornerBracket.FindStringSubmatch(stem); m != nil {
		return strings.TrimSpace(m[1])
	}

	title := numericPrefix.ReplaceAllString(stem, "")
	title = sessionLabel.ReplaceAllString(title, "")
	title = trailingMarker.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)
	return strings.ReplaceAll(title, "　", "")
}
