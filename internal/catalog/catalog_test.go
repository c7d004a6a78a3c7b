package catalog_test

import (
	"reflect"
	"testing"

	"kamishibai/internal/catalog"
	"kamishibai/internal/ledger"
)

func TestResolveFiltersAndSorts(t *testing.T) {
	listing := []string{
		"c.m4a",
		"notes.txt",
		"b.MP3",
		"a.m4a",
		"cover.jpg",
		"ignored.m4a",
		"published.m4a",
	}
	ignore := map[string]struct{}{"ignored.m4a": {}}
	published := ledger.NewSet("published.m4a")

	got := catalog.Resolve(listing, ignore, published)
	want := []string{"a.m4a", "b.MP3", "c.m4a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve = %v, want %v", got, want)
	}
}

func TestResolveIdempotent(t *testing.T) {
	listing := []string{"b.m4a", "a.m4a", "c.mp3"}
	published := ledger.NewSet()

	first := catalog.Resolve(listing, nil, published)
	second := catalog.Resolve(listing, nil, published)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical candidate lists, got %v then %v", first, second)
	}
}

func TestResolveOrderIndependentOfListing(t *testing.T) {
	forward := []string{"a.m4a", "b.m4a", "c.m4a"}
	backward := []string{"c.m4a", "b.m4a", "a.m4a"}

	if !reflect.DeepEqual(
		catalog.Resolve(forward, nil, ledger.NewSet()),
		catalog.Resolve(backward, nil, ledger.NewSet()),
	) {
		t.Fatal("candidate order must not depend on listing order")
	}
}

func TestResolveIgnoreBeatsLedgerAbsence(t *testing.T) {
	// Ignored keys stay excluded even when they are not in the record.
	listing := []string{"bad.m4a", "good.m4a"}
	ignore := map[string]struct{}{"bad.m4a": {}}

	got := catalog.Resolve(listing, ignore, ledger.NewSet())
	if len(got) != 1 || got[0] != "good.m4a" {
		t.Fatalf("Resolve = %v, want [good.m4a]", got)
	}
}

func TestResolveNilPublished(t *testing.T) {
	got := catalog.Resolve([]string{"a.m4a"}, nil, nil)
	if len(got) != 1 {
		t.Fatalf("Resolve = %v", got)
	}
}

func TestIsAudio(t *testing.T) {
	cases := map[string]bool{
		"a.m4a":          true,
		"a.M4A":          true,
		"a.mp3":          true,
		"dir/a.mp3":      true,
		"a.wav":          false,
		"podcast.xml":    false,
		"published.txt":  false,
		"thumbnail.jpg":  false,
		"m4a":            false,
		"archive.m4a.gz": false,
	}
	for key, want := range cases {
		if got := catalog.IsAudio(key); got != want {
			t.Fatalf("IsAudio(%q) = %v, want %v", key, got, want)
		}
	}
}
