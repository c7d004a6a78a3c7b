package titles_test

import (
	"testing"

	"golang.org/x/text/unicode/norm"

	"kamishibai/internal/titles"
)

func TestFromKey(t *testing.T) {
	cases := []struct {
		name string
		key  string
		want string
	}{
		{"plain stem", "学徒動員のころ.m4a", "学徒動員のころ"},
		{"corner brackets win", "0123-「桃太郎」.m4a", "桃太郎"},
		{"session label and duplicate marker", "語り#3 浦島太郎(2).m4a", "浦島太郎"},
		{"numeric prefix with dash", "012345-かぐや姫.mp3", "かぐや姫"},
		{"numeric prefix with underscore", "0042_花咲か爺さん.m4a", "花咲か爺さん"},
		{"short digits kept", "123つるの恩返し.m4a", "123つるの恩返し"},
		{"narration label", "朗読　笠地蔵.m4a", "笠地蔵"},
		{"new recording label", "新規録音 42.m4a", "42"},
		{"trailing bracketed suffix", "一寸法師【再録】.m4a", "一寸法師"},
		{"trailing duplicate marker", "金太郎(重複).m4a", "金太郎"},
		{"trailing index marker", "舌切り雀#12 final.m4a", "舌切り雀"},
		{"full-width spaces removed", "さるかに　合戦.m4a", "さるかに合戦"},
		{"brackets inside prefix noise", "20250101_「ねずみの嫁入り」(2).m4a", "ねずみの嫁入り"},
		{"unbalanced bracket falls through", "「こぶとり爺さん.m4a", "「こぶとり爺さん"},
		{"key with directory", "audio/0123-「桃太郎」.m4a", "桃太郎"},
		{"bare extension leaves nothing", ".m4a", ""},
		{"hidden file strips to nothing", ".hidden", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := titles.FromKey(tc.key); got != tc.want {
				t.Fatalf("FromKey(%q) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestFromKeyNormalizesDecomposedKana(t *testing.T) {
	// macOS writes decomposed dakuten into filenames.
	decomposed := norm.NFD.String("語り　ぶんぶく茶釜.m4a")
	want := "ぶんぶく茶釜"
	if got := titles.FromKey(decomposed); got != want {
		t.Fatalf("FromKey(NFD) = %q, want %q", got, want)
	}
}

func TestFromKeyNeverPanicsOnGarbage(t *testing.T) {
	for _, key := range []string{"", ".", "..", "...", "「」.m4a", "#1.m4a", "　.m4a"} {
		_ = titles.FromKey(key)
	}
}
