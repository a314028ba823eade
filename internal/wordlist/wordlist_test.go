package wordlist

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestDefaultList(t *testing.T) {
	words := Default()
	if len(words) < 200 {
		t.Fatalf("expected built-in list, got %d words", len(words))
	}
	if words[0] != "the" {
		t.Fatalf("expected most frequent word first, got %q", words[0])
	}
	keep := FilterForLang("en")
	for _, w := range words {
		if !keep(w) {
			t.Fatalf("built-in word %q fails the english filter", w)
		}
	}
}

func TestPool(t *testing.T) {
	words := make([]string, 6000)
	for i := range words {
		words[i] = "w" + strconv.Itoa(i)
	}
	if got := len(Pool(words, "1000")); got != 1000 {
		t.Fatalf("expected 1000 words, got %d", got)
	}
	if got := len(Pool(words, "5000")); got != 5000 {
		t.Fatalf("expected 5000 words, got %d", got)
	}
	if got := len(Pool(words, "bogus")); got != 1000 {
		t.Fatalf("expected unknown source to use 1000, got %d", got)
	}
	if got := len(Pool(words[:10], "5000")); got != 10 {
		t.Fatalf("expected short list whole, got %d", got)
	}
}

func TestNormalizeSource(t *testing.T) {
	cases := map[string]string{"1000": "1000", "5000": "5000", " 5000 ": "5000", "": "1000", "300": "1000"}
	for in, want := range cases {
		if got := NormalizeSource(in); got != want {
			t.Fatalf("NormalizeSource(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.txt")
	if err := os.WriteFile(path, []byte("alpha\n\n# comment\nbeta\nalpha\n  gamma  \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	words, err := LoadWords(path)
	if err != nil {
		t.Fatalf("LoadWords: %v", err)
	}
	if len(words) != 3 || words[2] != "gamma" {
		t.Fatalf("unexpected words %v", words)
	}
}

func TestLoadWordsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("\n\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadWords(path); err == nil {
		t.Fatalf("expected error for empty list")
	}
}

func TestLoadFallsBack(t *testing.T) {
	words, custom := Load(filepath.Join(t.TempDir(), "missing.txt"), "en")
	if custom || len(words) == 0 {
		t.Fatalf("expected built-in fallback")
	}
	path := filepath.Join(t.TempDir(), "mixed.txt")
	if err := os.WriteFile(path, []byte("Upper\nlower\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	words, custom = Load(path, "en")
	if !custom || len(words) != 1 || words[0] != "lower" {
		t.Fatalf("unexpected custom list %v", words)
	}
}
