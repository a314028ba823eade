package generator

import (
	"strconv"
	"strings"
	"testing"
	"unicode"
)

func TestGenerateUsesPool(t *testing.T) {
	g := NewSeeded(1)
	pool := []string{"alpha", "beta", "gamma"}
	words := g.Generate(pool, Options{Words: 50})
	if len(words) != 50 {
		t.Fatalf("expected 50 words, got %d", len(words))
	}
	for _, w := range words {
		if w != "alpha" && w != "beta" && w != "gamma" {
			t.Fatalf("unexpected word %q", w)
		}
	}
}

func TestGenerateNumbers(t *testing.T) {
	g := NewSeeded(2)
	words := g.Generate([]string{"word"}, Options{Words: 400, NumberRate: 0.5})
	numbers := 0
	for _, w := range words {
		if w == "word" {
			continue
		}
		n, err := strconv.Atoi(w)
		if err != nil || n < 0 || n >= maxNumber {
			t.Fatalf("unexpected token %q", w)
		}
		numbers++
	}
	if numbers == 0 || numbers == len(words) {
		t.Fatalf("expected a mix of words and numbers, got %d numbers", numbers)
	}
}

func TestGenerateCapsAndPunct(t *testing.T) {
	g := NewSeeded(3)
	words := g.Generate([]string{"word"}, Options{Words: 10, CapsPct: 1, PunctPct: 1, PunctSet: []rune{'.'}})
	for _, w := range words {
		if w != "Word." {
			t.Fatalf("expected capitalized punctuated word, got %q", w)
		}
		if !unicode.IsUpper([]rune(w)[0]) {
			t.Fatalf("expected capital letter")
		}
	}
}

func TestPromptFallback(t *testing.T) {
	g := NewSeeded(4)
	got := g.Prompt(nil, Options{Words: 10})
	if !strings.HasPrefix(got, "The quick brown fox") {
		t.Fatalf("unexpected fallback prompt %q", got)
	}
	if got := g.Prompt([]string{"a"}, Options{Words: 3}); got != "a a a" {
		t.Fatalf("unexpected prompt %q", got)
	}
}

func TestOptionsClamp(t *testing.T) {
	o := Options{Words: 1, NumberRate: 0.9, CapsPct: -1}.Clamp()
	if o.Words != MinWords || o.NumberRate != MaxNumberRate || o.CapsPct != 0 {
		t.Fatalf("unexpected clamp %+v", o)
	}
	if o := (Options{Words: 5000}).Clamp(); o.Words != MaxWords {
		t.Fatalf("expected max words, got %d", o.Words)
	}
}
