// Package wordlist loads frequency-ordered word lists.
package wordlist

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompt sources select the top-N slice of a frequency-ordered list.
const (
	SourceTop1000 = "1000"
	SourceTop5000 = "5000"
)

//go:embed en.txt
var builtinEnglish string

// NormalizeSource maps unknown sources to SourceTop1000.
func NormalizeSource(source string) string {
	if strings.TrimSpace(source) == SourceTop5000 {
		return SourceTop5000
	}
	return SourceTop1000
}

// Pool returns the leading words of a frequency-ordered list for a source.
// Lists shorter than the source size are returned whole.
func Pool(words []string, source string) []string {
	limit := 1000
	if NormalizeSource(source) == SourceTop5000 {
		limit = 5000
	}
	if len(words) <= limit {
		return words
	}
	return words[:limit]
}

// Default returns the built-in English list, most frequent first.
func Default() []string {
	words, err := readWords(strings.NewReader(builtinEnglish))
	if err != nil {
		return nil
	}
	return words
}

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	words, err := readWords(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return words, nil
}

// Load reads the word list at path, filtered for lang, falling back to the
// built-in list when the file is missing or yields no usable words.
func Load(path, lang string) ([]string, bool) {
	if path != "" {
		if words, err := LoadWords(path); err == nil {
			if kept := Filter(words, FilterForLang(lang)); len(kept) > 0 {
				return kept, true
			}
		}
	}
	return Default(), false
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}
