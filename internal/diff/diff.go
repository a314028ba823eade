// Package diff compares a typed buffer against its target prompt.
package diff

import "strings"

// Status classifies a single rendered cell.
type Status uint8

// Cell statuses.
const (
	Pending Status = iota
	Correct
	Incorrect
	Extra
	Break
)

// Cell is one prompt (or trailing typed) rune with its correctness.
type Cell struct {
	Rune   rune
	Status Status
	// Typed is the rune typed at this position, zero when pending.
	Typed rune
}

// Compare classifies every prompt rune against the typed buffer and appends
// one Extra cell per typed rune beyond the prompt.
//
// A newline in the prompt is a paragraph break: it yields a Break cell and
// accepts either a typed space or a typed newline at that position. Session
// prompts are normalized, so Break cells only appear for callers that pass
// a prompt with its newlines kept. A typed newline against a prompt space is
// Incorrect.
func Compare(typed, prompt []rune) []Cell {
	cells := make([]Cell, 0, max(len(prompt), len(typed)))
	for i, p := range prompt {
		cell := Cell{Rune: p, Status: Pending}
		if p == '\n' {
			cell.Status = Break
		}
		if i < len(typed) {
			cell.Typed = typed[i]
			switch {
			case Matches(typed[i], p) && p == '\n':
				cell.Status = Break
			case Matches(typed[i], p):
				cell.Status = Correct
			default:
				cell.Status = Incorrect
			}
		}
		cells = append(cells, cell)
	}
	for i := len(prompt); i < len(typed); i++ {
		cells = append(cells, Cell{Rune: typed[i], Status: Extra, Typed: typed[i]})
	}
	return cells
}

// Matches reports whether a typed rune satisfies a prompt rune.
func Matches(typed, prompt rune) bool {
	if prompt == '\n' {
		return typed == '\n' || typed == ' '
	}
	return typed == prompt
}

// CorrectCount returns the number of matching positions over the common prefix length.
func CorrectCount(typed, prompt []rune) int {
	n := min(len(typed), len(prompt))
	correct := 0
	for i := 0; i < n; i++ {
		if Matches(typed[i], prompt[i]) {
			correct++
		}
	}
	return correct
}

// Normalize collapses whitespace runs into single spaces and trims the ends.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Equal reports whether typed matches prompt exactly.
func Equal(typed, prompt []rune) bool {
	if len(typed) != len(prompt) {
		return false
	}
	for i := range typed {
		if !Matches(typed[i], prompt[i]) {
			return false
		}
	}
	return true
}

// CorrectPrefixWords splits both texts on whitespace and counts leading
// words that match exactly, stopping at the first mismatch.
func CorrectPrefixWords(typed, prompt string) int {
	typedWords := strings.Fields(typed)
	promptWords := strings.Fields(prompt)
	n := 0
	for n < len(typedWords) && n < len(promptWords) && typedWords[n] == promptWords[n] {
		n++
	}
	return n
}

// LockedIndex returns the end of the furthest word, including its trailing
// space, that is typed correctly with nothing wrong before it.
func LockedIndex(typed, prompt []rune) int {
	lock := 0
	for i := 0; i < len(typed) && i < len(prompt); i++ {
		if !Matches(typed[i], prompt[i]) {
			break
		}
		if prompt[i] == ' ' || prompt[i] == '\n' {
			lock = i + 1
		}
	}
	return lock
}
