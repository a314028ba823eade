// Package training implements graded practice levels and their progress.
package training

import (
	"math"
	"strings"

	"github.com/verte-zerg/typinglab/internal/diff"
	"github.com/verte-zerg/typinglab/internal/session"
)

// Level is one graded practice step.
type Level struct {
	ID              int
	RequiredWords   int
	DurationSeconds int
	Source          string
	NumberRate      float64
}

// Mode is a named group of three levels.
type Mode struct {
	Name   string
	Title  string
	Levels []Level
}

// Modes lists the training modes in display order.
var Modes = []Mode{
	{
		Name:  "easy",
		Title: "Easy",
		Levels: []Level{
			{ID: 1, RequiredWords: 10, DurationSeconds: 30, Source: "1000"},
			{ID: 2, RequiredWords: 20, DurationSeconds: 30, Source: "1000"},
			{ID: 3, RequiredWords: 30, DurationSeconds: 30, Source: "1000"},
		},
	},
	{
		Name:  "advanced",
		Title: "Advanced",
		Levels: []Level{
			{ID: 1, RequiredWords: 20, DurationSeconds: 30, Source: "5000"},
			{ID: 2, RequiredWords: 25, DurationSeconds: 30, Source: "5000"},
			{ID: 3, RequiredWords: 32, DurationSeconds: 30, Source: "5000"},
		},
	},
	{
		Name:  "hard",
		Title: "Hard",
		Levels: []Level{
			{ID: 1, RequiredWords: 30, DurationSeconds: 60, Source: "5000", NumberRate: 0.15},
			{ID: 2, RequiredWords: 40, DurationSeconds: 60, Source: "5000", NumberRate: 0.15},
			{ID: 3, RequiredWords: 50, DurationSeconds: 60, Source: "5000", NumberRate: 0.15},
		},
	},
}

// Lookup returns the mode with the given name.
func Lookup(name string) (Mode, bool) {
	for _, m := range Modes {
		if m.Name == name {
			return m, true
		}
	}
	return Mode{}, false
}

// ModeNames returns the names of all modes.
func ModeNames() []string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = m.Name
	}
	return names
}

// Level returns the level with the given id.
func (m Mode) Level(id int) (Level, bool) {
	for _, l := range m.Levels {
		if l.ID == id {
			return l, true
		}
	}
	return Level{}, false
}

// CorrectPrefixWords counts leading words of prompt typed exactly.
func CorrectPrefixWords(typed, prompt string) int {
	return diff.CorrectPrefixWords(typed, prompt)
}

// Score converts a finished training session into a percent. A completed
// level always scores 100. Without a positive requirement the prompt's word
// count is used.
func Score(ev session.EndEvent, required int) int {
	if ev.Reason == session.ReasonCompleted {
		return 100
	}
	if required <= 0 {
		required = len(strings.Fields(ev.PromptText))
	}
	if required <= 0 {
		return 0
	}
	correct := CorrectPrefixWords(ev.TypedText, ev.PromptText)
	return clampPercent(int(math.Round(100 * float64(correct) / float64(required))))
}

func clampPercent(p int) int {
	return min(max(p, 0), 100)
}
