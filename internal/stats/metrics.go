// Package stats contains statistics calculations and reporting.
package stats

import (
	"time"

	"github.com/verte-zerg/typinglab/internal/diff"
	"github.com/verte-zerg/typinglab/internal/model"
)

// charsPerWord is the standard word length used for WPM.
const charsPerWord = 5.0

// minMinutes keeps the first sample from dividing by zero.
const minMinutes = 1e-9

// Metrics is a point-in-time measurement of a typing session.
type Metrics struct {
	GrossWPM float64
	NetWPM   float64
	Accuracy float64 // 0-1
	Correct  int
	Typed    int
}

// Compute derives gross/net WPM and accuracy from the typed buffer, the
// prompt and the time elapsed since the session started.
func Compute(typed, prompt []rune, elapsed time.Duration) Metrics {
	if elapsed < 0 {
		elapsed = 0
	}
	correct := diff.CorrectCount(typed, prompt)
	total := len(typed)
	accuracy := 0.0
	if total > 0 {
		accuracy = float64(correct) / float64(total)
	}
	minutes := max(minMinutes, float64(elapsed.Milliseconds())/60000.0)
	gross := (float64(total) / charsPerWord) / minutes
	return Metrics{
		GrossWPM: gross,
		NetWPM:   gross * accuracy,
		Accuracy: accuracy,
		Correct:  correct,
		Typed:    total,
	}
}

// Sample converts metrics into a series sample.
func (m Metrics) Sample() model.MetricSample {
	return model.MetricSample{WPM: m.NetWPM, Accuracy: m.Accuracy * 100}
}
