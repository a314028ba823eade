package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typinglab/internal/model"
	"github.com/verte-zerg/typinglab/internal/session"
	"github.com/verte-zerg/typinglab/internal/training"
)

func TestRenderFooterFormats(t *testing.T) {
	m := newTestModel(t, model.SessionConfig{DurationSeconds: 30, PromptText: "alpha beta", LiveWPM: 1}, nil)
	out := m.renderFooter()
	if !containsAll(out, []string{"30s", "15s", "[30s]", "60s", "120s"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}

	typeText(m, "alp")
	m.Update(tickMsg{gen: m.tickGen})
	out = m.renderFooter()
	if strings.Contains(out, "[30s]") {
		t.Fatalf("duration picker shown while active: %s", out)
	}
	if !containsAll(out, []string{"29s", "WPM", "%"}) {
		t.Fatalf("footer missing live metrics: %s", out)
	}
}

func TestRenderFooterHidesLiveMetrics(t *testing.T) {
	m := newTestModel(t, model.SessionConfig{DurationSeconds: 30, PromptText: "alpha beta"}, nil)
	typeText(m, "alp")
	m.Update(tickMsg{gen: m.tickGen})
	if out := m.renderFooter(); strings.Contains(out, "WPM") {
		t.Fatalf("live metrics shown with liveWpm=0: %s", out)
	}
}

func TestDurationCyclesWhileIdle(t *testing.T) {
	m := newTestModel(t, model.SessionConfig{DurationSeconds: 60, PromptText: "alpha beta"}, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if got := m.sess.Duration(); got != 120 {
		t.Fatalf("expected 120s, got %d", got)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if got := m.sess.Duration(); got != 15 {
		t.Fatalf("expected wrap to 15s, got %d", got)
	}

	typeText(m, "a")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if got := m.sess.Duration(); got != 15 {
		t.Fatalf("duration changed while active: %d", got)
	}
	if m.sess.State() != session.Active {
		t.Fatalf("expected active session")
	}
}

func TestDurationPicker(t *testing.T) {
	if got := durationPicker(15); got != "[15s] 30s 60s 120s" {
		t.Fatalf("unexpected picker: %q", got)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func TestTrainingCounterCapsAtRequired(t *testing.T) {
	mode, _ := training.Lookup("easy")
	tracker := training.NewTracker(mode, nil, nil, nil)
	m := newTestModel(t, model.SessionConfig{}, tracker)
	m.sess.Apply(session.SetPrompt{
		Prompt:          session.Prompt{Text: "one two three four"},
		DurationSeconds: 30,
		LevelID:         1,
		RequiredWords:   2,
	}, m.now())
	m.screen = screenTyping

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("one two three four "), Paste: true})
	if got := m.sess.CorrectWords(); got != 4 {
		t.Fatalf("expected 4 correct words, got %d", got)
	}
	out := m.renderFooter()
	if !strings.Contains(out, "2/2 words") || strings.Contains(out, "4/2") {
		t.Fatalf("counter not capped: %s", out)
	}
}
