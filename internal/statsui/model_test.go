package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typinglab/internal/model"
)

type fakeSource struct {
	sessions []model.SessionAggregate
	samples  map[string][]model.MetricSample
	err      error
}

func (f *fakeSource) ListSessions(_ context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.SessionAggregate
	for _, s := range f.sessions {
		if cfg.Mode != "" && string(s.Mode) != cfg.Mode {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSource) SessionSamples(_ context.Context, id string) ([]model.MetricSample, error) {
	return f.samples[id], nil
}

func newSource() *fakeSource {
	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	return &fakeSource{
		sessions: []model.SessionAggregate{
			{ID: "a", EndedAt: base, Mode: model.ModeCasual, Reason: "time", WPM: 50, Accuracy: 0.9, DurationSeconds: 15, SampleCount: 3},
			{ID: "b", EndedAt: base.Add(time.Hour), Mode: model.ModeRanked, Reason: "completed", WPM: 70, Accuracy: 0.95, DurationSeconds: 30, SampleCount: 3},
		},
		samples: map[string][]model.MetricSample{
			"b": {{WPM: 60, Accuracy: 100}, {WPM: 72, Accuracy: 98}, {WPM: 70, Accuracy: 95}},
		},
	}
}

func TestOverviewShowsSummary(t *testing.T) {
	m := NewModel(newSource(), model.StatsConfig{CurveWindow: 5})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m.View()
	for _, want := range []string{"Sessions", "Avg WPM", "60.0", "Best WPM", "70.0"} {
		if !strings.Contains(view, want) {
			t.Fatalf("overview missing %q", want)
		}
	}
}

func TestSessionRowsNewestFirst(t *testing.T) {
	rows, ids := sessionRows(newSource().sessions)
	if len(rows) != 2 || ids[0] != "b" || ids[1] != "a" {
		t.Fatalf("unexpected order: %v", ids)
	}
	if rows[0][1] != "ranked" || rows[0][3] != "70.0" {
		t.Fatalf("unexpected row: %v", rows[0])
	}
}

func TestOpenSessionChartAndHover(t *testing.T) {
	m := NewModel(newSource(), model.StatsConfig{CurveWindow: 5})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabSessions {
		t.Fatalf("expected sessions tab")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.activeTab != tabChart || m.selected == nil || m.selected.ID != "b" {
		t.Fatalf("expected chart of newest session")
	}

	headerHeight, _, _ := m.layoutHeights()
	c := m.chart()
	m.Update(tea.MouseMsg{X: c.PlotLeft(), Y: headerHeight + chartTop + 1, Action: tea.MouseActionMotion})
	if m.hover != 0 {
		t.Fatalf("expected first sample hovered, got %d", m.hover)
	}
	if !strings.Contains(m.View(), "1s · 60 WPM") {
		t.Fatalf("hover label missing")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.hover != 1 {
		t.Fatalf("expected hover moved by key, got %d", m.hover)
	}
	m.Update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionMotion})
	if m.hover != -1 {
		t.Fatalf("expected hover cleared")
	}
}

func TestFilterByMode(t *testing.T) {
	m := NewModel(newSource(), model.StatsConfig{CurveWindow: 5})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[0].SetValue("ranked")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode || len(m.report.Sessions) != 1 {
		t.Fatalf("filter not applied: %d sessions", len(m.report.Sessions))
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m.filterInputs[0].SetValue("sprint")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected invalid mode error")
	}
}

func TestLoadErrorShown(t *testing.T) {
	m := NewModel(&fakeSource{err: errors.New("boom")}, model.StatsConfig{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	if !strings.Contains(m.View(), "boom") {
		t.Fatalf("expected error in footer")
	}
}

func TestCurveWindowSteps(t *testing.T) {
	if nextCurveWindow(1) != 5 || nextCurveWindow(5) != 10 || nextCurveWindow(7) != 10 {
		t.Fatalf("unexpected next window")
	}
	if prevCurveWindow(5) != 1 || prevCurveWindow(10) != 5 || prevCurveWindow(7) != 5 {
		t.Fatalf("unexpected prev window")
	}
}
