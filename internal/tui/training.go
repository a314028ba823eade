package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typinglab/internal/api"
	"github.com/verte-zerg/typinglab/internal/training"
)

func (m *Model) handleLevelsKey(msg tea.KeyMsg) tea.Cmd {
	levels := m.tracker.Mode().Levels
	switch msg.String() {
	case "up", "k":
		if m.levelCursor > 0 {
			m.levelCursor--
		}
	case "down", "j":
		if m.levelCursor < len(levels)-1 {
			m.levelCursor++
		}
	case "1", "2", "3":
		idx := int(msg.String()[0] - '1')
		if idx < len(levels) {
			m.levelCursor = idx
			return m.startLevel(levels[idx])
		}
	case "enter":
		return m.startLevel(levels[m.levelCursor])
	case "esc", "q":
		return tea.Quit
	}
	return nil
}

// startLevel fetches a prompt sized for the level. Locked levels only
// produce a status message.
func (m *Model) startLevel(level training.Level) tea.Cmd {
	if m.tracker.Locked(level.ID) {
		m.status = fmt.Sprintf("Level %d is locked. Reach 100%% on level %d first.", level.ID, level.ID-1)
		return nil
	}
	if m.loading {
		return nil
	}
	m.status = ""
	m.promptGen++
	m.loading = true
	gen := m.promptGen
	backend := m.backend
	req := api.PromptRequest{Words: level.RequiredWords, Source: level.Source, NumberRate: level.NumberRate}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendTimeout)
		defer cancel()
		text, err := backend.FetchPrompt(ctx, req)
		return promptMsg{gen: gen, text: text, level: level.ID, err: err}
	}
}

func (m *Model) levelsView() string {
	mode := m.tracker.Mode()
	title := fmt.Sprintf("Training · %s", mode.Title)
	overall := footerStyle.Render(fmt.Sprintf("overall %d%%", m.tracker.Overall()))
	lines := []string{lipgloss.JoinHorizontal(lipgloss.Top, titleStyle.Render(title), "   ", overall), ""}

	totals := make([]string, 0, len(training.Modes))
	for _, other := range training.Modes {
		entry := fmt.Sprintf("%s %d%%", other.Title, m.tracker.ModeTotal(other.Name))
		if other.Name == mode.Name {
			entry = selectedStyle.Render(entry)
		} else {
			entry = footerStyle.Render(entry)
		}
		totals = append(totals, entry)
	}
	lines = append(lines, strings.Join(totals, "   "), "")

	for i, level := range mode.Levels {
		lines = append(lines, m.levelRow(i, level))
	}
	lines = append(lines, "")
	if m.loading {
		lines = append(lines, footerStyle.Render("loading…"))
	}
	if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}
	lines = append(lines, m.help.View(levelsHelp{keys: m.keys}))
	return strings.Join(lines, "\n")
}

func (m *Model) levelRow(i int, level training.Level) string {
	cursor := "  "
	if i == m.levelCursor {
		cursor = selectedStyle.Render("> ")
	}
	label := fmt.Sprintf("Level %d · %d words in %ds", level.ID, level.RequiredWords, level.DurationSeconds)
	if m.tracker.Locked(level.ID) {
		return cursor + lockedStyle.Render(label+"  locked")
	}
	pct := m.tracker.Percent(level.ID)
	if i == m.levelCursor {
		label = selectedStyle.Render(label)
	}
	return fmt.Sprintf("%s%s  %s %3d%%", cursor, label, m.bars.ViewAs(float64(pct)/100), pct)
}
