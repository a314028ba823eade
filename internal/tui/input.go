package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typinglab/internal/session"
)

// commandFor translates a key press on the typing screen into a session
// command. Keys that do not edit the buffer return false.
func commandFor(msg tea.KeyMsg) (session.Command, bool) {
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyDelete:
		if msg.Alt {
			return session.DeleteWord{}, true
		}
		return session.DeleteBackward{}, true
	case tea.KeyCtrlW:
		return session.DeleteWord{}, true
	case tea.KeySpace:
		return session.InsertText{Text: " "}, true
	case tea.KeyEnter:
		return session.InsertText{Text: "\n"}, true
	case tea.KeyRunes:
		if msg.Alt {
			return nil, false
		}
		text := string(msg.Runes)
		if msg.Paste {
			text = collapsePaste(text)
		}
		if text == "" {
			return nil, false
		}
		return session.InsertText{Text: text}, true
	}
	return nil, false
}

// collapsePaste turns whitespace runs of pasted text into single spaces.
// Leading and trailing whitespace is kept as one space.
func collapsePaste(text string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			if !inSpace {
				b.WriteRune(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
