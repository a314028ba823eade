package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	Restart    key.Binding
	Duration   key.Binding
	DeleteWord key.Binding
	Continue   key.Binding
	Back       key.Binding
	Up         key.Binding
	Down       key.Binding
	Start      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Restart:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "restart")),
		Duration:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "duration")),
		DeleteWord: key.NewBinding(key.WithKeys("ctrl+w", "alt+backspace"), key.WithHelp("ctrl+w", "delete word")),
		Continue:   key.NewBinding(key.WithKeys("enter", "tab"), key.WithHelp("enter", "continue")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Start:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start level")),
	}
}

// typingHelp is shown under the prompt.
type typingHelp struct {
	keys     keyMap
	training bool
}

func (h typingHelp) ShortHelp() []key.Binding {
	if h.training {
		return []key.Binding{h.keys.Restart, h.keys.DeleteWord, h.keys.Back, h.keys.Quit}
	}
	return []key.Binding{h.keys.Restart, h.keys.Duration, h.keys.DeleteWord, h.keys.Quit}
}

func (h typingHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

// resultHelp is shown on the result screen.
type resultHelp struct{ keys keyMap }

func (h resultHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.keys.Continue, h.keys.Back, h.keys.Quit}
}

func (h resultHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

// levelsHelp is shown on the training level list.
type levelsHelp struct{ keys keyMap }

func (h levelsHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.keys.Up, h.keys.Down, h.keys.Start, h.keys.Quit}
}

func (h levelsHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}
