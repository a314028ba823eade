package session

import "time"

// Command is an input to the state machine produced by the input adapter or
// by the screen.
type Command interface {
	command()
}

// InsertText appends text to the typed buffer.
type InsertText struct{ Text string }

// DeleteBackward removes one rune.
type DeleteBackward struct{}

// DeleteWord removes the previous word.
type DeleteWord struct{}

// Tick advances the clock by one second.
type Tick struct{}

// Reset restarts the session.
type Reset struct{}

// SetPrompt replaces the prompt and training parameters.
type SetPrompt struct {
	Prompt          Prompt
	DurationSeconds int
	LevelID         int
	RequiredWords   int
}

// ExtendPrompt delivers fetched prompt text.
type ExtendPrompt struct {
	Generation uint64
	Text       string
}

// ExtendFailed reports a failed prompt fetch.
type ExtendFailed struct{ Generation uint64 }

// SetDuration selects a new session length.
type SetDuration struct{ Seconds int }

func (InsertText) command()     {}
func (DeleteBackward) command() {}
func (DeleteWord) command()     {}
func (Tick) command()           {}
func (Reset) command()          {}
func (SetPrompt) command()      {}
func (ExtendPrompt) command()   {}
func (ExtendFailed) command()   {}
func (SetDuration) command()    {}

// Apply dispatches cmd to the matching transition.
func (s *Session) Apply(cmd Command, now time.Time) Effects {
	switch c := cmd.(type) {
	case InsertText:
		return s.InsertText(c.Text, now)
	case DeleteBackward:
		return s.DeleteBackward(now)
	case DeleteWord:
		return s.DeleteWord(now)
	case Tick:
		return s.Tick(now)
	case Reset:
		return s.Reset()
	case SetPrompt:
		return s.SetPrompt(c.Prompt, c.DurationSeconds, c.LevelID, c.RequiredWords)
	case ExtendPrompt:
		return s.ExtendPrompt(c.Generation, c.Text, now)
	case ExtendFailed:
		return s.ExtendFailed(c.Generation)
	case SetDuration:
		return s.SetDuration(c.Seconds)
	}
	return Effects{}
}
