// Package session implements the typing session state machine.
//
// A Session is a plain value owned by the screen. Every transition takes the
// current time explicitly and returns the Effects the caller has to carry out
// (start or stop the ticker, fetch more prompt text, persist a result).
package session

import (
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/typinglab/internal/diff"
	"github.com/verte-zerg/typinglab/internal/model"
	"github.com/verte-zerg/typinglab/internal/stats"
)

// State is the lifecycle state of a session.
type State uint8

// Session states.
const (
	Idle State = iota
	Active
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// Finish reasons.
const (
	ReasonTime      = "time"
	ReasonCompleted = "completed"
)

// ExtendThreshold is the number of untyped prompt runes below which a casual
// session asks for more text.
const ExtendThreshold = 120

// Durations lists the selectable session lengths in seconds.
var Durations = []int{15, 30, 60, 120}

// DefaultDuration is used when no valid duration is configured.
const DefaultDuration = 60

// ValidDuration reports whether seconds is one of Durations.
func ValidDuration(seconds int) bool {
	for _, d := range Durations {
		if d == seconds {
			return true
		}
	}
	return false
}

// Prompt is the immutable target text of a session.
type Prompt struct {
	ID   int
	Text string
}

// Config describes how a session behaves.
type Config struct {
	Mode            model.Mode
	DurationSeconds int
	LevelID         int
	RequiredWords   int
}

// Session is the state of one typing screen.
type Session struct {
	mode     model.Mode
	state    State
	prompt   Prompt
	target   []rune
	typed    []rune
	start    time.Time
	duration int
	remain   int
	series   []model.MetricSample
	levelID  int
	required int

	// gen changes whenever the prompt is replaced so that late extension
	// responses can be told apart.
	gen           uint64
	extendPending bool
	result        *Result
}

// New creates an idle session for prompt.
func New(cfg Config, prompt Prompt) *Session {
	duration := cfg.DurationSeconds
	if duration <= 0 {
		duration = DefaultDuration
	}
	mode := cfg.Mode
	if mode == "" {
		mode = model.ModeCasual
	}
	s := &Session{
		mode:     mode,
		duration: duration,
		remain:   duration,
		levelID:  cfg.LevelID,
		required: cfg.RequiredWords,
	}
	s.setPrompt(prompt)
	return s
}

func (s *Session) setPrompt(p Prompt) {
	p.Text = diff.Normalize(p.Text)
	s.prompt = p
	s.target = []rune(p.Text)
	s.gen++
	s.extendPending = false
}

// Mode returns the session mode.
func (s *Session) Mode() model.Mode { return s.mode }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Prompt returns the current prompt.
func (s *Session) Prompt() Prompt { return s.prompt }

// PromptRunes returns the prompt as runes. Callers must not modify it.
func (s *Session) PromptRunes() []rune { return s.target }

// Typed returns the typed buffer. Callers must not modify it.
func (s *Session) Typed() []rune { return s.typed }

// Remaining returns the seconds left on the clock.
func (s *Session) Remaining() int { return s.remain }

// Duration returns the configured session length in seconds.
func (s *Session) Duration() int { return s.duration }

// Series returns the per-second samples collected so far.
func (s *Session) Series() []model.MetricSample { return s.series }

// LevelID returns the training level, zero outside training.
func (s *Session) LevelID() int { return s.levelID }

// Generation identifies the current prompt.
func (s *Session) Generation() uint64 { return s.gen }

// ExtendPending reports whether an extension request is in flight.
func (s *Session) ExtendPending() bool { return s.extendPending }

// Result returns the final result once the session has finished.
func (s *Session) Result() (Result, bool) {
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}

// Required returns the number of words a training level needs. Without an
// explicit requirement the whole prompt is required.
func (s *Session) Required() int {
	if s.required > 0 {
		return s.required
	}
	return len(strings.Fields(s.prompt.Text))
}

// CorrectWords counts leading prompt words typed exactly.
func (s *Session) CorrectWords() int {
	return diff.CorrectPrefixWords(string(s.typed), s.prompt.Text)
}

// LockedIndex is the part of the typed buffer that deletions cannot cut
// into. It is only non-zero in training mode.
func (s *Session) LockedIndex() int {
	if s.mode != model.ModeTraining {
		return 0
	}
	return diff.LockedIndex(s.typed, s.target)
}

// Elapsed returns the time since the first keystroke.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s.start.IsZero() {
		return 0
	}
	if elapsed := now.Sub(s.start); elapsed > 0 {
		return elapsed
	}
	return 0
}

// Metrics measures the session at now.
func (s *Session) Metrics(now time.Time) stats.Metrics {
	return stats.Compute(s.typed, s.target, s.Elapsed(now))
}

// InsertText appends typed text. The first content-changing insert starts the
// session.
func (s *Session) InsertText(text string, now time.Time) Effects {
	var eff Effects
	if s.state == Finished || text == "" {
		return eff
	}
	if s.mode == model.ModeTraining && s.CorrectWords() >= s.Required() {
		return eff
	}
	if s.state == Idle {
		s.state = Active
		s.start = now
		eff.StartTicker = true
	}
	s.typed = append(s.typed, []rune(text)...)
	s.afterInput(now, &eff)
	return eff
}

// DeleteBackward removes the last typed rune.
func (s *Session) DeleteBackward(now time.Time) Effects {
	var eff Effects
	if s.state == Finished || len(s.typed) == 0 {
		return eff
	}
	if len(s.typed) <= s.LockedIndex() {
		return eff
	}
	s.typed = s.typed[:len(s.typed)-1]
	return eff
}

// DeleteWord removes the previous word and the spaces after it.
func (s *Session) DeleteWord(now time.Time) Effects {
	var eff Effects
	if s.state == Finished || len(s.typed) == 0 {
		return eff
	}
	cut := len(s.typed)
	for cut > 0 && isSpace(s.typed[cut-1]) {
		cut--
	}
	for cut > 0 && !isSpace(s.typed[cut-1]) {
		cut--
	}
	cut = max(cut, s.LockedIndex())
	if cut < len(s.typed) {
		s.typed = s.typed[:cut]
	}
	return eff
}

// Tick advances the clock by one second while active.
func (s *Session) Tick(now time.Time) Effects {
	var eff Effects
	if s.state != Active {
		return eff
	}
	s.remain--
	s.series = append(s.series, s.Metrics(now).Sample())
	if s.remain <= 0 {
		s.remain = 0
		s.finish(ReasonTime, now, &eff)
	}
	return eff
}

// Reset returns the session to idle with an empty buffer. Casual sessions
// also ask for a fresh prompt.
func (s *Session) Reset() Effects {
	var eff Effects
	s.reset(&eff)
	if s.mode == model.ModeCasual {
		eff.RequestPrompt = true
	}
	return eff
}

func (s *Session) reset(eff *Effects) {
	if s.state == Active {
		eff.StopTicker = true
	}
	s.state = Idle
	s.typed = nil
	s.series = nil
	s.start = time.Time{}
	s.remain = s.duration
	s.result = nil
	s.gen++
	s.extendPending = false
	eff.ResetView = true
}

// SetPrompt replaces the prompt and training parameters, then resets.
// Non-positive duration keeps the current one.
func (s *Session) SetPrompt(p Prompt, durationSeconds, levelID, required int) Effects {
	var eff Effects
	if durationSeconds > 0 {
		s.duration = durationSeconds
	}
	s.levelID = levelID
	s.required = required
	s.setPrompt(p)
	s.reset(&eff)
	return eff
}

// SetDuration changes the session length. Only the values in Durations are
// accepted; the clock is only updated while idle.
func (s *Session) SetDuration(seconds int) Effects {
	var eff Effects
	if !ValidDuration(seconds) {
		return eff
	}
	s.duration = seconds
	if s.state == Idle {
		s.remain = seconds
	}
	eff.PersistDuration = seconds
	return eff
}

// ExtendPrompt appends fetched text to the prompt. Responses for an older
// prompt generation are dropped.
func (s *Session) ExtendPrompt(gen uint64, text string, now time.Time) Effects {
	var eff Effects
	if gen != s.gen {
		return eff
	}
	s.extendPending = false
	extra := diff.Normalize(text)
	if extra == "" || s.state == Finished {
		return eff
	}
	s.prompt.Text = diff.Normalize(s.prompt.Text + " " + extra)
	s.target = []rune(s.prompt.Text)
	return eff
}

// ExtendFailed clears the in-flight flag so the next keystroke retries.
func (s *Session) ExtendFailed(gen uint64) Effects {
	if gen == s.gen {
		s.extendPending = false
	}
	return Effects{}
}

func (s *Session) afterInput(now time.Time, eff *Effects) {
	switch s.mode {
	case model.ModeRanked:
		if diff.Equal(s.typed, s.target) {
			s.finish(ReasonCompleted, now, eff)
		}
	case model.ModeTraining:
		if s.CorrectWords() >= s.Required() {
			s.finish(ReasonCompleted, now, eff)
		}
	default:
		s.maybeExtend(eff)
	}
}

func (s *Session) maybeExtend(eff *Effects) {
	if s.extendPending || s.state == Finished {
		return
	}
	if len(s.target)-len(s.typed) > ExtendThreshold {
		return
	}
	s.extendPending = true
	eff.Extend = &ExtendRequest{Generation: s.gen}
}

// finish ends the session once; later calls do nothing.
func (s *Session) finish(reason string, now time.Time, eff *Effects) {
	if s.state == Finished {
		return
	}
	s.state = Finished
	eff.StopTicker = true

	elapsed := s.Elapsed(now)
	metrics := stats.Compute(s.typed, s.target, elapsed)
	if len(s.series) == 0 {
		s.series = append(s.series, metrics.Sample())
	}
	series := make([]model.MetricSample, len(s.series))
	copy(series, s.series)

	res := Result{
		Mode:            s.mode,
		Reason:          reason,
		WPM:             metrics.NetWPM,
		GrossWPM:        metrics.GrossWPM,
		Accuracy:        metrics.Accuracy,
		DurationSeconds: s.duration,
		ElapsedSeconds:  int(math.Round(elapsed.Seconds())),
		PromptID:        s.prompt.ID,
		LevelID:         s.levelID,
		TypedText:       string(s.typed),
		PromptText:      s.prompt.Text,
		StartedAt:       s.start,
		EndedAt:         now,
		Series:          series,
	}
	s.result = &res
	eff.Result = &res
	if s.mode == model.ModeTraining {
		eff.End = &EndEvent{
			Training:        true,
			Reason:          reason,
			TypedText:       res.TypedText,
			PromptText:      res.PromptText,
			DurationSeconds: res.DurationSeconds,
			ElapsedSeconds:  res.ElapsedSeconds,
			LevelID:         res.LevelID,
			WPM:             res.WPM,
			Accuracy:        res.Accuracy,
		}
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}
