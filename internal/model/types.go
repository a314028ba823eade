// Package model defines shared data structures.
package model

import "time"

// Mode identifies the kind of typing session.
type Mode string

// Session modes.
const (
	ModeCasual   Mode = "casual"
	ModeRanked   Mode = "ranked"
	ModeTraining Mode = "training"
)

// SessionConfig is the start configuration of a typing screen.
type SessionConfig struct {
	DurationSeconds       int    `json:"durationSeconds"`
	PromptText            string `json:"promptText"`
	PromptID              int    `json:"promptId"`
	LiveWPM               int    `json:"liveWpm"`
	Ranked                bool   `json:"ranked"`
	Training              bool   `json:"training"`
	UserID                *int64 `json:"userId,omitempty"`
	TrainingLevelID       *int   `json:"trainingLevelId,omitempty"`
	TrainingRequiredWords *int   `json:"trainingRequiredWords,omitempty"`
}

// Mode reports the session mode implied by the config flags.
func (c SessionConfig) Mode() Mode {
	switch {
	case c.Training:
		return ModeTraining
	case c.Ranked:
		return ModeRanked
	default:
		return ModeCasual
	}
}

// PromptOptions controls prompt generation.
type PromptOptions struct {
	Words      int
	Source     string
	NumberRate float64
	Lang       string
	CapsPct    float64
	PunctPct   float64
	PunctSet   string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// MetricSample is one per-second measurement of a running session.
type MetricSample struct {
	WPM      float64
	Accuracy float64 // percent, 0-100
}

// SessionRecord captures a finished typing session.
type SessionRecord struct {
	ID              string
	StartedAt       time.Time
	EndedAt         time.Time
	Mode            Mode
	Reason          string
	WPM             float64
	Accuracy        float64 // 0-1
	DurationSeconds int
	ElapsedSeconds  int
	PromptID        int
	LevelID         int
	TrainingMode    string
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	ID              string
	EndedAt         time.Time
	Mode            Mode
	Reason          string
	WPM             float64
	Accuracy        float64
	DurationSeconds int
	SampleCount     int
}

// Submission is a ranked result as accepted by the backend.
type Submission struct {
	ID              string
	UserID          string
	WPM             float64
	Accuracy        float64
	DurationSeconds int
	PromptID        int
	CreatedAt       time.Time
}

// Progress maps training mode to level to percent (0-100).
type Progress map[string]map[int]int

// Percent returns the stored percent for a mode level, zero when unknown.
func (p Progress) Percent(mode string, level int) int {
	levels, ok := p[mode]
	if !ok {
		return 0
	}
	return levels[level]
}

// Set stores a percent for a mode level.
func (p Progress) Set(mode string, level, percent int) {
	levels, ok := p[mode]
	if !ok {
		levels = map[int]int{}
		p[mode] = levels
	}
	levels[level] = percent
}
