package session

import (
	"time"

	"github.com/verte-zerg/typinglab/internal/model"
)

// Effects lists the side effects a transition asks the caller to perform.
type Effects struct {
	StartTicker   bool
	StopTicker    bool
	ResetView     bool
	RequestPrompt bool
	// PersistDuration is the newly selected duration, zero when unchanged.
	PersistDuration int
	Extend          *ExtendRequest
	Result          *Result
	End             *EndEvent
}

// Merge folds other into e.
func (e *Effects) Merge(other Effects) {
	e.StartTicker = e.StartTicker || other.StartTicker
	e.StopTicker = e.StopTicker || other.StopTicker
	e.ResetView = e.ResetView || other.ResetView
	e.RequestPrompt = e.RequestPrompt || other.RequestPrompt
	if other.PersistDuration != 0 {
		e.PersistDuration = other.PersistDuration
	}
	if other.Extend != nil {
		e.Extend = other.Extend
	}
	if other.Result != nil {
		e.Result = other.Result
	}
	if other.End != nil {
		e.End = other.End
	}
}

// ExtendRequest asks for more prompt text for the given prompt generation.
type ExtendRequest struct {
	Generation uint64
}

// Result is the outcome of a finished session.
type Result struct {
	Mode            model.Mode
	Reason          string
	WPM             float64 // net
	GrossWPM        float64
	Accuracy        float64 // 0-1
	DurationSeconds int
	ElapsedSeconds  int
	PromptID        int
	LevelID         int
	TypedText       string
	PromptText      string
	StartedAt       time.Time
	EndedAt         time.Time
	Series          []model.MetricSample
}

// EndEvent is published when a training session ends.
type EndEvent struct {
	Training        bool
	Reason          string
	TypedText       string
	PromptText      string
	DurationSeconds int
	ElapsedSeconds  int
	LevelID         int
	WPM             float64
	Accuracy        float64
}
