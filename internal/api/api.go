// Package api defines the typing backend contract and its implementations:
// an HTTP client for a remote server and an in-process offline backend.
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/verte-zerg/typinglab/internal/model"
)

// Request bounds shared by every backend.
const (
	DefaultPromptWords = 300
	MaxWPM             = 400
	DefaultDuration    = 60
)

var (
	// ErrStatus wraps non-2xx responses.
	ErrStatus = errors.New("unexpected status")
	// ErrUnauthorized is returned when the backend has no user for the request.
	ErrUnauthorized = errors.New("not authenticated")
	// ErrInvalid wraps rejected payloads.
	ErrInvalid = errors.New("invalid payload")
)

// Backend supplies prompts and persists results and training progress.
type Backend interface {
	FetchPrompt(ctx context.Context, req PromptRequest) (string, error)
	SubmitSession(ctx context.Context, req SessionRequest) (SessionResponse, error)
	TrainingProgress(ctx context.Context) (model.Progress, error)
	SaveTrainingProgress(ctx context.Context, mode string, level, percent int) error
}

// PromptRequest asks for generated prompt text.
type PromptRequest struct {
	Words      int
	Source     string
	NumberRate float64
}

// PromptResponse is the body of GET /api/prompt.
type PromptResponse struct {
	Prompt string `json:"prompt"`
}

// SessionRequest is the body of POST /api/session_json.
type SessionRequest struct {
	WPM             float64 `json:"wpm"`
	Accuracy        float64 `json:"accuracy"`
	DurationSeconds int     `json:"duration_seconds"`
	PromptID        int     `json:"prompt_id"`
}

// SessionResponse answers a submission. Rating and Delta are only present
// when a rating service is behind the backend.
type SessionResponse struct {
	OK     bool   `json:"ok"`
	Rating *int   `json:"rating,omitempty"`
	Delta  *int   `json:"delta,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ProgressRequest is the body of POST /api/training_progress.
type ProgressRequest struct {
	Mode    string `json:"mode"`
	Level   int    `json:"level"`
	Percent int    `json:"percent"`
}

// ProgressResponse is the body of GET /api/training_progress.
type ProgressResponse struct {
	OK       bool           `json:"ok"`
	Progress model.Progress `json:"progress"`
	Error    string         `json:"error,omitempty"`
}

// ValidateSession checks a submission and normalizes its duration.
func ValidateSession(req SessionRequest) (SessionRequest, error) {
	if req.Accuracy < 0 || req.Accuracy > 1 {
		return req, fmt.Errorf("%w: bad_accuracy", ErrInvalid)
	}
	if req.WPM < 0 || req.WPM > MaxWPM {
		return req, fmt.Errorf("%w: bad_wpm", ErrInvalid)
	}
	switch req.DurationSeconds {
	case 15, 30, 60, 120:
	default:
		req.DurationSeconds = DefaultDuration
	}
	if req.PromptID < 0 {
		req.PromptID = 0
	}
	return req, nil
}

// ValidateProgress checks a progress update against the known modes and
// clamps its percent to 0-100.
func ValidateProgress(req ProgressRequest, modes []string) (ProgressRequest, error) {
	known := false
	for _, m := range modes {
		if m == req.Mode {
			known = true
			break
		}
	}
	if !known {
		return req, fmt.Errorf("%w: bad_mode", ErrInvalid)
	}
	if req.Level < 1 || req.Level > 3 {
		return req, fmt.Errorf("%w: bad_level", ErrInvalid)
	}
	req.Percent = min(max(req.Percent, 0), 100)
	return req, nil
}
