package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/verte-zerg/typinglab/internal/generator"
	"github.com/verte-zerg/typinglab/internal/model"
	"github.com/verte-zerg/typinglab/internal/wordlist"
)

// LocalStore is the persistence used by the offline backend.
type LocalStore interface {
	InsertSubmission(ctx context.Context, sub model.Submission) (bool, error)
	TrainingProgress(ctx context.Context) (model.Progress, error)
	SaveTrainingProgress(ctx context.Context, mode string, level, percent int) error
}

// Local serves prompts from an in-memory word list and persists to a local
// store. It never computes a rating.
type Local struct {
	gen    *generator.Generator
	words  []string
	style  generator.Options
	store  LocalStore
	userID string
	modes  []string
}

// LocalConfig configures a Local backend.
type LocalConfig struct {
	Generator *generator.Generator
	// Words is a frequency-ordered list; nil selects the built-in list.
	Words []string
	// Style carries caps and punctuation settings; word counts come from
	// each request.
	Style  generator.Options
	Store  LocalStore
	UserID string
	// Modes lists the accepted training modes.
	Modes []string
}

// NewLocal builds an offline backend.
func NewLocal(cfg LocalConfig) *Local {
	gen := cfg.Generator
	if gen == nil {
		gen = generator.New()
	}
	words := cfg.Words
	if len(words) == 0 {
		words = wordlist.Default()
	}
	userID := cfg.UserID
	if userID == "" {
		userID = "local"
	}
	return &Local{gen: gen, words: words, style: cfg.Style, store: cfg.Store, userID: userID, modes: cfg.Modes}
}

// FetchPrompt implements Backend.
func (l *Local) FetchPrompt(_ context.Context, req PromptRequest) (string, error) {
	opts := l.style
	opts.Words = req.Words
	if opts.Words == 0 {
		opts.Words = DefaultPromptWords
	}
	opts.NumberRate = req.NumberRate
	opts = opts.Clamp()
	pool := wordlist.Pool(l.words, req.Source)
	return strings.TrimSpace(l.gen.Prompt(pool, opts)), nil
}

// SubmitSession implements Backend.
func (l *Local) SubmitSession(ctx context.Context, req SessionRequest) (SessionResponse, error) {
	return l.Submit(ctx, uuid.NewString(), l.userID, req)
}

// Submit validates and stores a submission under id for userID.
func (l *Local) Submit(ctx context.Context, id, userID string, req SessionRequest) (SessionResponse, error) {
	req, err := ValidateSession(req)
	if err != nil {
		return SessionResponse{}, err
	}
	if l.store == nil {
		return SessionResponse{OK: true}, nil
	}
	_, err = l.store.InsertSubmission(ctx, model.Submission{
		ID:              id,
		UserID:          userID,
		WPM:             req.WPM,
		Accuracy:        req.Accuracy,
		DurationSeconds: req.DurationSeconds,
		PromptID:        req.PromptID,
	})
	if err != nil {
		return SessionResponse{}, fmt.Errorf("failed to store submission: %w", err)
	}
	return SessionResponse{OK: true}, nil
}

// TrainingProgress implements Backend.
func (l *Local) TrainingProgress(ctx context.Context) (model.Progress, error) {
	if l.store == nil {
		return model.Progress{}, nil
	}
	return l.store.TrainingProgress(ctx)
}

// SaveTrainingProgress implements Backend.
func (l *Local) SaveTrainingProgress(ctx context.Context, mode string, level, percent int) error {
	req := ProgressRequest{Mode: mode, Level: level, Percent: percent}
	if len(l.modes) > 0 {
		var err error
		if req, err = ValidateProgress(req, l.modes); err != nil {
			return err
		}
	}
	if l.store == nil {
		return nil
	}
	return l.store.SaveTrainingProgress(ctx, req.Mode, req.Level, req.Percent)
}
