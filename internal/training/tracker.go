package training

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/typinglab/internal/model"
	"github.com/verte-zerg/typinglab/internal/session"
)

// ProgressStore loads and saves training progress.
type ProgressStore interface {
	TrainingProgress(ctx context.Context) (model.Progress, error)
	SaveTrainingProgress(ctx context.Context, mode string, level, percent int) error
}

// Update is a progress change that has to be persisted.
type Update struct {
	Mode    string
	Level   int
	Percent int
}

// Tracker holds the progress of every mode and applies finished sessions of
// one active mode.
type Tracker struct {
	mode     Mode
	progress model.Progress
	remote   ProgressStore
	local    ProgressStore
	log      *zap.Logger
}

// NewTracker creates a tracker for mode. Either store may be nil.
func NewTracker(mode Mode, remote, local ProgressStore, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		mode:     mode,
		progress: model.Progress{},
		remote:   remote,
		local:    local,
		log:      log,
	}
}

// Mode returns the active mode.
func (t *Tracker) Mode() Mode { return t.mode }

// Load fetches progress from both stores and keeps the best percent of each
// level. A failing store is logged and skipped; an error is returned only
// when every configured store failed.
func (t *Tracker) Load(ctx context.Context) error {
	stores := []ProgressStore{t.remote, t.local}
	results := make([]model.Progress, len(stores))
	errs := make([]error, len(stores))

	var g errgroup.Group
	for i, st := range stores {
		if st == nil {
			continue
		}
		g.Go(func() error {
			p, err := st.TrainingProgress(ctx)
			results[i], errs[i] = p, err
			return nil
		})
	}
	_ = g.Wait() // goroutines report through errs

	configured, failed := 0, 0
	var lastErr error
	for i, st := range stores {
		if st == nil {
			continue
		}
		configured++
		if errs[i] != nil {
			failed++
			lastErr = errs[i]
			t.log.Warn("failed to load training progress", zap.Int("store", i), zap.Error(errs[i]))
			continue
		}
		t.Merge(results[i])
	}
	if configured > 0 && failed == configured {
		return fmt.Errorf("failed to load training progress: %w", lastErr)
	}
	return nil
}

// Merge folds p into the tracker keeping the maximum of each level.
func (t *Tracker) Merge(p model.Progress) {
	for mode, levels := range p {
		for level, percent := range levels {
			percent = clampPercent(percent)
			if percent > t.progress.Percent(mode, level) {
				t.progress.Set(mode, level, percent)
			}
		}
	}
}

// Record applies a finished session of the active mode. It returns the
// update to persist and whether the stored percent grew.
func (t *Tracker) Record(ev session.EndEvent) (Update, bool) {
	level, ok := t.mode.Level(ev.LevelID)
	if !ok || !ev.Training {
		return Update{}, false
	}
	percent := Score(ev, level.RequiredWords)
	prev := t.progress.Percent(t.mode.Name, level.ID)
	if percent <= prev {
		return Update{Mode: t.mode.Name, Level: level.ID, Percent: prev}, false
	}
	t.progress.Set(t.mode.Name, level.ID, percent)
	return Update{Mode: t.mode.Name, Level: level.ID, Percent: percent}, true
}

// Persist saves an update to the local store and the backend. It does not
// touch tracker state, so it can run off the UI goroutine.
func (t *Tracker) Persist(ctx context.Context, u Update) error {
	var g errgroup.Group
	if t.local != nil {
		g.Go(func() error {
			if err := t.local.SaveTrainingProgress(ctx, u.Mode, u.Level, u.Percent); err != nil {
				return fmt.Errorf("failed to save progress locally: %w", err)
			}
			return nil
		})
	}
	if t.remote != nil {
		g.Go(func() error {
			if err := t.remote.SaveTrainingProgress(ctx, u.Mode, u.Level, u.Percent); err != nil {
				t.log.Warn("failed to post training progress", zap.String("mode", u.Mode), zap.Int("level", u.Level), zap.Error(err))
			}
			return nil
		})
	}
	return g.Wait()
}

// Percent returns the stored percent of a level in the active mode.
func (t *Tracker) Percent(level int) int {
	return t.progress.Percent(t.mode.Name, level)
}

// Locked reports whether a level of the active mode is unavailable. The
// first level is always open; later ones open when the previous level is
// at 100.
func (t *Tracker) Locked(level int) bool {
	return Locked(t.progress, t.mode, level)
}

// Locked reports whether level of mode is unavailable under p.
func Locked(p model.Progress, mode Mode, level int) bool {
	if len(mode.Levels) == 0 || level <= mode.Levels[0].ID {
		return false
	}
	return p.Percent(mode.Name, level-1) < 100
}

// ModeTotal is the rounded mean of a mode's level percents.
func (t *Tracker) ModeTotal(name string) int {
	return ModeTotal(t.progress, name)
}

// Overall is the rounded mean of all mode totals.
func (t *Tracker) Overall() int {
	return Overall(t.progress)
}

// ModeTotal is the rounded mean of a mode's level percents under p.
func ModeTotal(p model.Progress, name string) int {
	mode, ok := Lookup(name)
	if !ok || len(mode.Levels) == 0 {
		return 0
	}
	sum := 0
	for _, l := range mode.Levels {
		sum += p.Percent(name, l.ID)
	}
	return int(math.Round(float64(sum) / float64(len(mode.Levels))))
}

// Overall is the rounded mean of all mode totals under p.
func Overall(p model.Progress) int {
	sum := 0
	for _, m := range Modes {
		sum += ModeTotal(p, m.Name)
	}
	return int(math.Round(float64(sum) / float64(len(Modes))))
}

// Progress returns a copy of all stored progress.
func (t *Tracker) Progress() model.Progress {
	out := model.Progress{}
	for mode, levels := range t.progress {
		for level, percent := range levels {
			out.Set(mode, level, percent)
		}
	}
	return out
}
