package stats

import (
	"context"
	"fmt"

	"github.com/verte-zerg/typinglab/internal/model"
)

// SessionLister loads stored sessions, oldest first.
type SessionLister interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions []model.SessionAggregate
	// Window is the tail of Sessions used for the curves.
	Window  []model.SessionAggregate
	Summary Summary
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src SessionLister, cfg model.StatsConfig) (Report, error) {
	sessions, err := src.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	window := sessions
	if cfg.CurveWindow > 0 && len(sessions) > cfg.CurveWindow {
		window = sessions[len(sessions)-cfg.CurveWindow:]
	}
	return Report{
		Sessions: sessions,
		Window:   window,
		Summary:  Summarize(sessions),
	}, nil
}
