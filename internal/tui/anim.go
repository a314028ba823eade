package tui

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const frameInterval = time.Second / 60

type animKind uint8

const (
	animScroll animKind = iota
	animRating
)

// frameMsg drives one animation. Frames carrying an older generation than
// the animation's current one are dropped.
type frameMsg struct {
	kind animKind
	gen  uint64
	at   time.Time
}

func frameCmd(kind animKind, gen uint64) tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg{kind: kind, gen: gen, at: t}
	})
}

func easeOutCubic(t float64) float64 {
	t = clamp01(t)
	return 1 - math.Pow(1-t, 3)
}

// tween interpolates from one value to another over a fixed duration.
type tween struct {
	from     float64
	to       float64
	start    time.Time
	duration time.Duration
}

// at returns the value at now and whether the tween has finished.
func (tw tween) at(now time.Time) (float64, bool) {
	if tw.duration <= 0 {
		return tw.to, true
	}
	t := float64(now.Sub(tw.start)) / float64(tw.duration)
	if t >= 1 {
		return tw.to, true
	}
	return tw.from + (tw.to-tw.from)*easeOutCubic(t), false
}
