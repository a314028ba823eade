package tui

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	scrollDuration = 140 * time.Millisecond
	lineHeight     = 1
)

// scroller keeps the line being typed in view. Offsets are in rows.
type scroller struct {
	boundaries []int
	offset     float64
	target     int
	anim       *tween
	gen        uint64
}

func completedLines(boundaries []int, typedLen int) int {
	n := 0
	for _, b := range boundaries {
		if b <= typedLen {
			n++
		}
	}
	return n
}

func scrollTarget(boundaries []int, typedLen int) int {
	return max(0, completedLines(boundaries, typedLen)-1) * lineHeight
}

func (s *scroller) setBoundaries(boundaries []int) {
	s.boundaries = boundaries
}

// follow retargets the scroll for the typed length and starts an animation
// when the target moved.
func (s *scroller) follow(typedLen int, now time.Time) tea.Cmd {
	target := scrollTarget(s.boundaries, typedLen)
	if target == s.target {
		return nil
	}
	s.target = target
	s.gen++
	s.anim = &tween{from: s.offset, to: float64(target), start: now, duration: scrollDuration}
	return frameCmd(animScroll, s.gen)
}

func (s *scroller) frame(msg frameMsg) tea.Cmd {
	if msg.gen != s.gen || s.anim == nil {
		return nil
	}
	v, done := s.anim.at(msg.at)
	s.offset = v
	if done {
		s.anim = nil
		return nil
	}
	return frameCmd(animScroll, s.gen)
}

func (s *scroller) reset() {
	s.gen++
	s.anim = nil
	s.offset = 0
	s.target = 0
}

func (s *scroller) autoScrolling() bool {
	return s.anim != nil
}

// row is the offset as a whole number of rows.
func (s *scroller) row() int {
	return int(math.Round(s.offset))
}

// correct returns the offset a viewport showing actual should move to.
// While an animation runs the viewport is left alone.
func (s *scroller) correct(actual int) (int, bool) {
	if s.autoScrolling() || actual == s.row() {
		return actual, false
	}
	return s.row(), true
}
