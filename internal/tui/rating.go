package tui

import (
	"fmt"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const ratingDuration = 3 * time.Second

// ratingView counts the displayed rating up from the previous value to the
// one returned by the rating service.
type ratingView struct {
	shown  bool
	value  float64
	target int
	delta  int
	anim   *tween
	gen    uint64
}

func newRatingView() ratingView {
	return ratingView{}
}

func (r *ratingView) animate(target, delta int, now time.Time) tea.Cmd {
	r.shown = true
	r.target = target
	r.delta = delta
	r.value = float64(target - delta)
	r.gen++
	if delta == 0 {
		r.value = float64(target)
		r.anim = nil
		return nil
	}
	r.anim = &tween{from: r.value, to: float64(target), start: now, duration: ratingDuration}
	return frameCmd(animRating, r.gen)
}

func (r *ratingView) frame(msg frameMsg) tea.Cmd {
	if msg.gen != r.gen || r.anim == nil {
		return nil
	}
	v, done := r.anim.at(msg.at)
	r.value = v
	if done {
		r.anim = nil
		return nil
	}
	return frameCmd(animRating, r.gen)
}

func (r *ratingView) clear() {
	r.gen++
	*r = ratingView{gen: r.gen}
}

func (r ratingView) display() int {
	return int(math.Round(r.value))
}

func (r ratingView) View() string {
	if !r.shown {
		return ""
	}
	line := fmt.Sprintf("Rating %d", r.display())
	switch {
	case r.delta > 0:
		line += " " + positiveStyle.Render(fmt.Sprintf("+%d", r.delta))
	case r.delta < 0:
		line += " " + negativeStyle.Render(fmt.Sprintf("%d", r.delta))
	}
	return line
}
