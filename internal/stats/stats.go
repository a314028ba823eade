package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/typinglab/internal/model"
)

const sparkChars = "▁▂▃▄▅▆▇█"

// Summary aggregates a list of stored sessions.
type Summary struct {
	Sessions    int
	AvgWPM      float64
	BestWPM     float64
	AvgAccuracy float64 // 0-1
	Completed   int
	ByMode      map[model.Mode]int
}

// Summarize computes averages and bests over sessions.
func Summarize(sessions []model.SessionAggregate) Summary {
	sum := Summary{ByMode: map[model.Mode]int{}}
	if len(sessions) == 0 {
		return sum
	}
	var totalWPM, totalAcc float64
	for _, s := range sessions {
		totalWPM += s.WPM
		totalAcc += s.Accuracy
		sum.BestWPM = math.Max(sum.BestWPM, s.WPM)
		sum.ByMode[s.Mode]++
		if s.Reason == "completed" {
			sum.Completed++
		}
	}
	sum.Sessions = len(sessions)
	sum.AvgWPM = totalWPM / float64(len(sessions))
	sum.AvgAccuracy = totalAcc / float64(len(sessions))
	return sum
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders a single-line bar sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	bars := []rune(sparkChars)
	lo, hi := valueRange(values)
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(len(bars)-1)))
		b.WriteRune(bars[min(max(idx, 0), len(bars)-1)])
	}
	return b.String()
}

// WPMValues extracts net WPM per session.
func WPMValues(sessions []model.SessionAggregate) []float64 {
	out := make([]float64, len(sessions))
	for i, s := range sessions {
		out[i] = s.WPM
	}
	return out
}

// AccuracyValues extracts accuracy percent per session.
func AccuracyValues(sessions []model.SessionAggregate) []float64 {
	out := make([]float64, len(sessions))
	for i, s := range sessions {
		out[i] = s.Accuracy * 100
	}
	return out
}

// RenderSummary prints a summary block for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	sum := Summarize(sessions)
	var b strings.Builder
	b.WriteString("Summary\n")
	fmt.Fprintf(&b, "Sessions: %d (%d completed)\n", sum.Sessions, sum.Completed)
	fmt.Fprintf(&b, "Avg WPM: %.1f\n", sum.AvgWPM)
	fmt.Fprintf(&b, "Best WPM: %.1f\n", sum.BestWPM)
	fmt.Fprintf(&b, "Avg Accuracy: %.1f%%\n", sum.AvgAccuracy*100)
	for _, mode := range []model.Mode{model.ModeCasual, model.ModeRanked, model.ModeTraining} {
		if n := sum.ByMode[mode]; n > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", mode, n)
		}
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderCurves prints learning curves for WPM and accuracy.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeries(w, "Learning Curves", []Series{
		{Name: "WPM", Values: MovingAverage(WPMValues(sessions), window)},
		{Name: "Accuracy", Values: MovingAverage(AccuracyValues(sessions), window)},
	}, width, height, useColor)
}

// RenderSessionTable prints the most recent sessions, newest first.
func RenderSessionTable(w io.Writer, sessions []model.SessionAggregate, limit int) error {
	if len(sessions) == 0 {
		return nil
	}
	start := 0
	if limit > 0 && len(sessions) > limit {
		start = len(sessions) - limit
	}
	rows := make([][]string, 0, len(sessions)-start)
	for i := len(sessions) - 1; i >= start; i-- {
		s := sessions[i]
		rows = append(rows, []string{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			string(s.Mode),
			fmt.Sprintf("%ds", s.DurationSeconds),
			fmt.Sprintf("%.1f", s.WPM),
			fmt.Sprintf("%.1f%%", s.Accuracy*100),
			s.Reason,
		})
	}
	lines := formatTable(
		[]string{"Ended", "Mode", "Time", "WPM", "Accuracy", "Reason"},
		rows,
		map[int]bool{2: true, 3: true, 4: true},
	)
	var b strings.Builder
	b.WriteString("Recent Sessions\n")
	for _, line := range lines {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
