package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	plotAxisWidth       = 4
	plotAxisSeparator   = " │ "
	plotScaleNote       = "Each series is scaled to its own min/max."
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var colorPalette = []string{
	"\x1b[36m", // cyan
	"\x1b[35m", // magenta
	"\x1b[33m", // yellow
	"\x1b[32m", // green
}

// PlotSeries renders several series on one braille grid, each scaled to its
// own range. Empty series are skipped; nothing is written when all are empty.
func PlotSeries(w io.Writer, title string, series []Series, width, height int, useColor bool) error {
	kept := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)

	grids := make([]*canvas, len(kept))
	ranges := make([][2]float64, len(kept))
	for i, s := range kept {
		values := resample(s.Values, width)
		lo, hi := valueRange(values)
		ranges[i] = [2]float64{lo, hi}
		cv := newCanvas(width, height)
		prevX, prevY := -1, -1
		for x, v := range values {
			pos := (v - lo) / (hi - lo)
			px, py := x*2, scaleValue(pos, 1, cv.dotHeight())
			if prevX < 0 {
				cv.set(px, py)
			} else {
				cv.line(prevX, prevY, px, py)
			}
			prevX, prevY = px, py
		}
		grids[i] = cv
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	b.WriteString(plotScaleNote + "\n")
	for i, s := range kept {
		fmt.Fprintf(&b, "%s: %.1f..%.1f\n", s.Name, ranges[i][0], ranges[i][1])
	}
	for row := 0; row < height; row++ {
		label := ""
		switch row {
		case 0:
			label = "max"
		case height - 1:
			label = "min"
		}
		b.WriteString(padLeft(label, plotAxisWidth) + plotAxisSeparator)
		for col := 0; col < width; col++ {
			var mask uint8
			owner := -1
			for i, cv := range grids {
				if m := cv.cells[row][col]; m != 0 {
					mask |= m
					if owner < 0 {
						owner = i
					}
				}
			}
			ch := brailleFromMask(mask)
			if useColor && owner >= 0 {
				b.WriteString(colorPalette[owner%len(colorPalette)] + string(ch) + colorReset)
				continue
			}
			b.WriteRune(ch)
		}
		b.WriteByte('\n')
	}
	legend := make([]string, len(kept))
	for i, s := range kept {
		item := "⣿ " + s.Name
		if useColor {
			item = colorPalette[i%len(colorPalette)] + item + colorReset
		}
		legend[i] = item
	}
	b.WriteString("Legend: " + strings.Join(legend, "  ") + "\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axis := plotAxisWidth + runewidth.StringWidth(plotAxisSeparator)
	return max(totalWidth-axis, minPlotWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether ANSI colours should be written to w.
func ShouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// resample stretches or averages values into exactly width points.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := len(values)
	switch {
	case n == 0 || width <= 0:
		return nil
	case n == width:
		copy(out, values)
	case n > width:
		for i := range out {
			lo := i * n / width
			hi := max((i+1)*n/width, lo+1)
			var sum float64
			for _, v := range values[lo:hi] {
				sum += v
			}
			out[i] = sum / float64(hi-lo)
		}
	case n == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(n-1) / float64(width-1)
			idx := min(int(pos), n-2)
			frac := pos - float64(idx)
			out[i] = values[idx] + (values[idx+1]-values[idx])*frac
		}
	}
	return out
}

func valueRange(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return -1, 1
	}
	if hi-lo < 1e-9 {
		return lo - 1, hi + 1
	}
	return lo, hi
}
