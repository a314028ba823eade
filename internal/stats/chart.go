package stats

import (
	"fmt"
	"math"
	"strings"

	"github.com/verte-zerg/typinglab/internal/model"
)

const (
	chartMinRows    = 2
	chartMinCols    = 2
	chartChromeRows = 3 // header, x axis, x labels

	wpmFloor    = 30.0
	wpmHeadroom = 1.08
)

// ChartStyle decorates chart glyphs. Nil functions leave text as is.
type ChartStyle struct {
	Line  func(string) string
	Axis  func(string) string
	Peak  func(string) string
	Final func(string) string
	Hover func(string) string
	Label func(string) string
}

// Chart is a time series rendered with braille dots.
//
// Rendering is a pure function of the struct, so re-rendering with the same
// values produces the same frame.
type Chart struct {
	Values []float64
	Width  int
	Height int
	// Floor is the smallest vertical ceiling before headroom is applied.
	Floor    float64
	Headroom float64
	// Hover is the sample under the pointer, -1 for none.
	Hover  int
	Label  func(i int, v float64) string
	XLabel func(i int) string
	Style  ChartStyle
}

// WPMChart builds the per-second WPM chart of a session.
func WPMChart(samples []model.MetricSample, width, height, hover int) Chart {
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.WPM
	}
	return Chart{
		Values:   values,
		Width:    width,
		Height:   height,
		Floor:    wpmFloor,
		Headroom: wpmHeadroom,
		Hover:    hover,
		Label:    WPMLabel,
	}
}

// WPMLabel formats the hover label of a per-second WPM sample.
func WPMLabel(i int, v float64) string {
	return fmt.Sprintf("%ds · %.0f WPM", i+1, v)
}

type chartLayout struct {
	labelWidth int
	left       int
	cols       int
	rows       int
}

// Ceiling returns the top of the vertical axis.
func (c Chart) Ceiling() float64 {
	top := c.Floor
	for _, v := range c.Values {
		if v > top {
			top = v
		}
	}
	if c.Headroom > 0 {
		top *= c.Headroom
	}
	if top <= 0 || math.IsNaN(top) || math.IsInf(top, 0) {
		return 1
	}
	return top
}

func (c Chart) layout() chartLayout {
	labelWidth := len(formatTick(c.Ceiling()))
	left := labelWidth + 1
	return chartLayout{
		labelWidth: labelWidth,
		left:       left,
		cols:       max(chartMinCols, c.Width-left),
		rows:       max(chartMinRows, c.Height-chartChromeRows),
	}
}

// PlotLeft returns the column where the plot area starts.
func (c Chart) PlotLeft() int {
	return c.layout().left
}

// HoverIndex maps a column, relative to the chart's left edge, to the nearest
// sample index. Columns outside the plot clamp to the first or last sample.
// It returns -1 when there is nothing to hover.
func (c Chart) HoverIndex(x int) int {
	n := len(c.Values)
	if n < 2 {
		return -1
	}
	l := c.layout()
	rel := min(max(x-l.left, 0), l.cols-1)
	if l.cols <= 1 {
		return 0
	}
	idx := int(math.Round(float64(rel) * float64(n-1) / float64(l.cols-1)))
	return min(max(idx, 0), n-1)
}

type cellKind uint8

const (
	kindEmpty cellKind = iota
	kindLine
	kindGuide
	kindPeak
	kindFinal
	kindHover
)

// Render draws the chart. Fewer than two samples render nothing.
func (c Chart) Render() string {
	n := len(c.Values)
	if n < 2 {
		return ""
	}
	l := c.layout()
	top := c.Ceiling()
	cv := newCanvas(l.cols, l.rows)

	xs := make([]int, n)
	ys := make([]int, n)
	for i, v := range c.Values {
		xs[i] = scaleIndex(i, n, cv.dotWidth())
		ys[i] = scaleValue(v, top, cv.dotHeight())
	}
	for i := 1; i < n; i++ {
		cv.line(xs[i-1], ys[i-1], xs[i], ys[i])
	}

	kinds := make([][]cellKind, l.rows)
	glyphs := make([][]rune, l.rows)
	for row := range kinds {
		kinds[row] = make([]cellKind, l.cols)
		glyphs[row] = make([]rune, l.cols)
		for col := range kinds[row] {
			r, ok := cv.rune(col, row)
			glyphs[row][col] = r
			if ok {
				kinds[row][col] = kindLine
			}
		}
	}
	mark := func(i int, kind cellKind, glyph rune) {
		col, row := xs[i]/2, ys[i]/4
		kinds[row][col] = kind
		glyphs[row][col] = glyph
	}

	hover := c.Hover
	if hover >= n {
		hover = -1
	}
	if hover >= 0 {
		col := xs[hover] / 2
		for row := 0; row < l.rows; row++ {
			if kinds[row][col] == kindEmpty {
				kinds[row][col] = kindGuide
				glyphs[row][col] = '┊'
			}
		}
	}
	mark(peakIndex(c.Values), kindPeak, '●')
	mark(n-1, kindFinal, '●')
	if hover >= 0 {
		mark(hover, kindHover, '◆')
	}

	var b strings.Builder
	b.WriteString(c.header(l, hover))
	b.WriteByte('\n')

	mid := l.rows / 2
	for row := 0; row < l.rows; row++ {
		label := ""
		switch row {
		case 0:
			label = formatTick(top)
		case l.rows - 1:
			label = formatTick(0)
		case mid:
			label = formatTick(top * (1 - float64(row)/float64(l.rows-1)))
		}
		tick := "│"
		if label != "" {
			tick = "┤"
		}
		b.WriteString(paint(c.Style.Axis, padLeft(label, l.labelWidth)+tick))
		c.writeRow(&b, kinds[row], glyphs[row])
		b.WriteByte('\n')
	}
	b.WriteString(paint(c.Style.Axis, strings.Repeat(" ", l.labelWidth)+"└"+strings.Repeat("─", l.cols)))
	b.WriteByte('\n')
	b.WriteString(paint(c.Style.Axis, c.xLabels(l, n)))
	return b.String()
}

func (c Chart) header(l chartLayout, hover int) string {
	width := l.left + l.cols
	if hover >= 0 {
		label := c.Label
		if label == nil {
			label = func(i int, v float64) string { return fmt.Sprintf("%d · %.1f", i+1, v) }
		}
		return paint(c.Style.Label, padRight(label(hover, c.Values[hover]), width))
	}
	peak := peakIndex(c.Values)
	last := len(c.Values) - 1
	legend := paint(c.Style.Peak, "●") + " peak " + formatTick(c.Values[peak]) +
		"  " + paint(c.Style.Final, "●") + " final " + formatTick(c.Values[last])
	return legend
}

func (c Chart) writeRow(b *strings.Builder, kinds []cellKind, glyphs []rune) {
	var run strings.Builder
	current := kindEmpty
	flush := func() {
		if run.Len() == 0 {
			return
		}
		b.WriteString(paint(c.styleFor(current), run.String()))
		run.Reset()
	}
	for col, kind := range kinds {
		if kind != current {
			flush()
			current = kind
		}
		run.WriteRune(glyphs[col])
	}
	flush()
}

func (c Chart) styleFor(kind cellKind) func(string) string {
	switch kind {
	case kindLine:
		return c.Style.Line
	case kindGuide, kindHover:
		return c.Style.Hover
	case kindPeak:
		return c.Style.Peak
	case kindFinal:
		return c.Style.Final
	}
	return nil
}

func (c Chart) xLabels(l chartLayout, n int) string {
	xLabel := c.XLabel
	if xLabel == nil {
		xLabel = func(i int) string { return fmt.Sprintf("%ds", i+1) }
	}
	line := []rune(strings.Repeat(" ", l.left+l.cols))
	put := func(col int, text string) {
		runes := []rune(text)
		start := min(max(col, 0), len(line)-len(runes))
		if start < 0 {
			return
		}
		for i := start; i < start+len(runes); i++ {
			if line[i] != ' ' {
				return
			}
		}
		copy(line[start:], runes)
	}
	put(l.left, xLabel(0))
	last := xLabel(n - 1)
	put(l.left+l.cols-len([]rune(last)), last)
	if n > 2 {
		midIdx := (n - 1) / 2
		midText := xLabel(midIdx)
		col := l.left + scaleIndex(midIdx, n, l.cols*2)/2 - len([]rune(midText))/2
		if col > l.left+len([]rune(xLabel(0))) {
			put(col, midText)
		}
	}
	return strings.TrimRight(string(line), " ")
}

func scaleIndex(i, n, dots int) int {
	if n <= 1 || dots <= 1 {
		return 0
	}
	return int(math.Round(float64(i) * float64(dots-1) / float64(n-1)))
}

func scaleValue(v, top float64, dots int) int {
	if dots <= 1 {
		return 0
	}
	pos := v / top
	if math.IsNaN(pos) || pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return int(math.Round((1 - pos) * float64(dots-1)))
}

func peakIndex(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

func formatTick(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

func paint(style func(string) string, s string) string {
	if style == nil {
		return s
	}
	return style(s)
}

func padLeft(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}

func padRight(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
