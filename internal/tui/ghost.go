package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typinglab/internal/diff"
)

// rowTolerance is how far a cell's row may move before it counts as a new line.
const rowTolerance = 0.5

type ghostCell struct {
	glyph   rune
	status  diff.Status
	width   int
	space   bool
	current bool
	caret   bool
}

// buildGhostCells styles the prompt against the typed buffer. The caret sits
// on the first pending cell, or on a trailing cell once the prompt is
// consumed.
func buildGhostCells(typed, prompt []rune) []ghostCell {
	cells := diff.Compare(typed, prompt)
	caret := len(typed)
	words := findWords(prompt)
	cursor := -1
	if caret < len(prompt) {
		cursor = caret
	}
	current := wordForCursor(words, cursor)

	out := make([]ghostCell, 0, len(cells)+1)
	for i, c := range cells {
		g := ghostCell{glyph: c.Rune, status: c.Status, space: c.Rune == ' ' || c.Rune == '\n'}
		switch {
		case c.Status == diff.Incorrect && c.Rune == ' ':
			g.glyph = '•'
		case c.Rune == '\n':
			g.glyph = '↵'
		case c.Status == diff.Extra && (c.Rune == ' ' || c.Rune == '\n'):
			g.glyph = '·'
			g.space = false
		}
		if c.Status == diff.Pending && current != nil && i >= current.start && i < current.end {
			g.current = true
		}
		g.caret = i == caret
		g.width = max(1, runewidth.RuneWidth(g.glyph))
		out = append(out, g)
	}
	if caret >= len(cells) {
		out = append(out, ghostCell{glyph: ' ', status: diff.Pending, width: 1, caret: true})
	}
	return out
}

func (g ghostCell) style() string {
	style := pendingStyle
	switch g.status {
	case diff.Correct:
		style = correctStyle
	case diff.Incorrect:
		style = incorrectStyle
	case diff.Extra:
		style = extraStyle
	case diff.Break:
		style = breakStyle
	default:
		if g.current {
			style = currentWordStyle
		}
	}
	if g.caret {
		style = style.Underline(true)
	}
	return style.Render(string(g.glyph))
}

// LineMeasurer lays ghost cells out with word wrapping and reports where
// the rendered lines start.
type LineMeasurer struct {
	cells []ghostCell
}

// NewLineMeasurer measures the ghost text of a typed buffer against a prompt.
func NewLineMeasurer(typed, prompt []rune) LineMeasurer {
	return LineMeasurer{cells: buildGhostCells(typed, prompt)}
}

// MeasureLineBoundaries returns, in order, the cell indices that start a new
// rendered line at the given width.
func (lm LineMeasurer) MeasureLineBoundaries(width int) []int {
	rows := lm.layout(width)
	var boundaries []int
	prev := 0
	for i, row := range rows {
		if float64(row-prev) > rowTolerance {
			boundaries = append(boundaries, i)
			prev = row
		}
	}
	return boundaries
}

// layout returns the row of every cell. Words move to the next row when they
// do not fit; words wider than the row are broken. Spaces hang at the end
// of a row.
func (lm LineMeasurer) layout(width int) []int {
	cells := lm.cells
	rows := make([]int, len(cells))
	if width <= 0 {
		return rows
	}
	row, col := 0, 0
	for i := 0; i < len(cells); {
		j := i
		wordWidth := 0
		for j < len(cells) && !cells[j].space {
			wordWidth += cells[j].width
			j++
		}
		if col > 0 && col+wordWidth > width {
			row++
			col = 0
		}
		for k := i; k < j; k++ {
			if col > 0 && col+cells[k].width > width {
				row++
				col = 0
			}
			rows[k] = row
			col += cells[k].width
		}
		for j < len(cells) && cells[j].space {
			rows[j] = row
			col += cells[j].width
			j++
		}
		i = j
	}
	return rows
}

// Render returns the styled rows at the given width.
func (lm LineMeasurer) Render(width int) []string {
	if len(lm.cells) == 0 {
		return nil
	}
	rows := lm.layout(width)
	lines := make([]strings.Builder, rows[len(rows)-1]+1)
	for i, cell := range lm.cells {
		lines[rows[i]].WriteString(cell.style())
	}
	out := make([]string, len(lines))
	for i := range lines {
		out[i] = lines[i].String()
	}
	return out
}

type wordRange struct {
	start int
	end   int
}

func findWords(prompt []rune) []wordRange {
	words := []wordRange{}
	start := -1
	for i, r := range prompt {
		if r == ' ' || r == '\n' {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(prompt)})
	}
	return words
}

func wordForCursor(words []wordRange, cursor int) *wordRange {
	if len(words) == 0 || cursor < 0 {
		return nil
	}
	for i, w := range words {
		if cursor < w.end {
			return &words[i]
		}
	}
	return nil
}
