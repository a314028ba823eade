package tui

import (
	"reflect"
	"testing"

	"github.com/verte-zerg/typinglab/internal/diff"
)

func TestMeasureLineBoundariesWraps(t *testing.T) {
	lm := NewLineMeasurer(nil, []rune("abc def ghi"))
	if got := lm.MeasureLineBoundaries(7); !reflect.DeepEqual(got, []int{8}) {
		t.Fatalf("width 7: unexpected boundaries %v", got)
	}
	if got := lm.MeasureLineBoundaries(3); !reflect.DeepEqual(got, []int{4, 8}) {
		t.Fatalf("width 3: unexpected boundaries %v", got)
	}
	if got := lm.MeasureLineBoundaries(80); len(got) != 0 {
		t.Fatalf("single line expected, got %v", got)
	}
}

func TestMeasureLineBoundariesBreaksLongWords(t *testing.T) {
	lm := NewLineMeasurer(nil, []rune("abcdefgh"))
	if got := lm.MeasureLineBoundaries(3); !reflect.DeepEqual(got, []int{3, 6}) {
		t.Fatalf("unexpected boundaries %v", got)
	}
}

func TestRenderRowsMatchBoundaries(t *testing.T) {
	lm := NewLineMeasurer([]rune("ab"), []rune("abc def ghi"))
	rows := lm.Render(7)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestGhostCellsMarkErrors(t *testing.T) {
	cells := buildGhostCells([]rune("ax c"), []rune("ab cd"))
	if cells[1].status != diff.Incorrect {
		t.Fatalf("expected incorrect cell, got %v", cells[1].status)
	}
	if !cells[4].caret {
		t.Fatalf("expected caret on first pending cell")
	}
	if !cells[4].current {
		t.Fatalf("expected current word highlight on pending cell")
	}
}

func TestGhostWrongSpaceGlyph(t *testing.T) {
	cells := buildGhostCells([]rune("abx"), []rune("ab cd"))
	if cells[2].glyph != '•' {
		t.Fatalf("expected wrong space marker, got %q", cells[2].glyph)
	}
}

func TestGhostCaretAfterConsumedPrompt(t *testing.T) {
	cells := buildGhostCells([]rune("ab"), []rune("ab"))
	if len(cells) != 3 || !cells[2].caret {
		t.Fatalf("expected trailing caret cell, got %d cells", len(cells))
	}
}

func TestFindWords(t *testing.T) {
	words := findWords([]rune(" ab  cd\nef"))
	want := []wordRange{{1, 3}, {5, 7}, {8, 10}}
	if !reflect.DeepEqual(words, want) {
		t.Fatalf("unexpected words %v", words)
	}
	if w := wordForCursor(words, 3); w == nil || w.start != 5 {
		t.Fatalf("cursor on space should select next word, got %v", w)
	}
	if w := wordForCursor(words, -1); w != nil {
		t.Fatalf("expected no word")
	}
}
