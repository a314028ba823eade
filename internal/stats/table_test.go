package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Mode", "WPM", "Acc"}
	rows := [][]string{
		{"casual", "61.2", "97%"},
		{"training", "8.0", "100%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Mode      WPM  Acc" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "casual   61.2  97%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "training  8.0 100%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}
