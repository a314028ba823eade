package stats

import (
	"math"
	"strings"
	"testing"

	"github.com/verte-zerg/typinglab/internal/model"
)

func samples(values ...float64) []model.MetricSample {
	out := make([]model.MetricSample, len(values))
	for i, v := range values {
		out[i] = model.MetricSample{WPM: v, Accuracy: 100}
	}
	return out
}

func TestChartRendersNothingBelowTwoSamples(t *testing.T) {
	if got := WPMChart(nil, 40, 10, -1).Render(); got != "" {
		t.Fatalf("expected empty chart, got %q", got)
	}
	if got := WPMChart(samples(42), 40, 10, -1).Render(); got != "" {
		t.Fatalf("expected empty chart for one sample, got %q", got)
	}
}

func TestChartRenderIsIdempotent(t *testing.T) {
	chart := WPMChart(samples(10, 35, 50, 42, 44), 40, 10, 2)
	first := chart.Render()
	second := chart.Render()
	if first != second {
		t.Fatalf("expected identical renders")
	}
	lines := strings.Split(first, "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 lines, got %d", len(lines))
	}
}

func TestChartCeilingUsesFloorAndHeadroom(t *testing.T) {
	low := WPMChart(samples(5, 10), 40, 10, -1)
	if got := low.Ceiling(); math.Abs(got-32.4) > 1e-9 {
		t.Fatalf("expected floor ceiling, got %f", got)
	}
	high := WPMChart(samples(50, 100), 40, 10, -1)
	if got := high.Ceiling(); math.Abs(got-108) > 1e-9 {
		t.Fatalf("expected headroom ceiling, got %f", got)
	}
}

func TestChartMarksPeakAndFinal(t *testing.T) {
	out := WPMChart(samples(10, 60, 20), 40, 10, -1).Render()
	if strings.Count(out, "●") < 4 {
		t.Fatalf("expected peak and final markers plus legend, got:\n%s", out)
	}
	if !strings.Contains(out, "peak 60") || !strings.Contains(out, "final 20") {
		t.Fatalf("expected legend values, got:\n%s", out)
	}
}

func TestChartHoverLabel(t *testing.T) {
	values := samples(10, 20, 30, 40)
	out := WPMChart(values, 40, 10, 2).Render()
	header := strings.SplitN(out, "\n", 2)[0]
	if !strings.HasPrefix(header, "3s · 30 WPM") {
		t.Fatalf("unexpected hover label %q", header)
	}
	if !strings.Contains(out, "◆") {
		t.Fatalf("expected hover marker")
	}
	cleared := WPMChart(values, 40, 10, -1).Render()
	if strings.Contains(cleared, "WPM") || strings.Contains(cleared, "◆") {
		t.Fatalf("expected hover label to clear, got:\n%s", cleared)
	}
}

func TestChartHoverIndex(t *testing.T) {
	chart := WPMChart(samples(10, 20, 30, 40, 50), 40, 10, -1)
	left := chart.PlotLeft()
	if got := chart.HoverIndex(0); got != 0 {
		t.Fatalf("expected clamp to first sample, got %d", got)
	}
	if got := chart.HoverIndex(left); got != 0 {
		t.Fatalf("expected first sample at plot start, got %d", got)
	}
	if got := chart.HoverIndex(39); got != 4 {
		t.Fatalf("expected last sample at plot end, got %d", got)
	}
	if got := chart.HoverIndex(1000); got != 4 {
		t.Fatalf("expected clamp to last sample, got %d", got)
	}
	cols := 40 - left
	if got := chart.HoverIndex(left + (cols-1)/2); got != 2 {
		t.Fatalf("expected middle sample, got %d", got)
	}
	if got := WPMChart(samples(1), 40, 10, -1).HoverIndex(10); got != -1 {
		t.Fatalf("expected no hover for single sample, got %d", got)
	}
}

func TestChartStyleIsApplied(t *testing.T) {
	chart := WPMChart(samples(10, 20), 30, 8, -1)
	chart.Style.Final = func(s string) string { return "<" + s + ">" }
	out := chart.Render()
	if !strings.Contains(out, "<●>") {
		t.Fatalf("expected styled final marker, got:\n%s", out)
	}
}
