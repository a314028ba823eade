package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typinglab/internal/session"
	"github.com/verte-zerg/typinglab/internal/stats"
)

const (
	resultPad     = 2
	chartHeight   = 12
	minChartWidth = 24
)

var resultChartStyle = stats.ChartStyle{
	Line:  renderFunc(chartLineStyle),
	Axis:  renderFunc(chartAxisStyle),
	Peak:  renderFunc(chartPeakStyle),
	Final: renderFunc(chartFinalStyle),
	Hover: renderFunc(chartHoverStyle),
	Label: renderFunc(chartHoverStyle),
}

func (m *Model) chartWidth() int {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	return max(minChartWidth, width-2*resultPad)
}

func (m *Model) resultChart() stats.Chart {
	c := stats.WPMChart(m.result.Series, m.chartWidth(), chartHeight, m.chartHover)
	c.Style = resultChartStyle
	return c
}

// resultHeader is everything above the chart.
func (m *Model) resultHeader() []string {
	res := m.result
	wpm := lipgloss.NewStyle().Bold(true).Foreground(wpmColor(res.WPM)).Render(fmt.Sprintf("%.0f WPM", res.WPM))
	lines := []string{
		titleStyle.Render(resultTitle(res)),
		"",
		fmt.Sprintf("%s   %.1f%% accuracy   %.0f raw   %ds", wpm, res.Accuracy*100, res.GrossWPM, res.ElapsedSeconds),
	}
	if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}
	if rating := m.rating.View(); rating != "" {
		lines = append(lines, rating)
	}
	if m.trainingNote != "" {
		lines = append(lines, m.trainingNote)
	}
	return append(lines, "")
}

func resultTitle(res *session.Result) string {
	if res.LevelID > 0 {
		return fmt.Sprintf("Level %d", res.LevelID)
	}
	if res.Mode == "" {
		return "Result"
	}
	return strings.ToUpper(string(res.Mode[:1])) + string(res.Mode[1:])
}

func (m *Model) resultView() string {
	lines := m.resultHeader()
	if len(m.result.Series) >= 2 {
		lines = append(lines, strings.Split(m.resultChart().Render(), "\n")...)
	}
	lines = append(lines, "", m.help.View(resultHelp{keys: m.keys}))
	pad := strings.Repeat(" ", resultPad)
	for i, line := range lines {
		lines[i] = pad + line
	}
	return strings.Join(lines, "\n")
}

// hoverAt maps a pointer position on the result screen to a chart sample,
// -1 when the pointer is off the chart.
func (m *Model) hoverAt(x, y int) int {
	if m.result == nil || len(m.result.Series) < 2 {
		return -1
	}
	top := len(m.resultHeader())
	if y < top || y >= top+chartHeight {
		return -1
	}
	rel := x - resultPad
	if rel < 0 || rel >= m.chartWidth() {
		return -1
	}
	c := m.resultChart()
	if rel < c.PlotLeft() {
		return -1
	}
	return c.HoverIndex(rel)
}
