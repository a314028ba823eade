package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	extraStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8071A")).Strikethrough(true)
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	breakStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#595959"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	gutterStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#434343"))
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	positiveStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	negativeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	lockedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#595959"))
	selectedStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))

	chartLineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#69B1FF"))
	chartAxisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#595959"))
	chartPeakStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	chartFinalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FACC15"))
	chartHoverStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
)

// WPM colour ramp anchors: red at 0, yellow at 70, green at 150.
var (
	wpmSlow   = mustHex("#ef4444")
	wpmMedium = mustHex("#facc15")
	wpmFast   = mustHex("#22c55e")
)

const (
	wpmMediumAt = 70.0
	wpmFastAt   = 150.0
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}

// wpmColor interpolates the result colour for a net WPM value.
func wpmColor(wpm float64) lipgloss.Color {
	var c colorful.Color
	if wpm <= wpmMediumAt {
		c = wpmSlow.BlendRgb(wpmMedium, clamp01(wpm/wpmMediumAt))
	} else {
		c = wpmMedium.BlendRgb(wpmFast, clamp01((wpm-wpmMediumAt)/(wpmFastAt-wpmMediumAt)))
	}
	return lipgloss.Color(c.Clamped().Hex())
}

func renderFunc(style lipgloss.Style) func(string) string {
	return func(s string) string { return style.Render(s) }
}
