package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/punchcard/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps overlay panels (help, stats, prompts).
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// DimmedStyle renders finished instances.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Strikethrough(true)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ErrorStyle is used for transient error messages in the status bar.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed).
	Bold(true)

// CategoryStyle renders category labels.
var CategoryStyle = lipgloss.NewStyle().
	Foreground(ColorMagenta)

// PeriodStyle returns a color-coded badge style for the given period.
func PeriodStyle(p model.Period) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch p {
	case model.PeriodDaily:
		return base.Foreground(ColorBlue)
	case model.PeriodWeekly:
		return base.Foreground(ColorGreen)
	case model.PeriodMonthly:
		return base.Foreground(ColorYellow)
	case model.PeriodYearly:
		return base.Foreground(ColorOrange)
	case model.PeriodOnce:
		return base.Foreground(ColorMagenta)
	default:
		return base.Foreground(ColorGray)
	}
}

// ProgressStyle colors a punch counter by how close it is to the target.
func ProgressStyle(punches, target int) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch {
	case target > 0 && punches >= target:
		return base.Foreground(ColorGreen)
	case punches > 0:
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorGray)
	}
}

// HeatStyle returns the style for an activity heat level (0-4).
func HeatStyle(level int) lipgloss.Style {
	base := lipgloss.NewStyle()

	switch level {
	case 1:
		return base.Foreground(ColorSubtle)
	case 2:
		return base.Foreground(ColorYellow)
	case 3:
		return base.Foreground(ColorOrange)
	case 4:
		return base.Foreground(ColorGreen).Bold(true)
	default:
		return base.Foreground(ColorGray)
	}
}
