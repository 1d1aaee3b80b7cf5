// Package ui holds the terminal styles used by twinctl.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jengzang/healthtwin-backend/internal/projection"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
)

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// Score colors a 0-100 score by band.
func Score(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	switch {
	case v >= 70:
		return Good.Render(s)
	case v >= 45:
		return Warn.Render(s)
	default:
		return Bad.Render(s)
	}
}

// Trend colors a projection trend label.
func Trend(trend string) string {
	switch trend {
	case projection.TrendImproving, projection.TrendRapidlyImproving:
		return Good.Render(trend)
	case projection.TrendStable:
		return Warn.Render(trend)
	default:
		return Bad.Render(trend)
	}
}

// Bar renders a fixed width gauge for a 0-100 value.
func Bar(v float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int(v / 100 * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return Good.Render(strings.Repeat("█", filled)) + Muted.Render(strings.Repeat("░", width-filled))
}
