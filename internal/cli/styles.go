package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/meowbar/meowbar/internal/models"
)

// Adaptive colors matching the TUI palette.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorOrange = lipgloss.AdaptiveColor{Light: "166", Dark: "208"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "25", Dark: "33"}
	colorPurple = lipgloss.AdaptiveColor{Light: "91", Dark: "135"}
)

// Semantic styles for CLI output.
var (
	styleBrand   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleVersion = lipgloss.NewStyle().Foreground(colorGreen)
	styleLabel   = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	styleHint    = lipgloss.NewStyle().Foreground(colorDim)
)

// stateColors maps StateInfo.Color names onto the CLI palette.
var stateColors = map[string]lipgloss.AdaptiveColor{
	"gray":   colorDim,
	"yellow": colorYellow,
	"blue":   colorBlue,
	"green":  colorGreen,
	"red":    colorRed,
	"gold":   colorOrange,
	"purple": colorPurple,
	"teal":   colorCyan,
}

func styleForState(info models.StateInfo) lipgloss.Style {
	c, ok := stateColors[info.Color]
	if !ok {
		c = colorWhite
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}
