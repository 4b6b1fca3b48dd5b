package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/meowbar/meowbar/internal/models"
)

// Colors using AdaptiveColor for light/dark terminal support.
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

// stateColors maps StateInfo.Color names onto the terminal palette.
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

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(colorDim)
	valueStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	hintStyle   = lipgloss.NewStyle().Foreground(colorDim)

	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWhite)

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

func stateStyle(info models.StateInfo) lipgloss.Style {
	c, ok := stateColors[info.Color]
	if !ok {
		c = colorWhite
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}
