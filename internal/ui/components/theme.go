package components

import "github.com/charmbracelet/lipgloss"

// Components render with the same palette as package ui; they cannot import
// it, so the colors are repeated here.
var (
	colorPrimary   = lipgloss.Color("#7f57b4")
	colorSecondary = lipgloss.Color("#436b77")
	colorText      = lipgloss.Color("#d7d9da")
	colorMuted     = lipgloss.Color("#9ba0bf")
	colorError     = lipgloss.Color("#e06c75")
	colorBorder    = lipgloss.Color("#273540")
	colorErrorEdge = lipgloss.Color("#7a2f3a")
)

var (
	titleStyle     = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	labelStyle     = lipgloss.NewStyle().Foreground(colorSecondary).Bold(true)
	valueStyle     = lipgloss.NewStyle().Foreground(colorText)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	ruleStyle      = lipgloss.NewStyle().Foreground(colorBorder)
	errorTitle     = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	errorBodyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d6b5b5"))
)
