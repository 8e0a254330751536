package components

import "github.com/charmbracelet/lipgloss"

var dialogStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorBorder).
	Padding(1, 2).
	Width(40)

// ConfirmDialog renders a yes/no confirmation.
func ConfirmDialog(title, message string) string {
	body := titleStyle.Render(title) + "\n\n" +
		mutedStyle.Render(message) + "\n" +
		StatusBar([]KeyHint{{Key: "y", Action: "confirm"}, {Key: "n", Action: "cancel"}}, 0)
	return dialogStyle.Render(body)
}
