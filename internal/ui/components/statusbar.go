package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const statusInset = 2

var (
	hintKeyStyle    = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	hintActionStyle = mutedStyle
	hintSeparator   = ruleStyle.Render(" · ")
)

// KeyHint is one key binding shown under a view.
type KeyHint struct {
	Key    string
	Action string
}

func (h KeyHint) render() string {
	return hintKeyStyle.Render(SanitizeOneLine(h.Key)) + " " + hintActionStyle.Render(SanitizeOneLine(h.Action))
}

// StatusBar joins hints into dot separated lines, starting a new line when
// the next hint would pass width. A width of zero or less keeps one line.
func StatusBar(hints []KeyHint, width int) string {
	if len(hints) == 0 {
		return ""
	}
	room := width - statusInset
	sepWidth := lipgloss.Width(hintSeparator)

	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, h := range hints {
		item := h.render()
		w := lipgloss.Width(item)
		if lineWidth > 0 && width > 0 && lineWidth+sepWidth+w > room {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			line.WriteString(hintSeparator)
			lineWidth += sepWidth
		}
		line.WriteString(item)
		lineWidth += w
	}
	lines = append(lines, line.String())
	return Indent(strings.Join(lines, "\n"), statusInset)
}
