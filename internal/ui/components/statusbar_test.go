package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

var formHints = []KeyHint{
	{Key: "tab", Action: "Next"},
	{Key: "ctrl+s", Action: "Save"},
	{Key: "esc", Action: "Cancel"},
	{Key: "ctrl+a", Action: "Add"},
	{Key: "ctrl+d", Action: "Remove"},
}

func TestStatusBarKeepsOneLineWithoutWidth(t *testing.T) {
	out := SanitizeText(StatusBar(formHints, 0))
	assert.NotContains(t, out, "\n")
	assert.Contains(t, out, "ctrl+s Save · esc Cancel")
}

func TestStatusBarWrapsWithinWidth(t *testing.T) {
	out := StatusBar(formHints, 30)
	lines := strings.Split(out, "\n")
	assert.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, lipgloss.Width(line), 30)
		assert.True(t, strings.HasPrefix(line, "  "))
	}
	assert.Contains(t, SanitizeText(out), "ctrl+d Remove")
}

func TestStatusBarFlattensHintText(t *testing.T) {
	out := SanitizeText(StatusBar([]KeyHint{{Key: "q", Action: "Quit\nnow"}}, 80))
	assert.Equal(t, 1, strings.Count(out, "\n")+1)
	assert.Contains(t, out, "q Quit")
}

func TestStatusBarEmpty(t *testing.T) {
	assert.Empty(t, StatusBar(nil, 80))
}
