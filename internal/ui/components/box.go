package components

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// A frame is a rounded border around 1x2 padding.
const (
	frameBorder  = 2
	framePadding = 4
)

type frame struct {
	edge  lipgloss.Color
	title lipgloss.Style
}

var (
	treeFrame  = frame{edge: colorBorder, title: titleStyle}
	errorFrame = frame{edge: colorErrorEdge, title: errorTitle}
)

// boxWidth is the preferred outer width: 70% of the terminal, within 40..80.
func boxWidth(width int) int {
	if width <= 0 {
		return 0
	}
	return min(max(width*70/100, 40), 80)
}

// outerWidth never exceeds the terminal, even below the 40 column floor.
func outerWidth(width int) int {
	if width <= 0 {
		return 0
	}
	return min(boxWidth(width), width)
}

func (f frame) style(width int) lipgloss.Style {
	s := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(f.edge).
		Padding(1, 2)
	// lipgloss widths exclude the border.
	if w := outerWidth(width); w > 0 {
		s = s.Width(max(w-frameBorder, 1))
	}
	return s
}

// render draws content in the frame and, when title is set, writes it into
// the top border.
func (f frame) render(title, content string, width int) string {
	boxed := f.style(width).Render(content)
	if title == "" {
		return boxed
	}
	lines := strings.Split(boxed, "\n")
	lines[0] = f.topEdge(title, lipgloss.Width(lines[0]))
	return strings.Join(lines, "\n")
}

func (f frame) topEdge(title string, lineWidth int) string {
	border := lipgloss.RoundedBorder()
	edge := lipgloss.NewStyle().Foreground(f.edge)
	inner := lineWidth - 2
	if inner < 1 {
		return edge.Render(border.TopLeft + border.TopRight)
	}

	label := " " + SanitizeOneLine(title) + " "
	if lipgloss.Width(label) > inner-2 {
		label = truncateRunes(label, max(inner-2, 0))
	}
	rest := inner - 1 - lipgloss.Width(label)
	if rest < 0 {
		rest = 0
	}
	return edge.Render(border.TopLeft+border.Top) +
		f.title.Render(label) +
		edge.Render(strings.Repeat(border.Top, rest)+border.TopRight)
}

// Box frames a proposition tree.
func Box(content string, width int) string {
	return treeFrame.render("", content, width)
}

// TitledBox frames content with title set into the top border.
func TitledBox(title, content string, width int) string {
	return treeFrame.render(title, content, width)
}

// ErrorBox frames a failure message in the error palette.
func ErrorBox(title, message string, width int) string {
	return errorFrame.render(title, errorBodyStyle.Render(message), width)
}

// BoxContentWidth is the room left for text inside a box at this terminal width.
func BoxContentWidth(width int) int {
	w := outerWidth(width)
	if w <= 0 {
		return 0
	}
	return max(w-frameBorder-framePadding, 0)
}

// ClampTextWidth flattens text to one line and cuts it to width cells.
func ClampTextWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	cleaned := SanitizeOneLine(text)
	if lipgloss.Width(cleaned) <= width {
		return cleaned
	}
	return truncateRunes(cleaned, width)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// CountTable lists entity table sizes by name with a dotted leader to each
// count, closing with the total.
func CountTable(title string, counts map[string]int, width int) string {
	if len(counts) == 0 {
		return ""
	}
	names := make([]string, 0, len(counts))
	longest := 0
	for name := range counts {
		names = append(names, name)
		longest = max(longest, lipgloss.Width(name))
	}
	sort.Strings(names)

	inner := BoxContentWidth(width)
	if inner <= 0 {
		inner = longest + 12
	}
	lines := make([]string, 0, len(names)+1)
	total := 0
	for _, name := range names {
		lines = append(lines, countLine(labelStyle, name, counts[name], inner))
		total += counts[name]
	}
	lines = append(lines, countLine(titleStyle, "total", total, inner))
	return TitledBox(title, strings.Join(lines, "\n"), width)
}

func countLine(nameStyle lipgloss.Style, name string, count, width int) string {
	n := strconv.Itoa(count)
	name = ClampTextWidth(name, max(width-len(n)-3, 1))
	dots := max(width-lipgloss.Width(name)-len(n)-2, 1)
	return nameStyle.Render(name) + " " +
		ruleStyle.Render(strings.Repeat("·", dots)) + " " +
		valueStyle.Render(n)
}

// Indent adds left padding to every line of a multi-line string.
func Indent(s string, spaces int) string {
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}
