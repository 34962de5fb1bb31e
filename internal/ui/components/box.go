package components

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorBorder = lipgloss.Color("#273540")
	colorAccent = lipgloss.Color("#7f57b4")
	colorMuted  = lipgloss.Color("#9ba0bf")
	colorText   = lipgloss.Color("#d7d9da")
	colorTeal   = lipgloss.Color("#436b77")

	panelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	panelBorderActive = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorAccent).
				Padding(0, 1)

	panelHeaderStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	errorBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7a2f3a")).
			Padding(0, 1)

	errorHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#e06c75")).
				Bold(true)

	errorBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d6b5b5"))

	labelStyle = lipgloss.NewStyle().
			Foreground(colorTeal).
			Bold(true)
)

// frameWidth is the border plus horizontal padding of every panel.
const frameWidth = 4

// PanelContentWidth returns the usable text width of a panel whose outer
// width is width.
func PanelContentWidth(width int) int {
	if width-frameWidth < 0 {
		return 0
	}
	return width - frameWidth
}

func outerWidth(style lipgloss.Style, width int) lipgloss.Style {
	if width <= 0 {
		return style
	}
	// lipgloss widths exclude the border.
	return style.Width(width - 2)
}

// Box renders content inside a bordered panel of the given outer width.
func Box(content string, width int) string {
	return outerWidth(panelBorder, width).Render(content)
}

// ActiveBox renders a panel with the focus border colour.
func ActiveBox(content string, width int) string {
	return outerWidth(panelBorderActive, width).Render(content)
}

// ErrorBox renders a red panel for the workspace error banner.
func ErrorBox(title, message string, width int) string {
	header := ""
	if title != "" {
		header = errorHeaderStyle.Render(title) + "  "
	}
	return outerWidth(errorBorder, width).Render(header + errorBodyStyle.Render(SanitizeOneLine(message)))
}

// TitledBox renders a panel with title set into its top border.
func TitledBox(title, content string, width int, active bool) string {
	boxed, border := Box(content, width), colorBorder
	if active {
		boxed, border = ActiveBox(content, width), colorAccent
	}
	if title == "" {
		return boxed
	}
	lines := strings.Split(boxed, "\n")
	lineWidth := lipgloss.Width(lines[0])
	if lineWidth < 6 {
		return boxed
	}

	glyphs := lipgloss.RoundedBorder()
	middle := lineWidth - 2
	text := fmt.Sprintf(" %s ", SanitizeOneLine(title))
	if lipgloss.Width(text) > middle-1 {
		text = truncateRunes(text, middle-1)
	}
	right := middle - 1 - lipgloss.Width(text)
	if right < 0 {
		right = 0
	}

	borderStyle := lipgloss.NewStyle().Foreground(border)
	lines[0] = borderStyle.Render(glyphs.TopLeft+glyphs.Top) +
		panelHeaderStyle.Render(text) +
		borderStyle.Render(strings.Repeat(glyphs.Top, right)+glyphs.TopRight)
	return strings.Join(lines, "\n")
}

// ClampTextWidth sanitizes text to one line and truncates it to width runes.
func ClampTextWidth(text string, width int) string {
	cleaned := SanitizeOneLine(text)
	if width <= 0 || lipgloss.Width(cleaned) <= width {
		return cleaned
	}
	if width == 1 {
		return "…"
	}
	return truncateRunes(cleaned, width-1) + "…"
}

// InfoRow renders a label: value pair.
func InfoRow(label, value string) string {
	return labelStyle.Render(SanitizeOneLine(label)+": ") +
		lipgloss.NewStyle().Foreground(colorText).Render(SanitizeOneLine(value))
}

// PadLines pads or truncates s to exactly height lines.
func PadLines(s string, height int) string {
	if height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		if n >= max {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
