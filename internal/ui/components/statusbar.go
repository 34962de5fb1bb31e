package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	hintKeyStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)
	hintDescStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
	statusBarStyle = lipgloss.NewStyle().
			PaddingLeft(1)

	chipBase = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true)
	chipStyles = map[ChipTone]lipgloss.Style{
		ChipMuted:   chipBase.Foreground(lipgloss.Color("#16161d")).Background(colorMuted),
		ChipBusy:    chipBase.Foreground(lipgloss.Color("#16161d")).Background(lipgloss.Color("#d8b45a")),
		ChipSuccess: chipBase.Foreground(lipgloss.Color("#16161d")).Background(lipgloss.Color("#5fa37a")),
		ChipError:   chipBase.Foreground(lipgloss.Color("#f4e3e5")).Background(lipgloss.Color("#a4434f")),
	}
)

// ChipTone selects the colour of a status chip.
type ChipTone int

const (
	ChipMuted ChipTone = iota
	ChipBusy
	ChipSuccess
	ChipError
)

// StatusChip renders a short coloured label. An empty label renders nothing.
func StatusChip(label string, tone ChipTone) string {
	if label == "" {
		return ""
	}
	style, ok := chipStyles[tone]
	if !ok {
		style = chipStyles[ChipMuted]
	}
	return style.Render(SanitizeOneLine(label))
}

// Hint formats a keybind hint like "^s save".
func Hint(key, desc string) string {
	return hintKeyStyle.Render(key) + " " + hintDescStyle.Render(desc)
}

// StatusBar lays hints out left to right and wraps them onto more lines
// when they do not fit in width.
func StatusBar(hints []string, width int) string {
	rows := wrapSegments(hints, width)
	return statusBarStyle.Render(strings.Join(rows, "\n"))
}

const segmentGap = "  "

func wrapSegments(segments []string, width int) []string {
	if len(segments) == 0 {
		return nil
	}
	if width <= 0 {
		return []string{strings.Join(segments, segmentGap)}
	}
	gap := lipgloss.Width(segmentGap)
	var rows []string
	var current []string
	currentWidth := 0
	for _, seg := range segments {
		segWidth := lipgloss.Width(seg)
		if len(current) > 0 && currentWidth+gap+segWidth > width {
			rows = append(rows, strings.Join(current, segmentGap))
			current, currentWidth = nil, 0
		}
		if len(current) > 0 {
			currentWidth += gap
		}
		current = append(current, seg)
		currentWidth += segWidth
	}
	return append(rows, strings.Join(current, segmentGap))
}
