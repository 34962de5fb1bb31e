package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2).
			Width(56)

	dialogTitleStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	dialogBodyStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	menuItemStyle = lipgloss.NewStyle().
			Foreground(colorText)

	menuActiveStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)
)

// ConfirmDialog renders a confirmation prompt. Without hints it offers the
// usual y/n choice.
func ConfirmDialog(title, message string, hints ...string) string {
	if len(hints) == 0 {
		hints = []string{"y: confirm", "n: cancel"}
	}
	header := dialogTitleStyle.Render(title)
	body := dialogBodyStyle.Render(message)
	hint := dialogBodyStyle.Render("\n" + strings.Join(hints, " | "))
	return dialogStyle.Render(header + "\n\n" + body + hint)
}

// InputDialog renders a single-line text prompt. input is the already
// rendered field, typically a bubbles textinput view.
func InputDialog(title, input string) string {
	header := dialogTitleStyle.Render(title)
	hint := dialogBodyStyle.Render("\nenter: submit | esc: cancel")
	return dialogStyle.Render(header + "\n\n" + input + "\n" + hint)
}

// MenuDialog renders a vertical menu with the cursor item highlighted.
func MenuDialog(title string, items []string, cursor int) string {
	lines := make([]string, 0, len(items))
	for i, item := range items {
		label := SanitizeOneLine(item)
		if i == cursor {
			lines = append(lines, menuActiveStyle.Render("› "+label))
			continue
		}
		lines = append(lines, menuItemStyle.Render("  "+label))
	}
	body := strings.Join(lines, "\n")
	menu := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1)
	if title == "" {
		return menu.Render(body)
	}
	return menu.Render(dialogTitleStyle.Render(SanitizeOneLine(title)) + "\n" + body)
}
