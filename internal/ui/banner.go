package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const bannerArt = `
 ██████  ██    ██ ██ ██      ██
██    ██ ██    ██ ██ ██      ██
██    ██ ██    ██ ██ ██      ██
██ ▄▄ ██ ██    ██ ██ ██      ██
 ██████   ██████  ██ ███████ ███████
    ▀▀`

const bannerSubtitle = "Encrypted notes • Terminal workspace"

// RenderBanner returns the styled banner shown while no note is open.
func RenderBanner() string {
	lines := splitLines(bannerArt)

	maxWidth := lipgloss.Width(bannerSubtitle)
	for _, line := range lines {
		if w := lipgloss.Width(line); w > maxWidth {
			maxWidth = w
		}
	}

	art := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		art = append(art, BannerStyle.Render(line))
	}
	block := lipgloss.NewStyle().Width(maxWidth).Render(strings.Join(art, "\n"))

	subtitle := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Width(maxWidth).
		Align(lipgloss.Center).
		Render(bannerSubtitle)
	underline := lipgloss.NewStyle().
		Foreground(ColorBorder).
		Width(maxWidth).
		Align(lipgloss.Center).
		Render(strings.Repeat("─", lipgloss.Width(bannerSubtitle)))

	return block + "\n\n" + subtitle + "\n" + underline
}

func splitLines(s string) []string {
	return strings.Split(strings.Trim(s, "\n"), "\n")
}
