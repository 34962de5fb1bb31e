package ui

import tea "github.com/charmbracelet/bubbletea"

// --- Key Constants ---

func isKey(msg tea.KeyMsg, keys ...string) bool {
	for _, k := range keys {
		if msg.String() == k {
			return true
		}
	}
	return false
}

// isQuit leaves "q" to the text fields.
func isQuit(msg tea.KeyMsg) bool {
	return isKey(msg, "ctrl+c", "ctrl+q")
}

func isBack(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyEsc {
		return true
	}
	return isKey(msg, "esc", "escape", "ctrl+[")
}

func isUp(msg tea.KeyMsg) bool {
	return isKey(msg, "up", "k")
}

func isDown(msg tea.KeyMsg) bool {
	return isKey(msg, "down", "j")
}

func isEnter(msg tea.KeyMsg) bool {
	return isKey(msg, "enter", "return")
}

func isSave(msg tea.KeyMsg) bool {
	return isKey(msg, "ctrl+s")
}

func isNextTab(msg tea.KeyMsg) bool {
	return isKey(msg, "ctrl+right", "alt+]")
}

func isPrevTab(msg tea.KeyMsg) bool {
	return isKey(msg, "ctrl+left", "alt+[")
}
