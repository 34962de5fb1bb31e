package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/quill/internal/ui/components"
	"github.com/gravitrone/quill/internal/workspace"
)

// --- Context menu ---

// openMenuAtCursor opens the menu for the cursor row as if it had been
// right clicked.
func (a *App) openMenuAtCursor() {
	var target *int64
	if row, ok := a.cursorRow(); ok {
		target = row.Target()
	}
	a.menuCursor = 0
	a.ws.OpenContextMenu(1, sidebarRowTop+a.list.Cursor-a.list.Offset, target)
}

func (a App) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	menu := a.ws.ContextMenu()
	actions := menu.Actions()
	switch {
	case isBack(msg), isKey(msg, "m"):
		a.ws.CloseContextMenu()
	case isUp(msg):
		if a.menuCursor > 0 {
			a.menuCursor--
		}
	case isDown(msg):
		if a.menuCursor < len(actions)-1 {
			a.menuCursor++
		}
	case isEnter(msg):
		if a.menuCursor < len(actions) {
			return a.runMenuAction(actions[a.menuCursor], menu.Target)
		}
	}
	a.refresh()
	return a, nil
}

func (a App) runMenuAction(action workspace.MenuAction, target *int64) (tea.Model, tea.Cmd) {
	a.ws.CloseContextMenu()
	switch action {
	case workspace.ActionNewFolder:
		a.openPrompt(promptNewFolder, target, "")
	case workspace.ActionNewNote:
		a.openPrompt(promptNewNote, target, "")
	case workspace.ActionRename:
		if target != nil {
			a.openRename(*target)
		}
	case workspace.ActionDelete:
		if target != nil {
			a.requestDeleteFolder(*target)
		}
	}
	a.refresh()
	return a, nil
}

// menuTop is the screen line of the menu's top border. The menu opens
// below the clicked line and is pushed up to stay inside the panel.
func (a App) menuTop(menu workspace.ContextMenu) int {
	height := len(menu.Actions()) + 2
	top := menu.Y + 1
	if bottom := sidebarRowTop + a.list.PageSize; top+height > bottom {
		top = bottom - height
	}
	if top < sidebarRowTop {
		top = sidebarRowTop
	}
	return top
}

func (a App) menuItemAt(menu workspace.ContextMenu, x, y int) (int, bool) {
	if x >= a.sidebarWidth() {
		return 0, false
	}
	idx := y - a.menuTop(menu) - 1
	if idx < 0 || idx >= len(menu.Actions()) {
		return 0, false
	}
	return idx, true
}

// spliceMenu draws the menu over the sidebar content lines. lines[0] is the
// search field, which sits one line above sidebarRowTop.
func (a App) spliceMenu(lines []string, menu workspace.ContextMenu) []string {
	labels := make([]string, 0, len(menu.Actions()))
	for _, action := range menu.Actions() {
		labels = append(labels, string(action))
	}
	box := strings.Split(components.MenuDialog("", labels, a.menuCursor), "\n")

	first := a.menuTop(menu) - sidebarRowTop + 1
	for len(lines) < first+len(box) {
		lines = append(lines, "")
	}
	for i, l := range box {
		lines[first+i] = "  " + l
	}
	return lines
}

// --- Prompts ---

func (a *App) openPrompt(kind promptKind, target *int64, initial string) {
	a.prompt = kind
	if target != nil {
		id := *target
		a.promptTarget = &id
	} else {
		a.promptTarget = nil
	}
	a.input.SetValue(initial)
	a.input.CursorEnd()
	a.input.Focus()
}

func (a *App) openRename(id int64) {
	f, ok := a.ws.Folder(id)
	if !ok {
		return
	}
	a.openPrompt(promptRename, &id, f.Name)
}

func (a *App) closePrompt() {
	a.prompt = promptNone
	a.promptTarget = nil
	a.input.Blur()
	a.input.SetValue("")
}

func (a App) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isBack(msg):
		a.closePrompt()
		return a, nil
	case isEnter(msg):
		return a.submitPrompt()
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) submitPrompt() (tea.Model, tea.Cmd) {
	kind, target, value := a.prompt, a.promptTarget, a.input.Value()
	a.closePrompt()
	ws := a.ws
	switch kind {
	case promptNewFolder:
		return a, a.opCmd("new-folder", func(ctx context.Context) error {
			_, err := ws.CreateFolder(ctx, value, target)
			return err
		})
	case promptNewNote:
		return a, a.opCmd("new-note", func(ctx context.Context) error {
			_, err := ws.CreateNote(ctx, value, target)
			return err
		})
	case promptRename:
		if target == nil {
			return a, nil
		}
		id := *target
		return a, a.opCmd("rename-folder", func(ctx context.Context) error {
			_, err := ws.RenameFolder(ctx, id, value)
			return err
		})
	}
	return a, nil
}

func (a App) promptTitle() string {
	where := "Uncategorized"
	if a.promptTarget != nil {
		if f, ok := a.ws.Folder(*a.promptTarget); ok {
			where = f.Name
		}
	}
	switch a.prompt {
	case promptNewFolder:
		return "New folder in " + components.SanitizeOneLine(where)
	case promptNewNote:
		return "New note in " + components.SanitizeOneLine(where)
	case promptRename:
		return "Rename folder"
	}
	return ""
}

// renderOverlay returns the dialog shown over the main pane, if any.
func (a App) renderOverlay() string {
	switch {
	case a.confirm == confirmQuit:
		return components.ConfirmDialog("Unsaved changes", a.confirmMsg, "s: save and quit", "y: discard", "n: cancel")
	case a.confirm != confirmNone:
		return components.ConfirmDialog("Confirm delete", a.confirmMsg)
	case a.prompt != promptNone:
		return components.InputDialog(a.promptTitle(), a.input.View())
	case a.helpOpen:
		return a.renderHelp()
	}
	return ""
}

func placeCenter(block string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, block)
}
