package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/quill/internal/ui/components"
	"github.com/gravitrone/quill/internal/workspace"
)

// --- Rows ---

// sidebarRows is the folder tree, or the flat result list while a query
// is set.
func (a App) sidebarRows() []workspace.TreeRow {
	if a.ws == nil {
		return nil
	}
	if strings.TrimSpace(a.ws.Query()) == "" {
		return a.ws.Tree()
	}
	active, hasActive := a.ws.ActiveNote()
	results := a.ws.SearchResults()
	rows := make([]workspace.TreeRow, 0, len(results))
	for _, n := range results {
		rows = append(rows, workspace.TreeRow{
			Kind:   workspace.RowNote,
			ID:     n.ID,
			Label:  workspace.DisplayTitle(n.Title),
			Active: hasActive && active.ID == n.ID,
			Status: a.ws.Status(n.ID),
			Folder: n.FolderID,
		})
	}
	return rows
}

func (a App) cursorRow() (workspace.TreeRow, bool) {
	if a.list.Cursor < 0 || a.list.Cursor >= len(a.rows) {
		return workspace.TreeRow{}, false
	}
	return a.rows[a.list.Cursor], true
}

// --- Keys ---

func (a App) handleSidebarKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	row, ok := a.cursorRow()
	switch {
	case isUp(msg):
		a.list.Up()
	case isDown(msg):
		a.list.Down()
	case isEnter(msg), isKey(msg, " "):
		if ok {
			return a.activateRow(row)
		}
	case isKey(msg, "right", "l"):
		if ok && row.Kind == workspace.RowFolder {
			a.ws.SetExpanded(row.ID, true)
		}
	case isKey(msg, "left", "h"):
		if ok && row.Kind == workspace.RowFolder {
			a.ws.SetExpanded(row.ID, false)
		}
	case isKey(msg, "m", "shift+f10"):
		a.openMenuAtCursor()
	case isKey(msg, "n"):
		a.openPrompt(promptNewNote, a.rowTarget(row, ok), "")
	case isKey(msg, "N"):
		a.openPrompt(promptNewFolder, a.rowTarget(row, ok), "")
	case isKey(msg, "r"):
		if ok && row.Kind == workspace.RowFolder {
			a.openRename(row.ID)
		}
	case isKey(msg, "d", "delete"):
		if ok {
			a.requestDelete(row)
		}
	case isKey(msg, "c"):
		a.ws.CollapseAll()
	case isKey(msg, "/"):
		cmd := a.setFocus(focusSearch)
		return a, cmd
	case isKey(msg, "?"):
		a.helpOpen = true
	}
	a.refresh()
	return a, nil
}

// rowTarget is the folder new items go to from the cursor row.
func (a App) rowTarget(row workspace.TreeRow, ok bool) *int64 {
	if !ok {
		return a.ws.ActiveFolder()
	}
	return row.Target()
}

func (a App) activateRow(row workspace.TreeRow) (tea.Model, tea.Cmd) {
	switch row.Kind {
	case workspace.RowFolder:
		a.ws.SelectFolder(row.ID)
	case workspace.RowBucket:
		a.ws.SetActiveFolder(nil)
	case workspace.RowNote:
		if err := a.ws.OpenNote(row.ID); err != nil {
			a.log.WithError(err).WithField("note_id", row.ID).Debug("open note")
			break
		}
		a.refresh()
		cmd := a.setFocus(focusEditor)
		return a, cmd
	}
	a.refresh()
	return a, nil
}

func (a *App) requestDelete(row workspace.TreeRow) {
	switch row.Kind {
	case workspace.RowFolder:
		a.requestDeleteFolder(row.ID)
	case workspace.RowNote:
		a.confirm = confirmDeleteNote
		a.confirmID = row.ID
		a.confirmMsg = fmt.Sprintf("Delete note %q?", components.SanitizeOneLine(row.Label))
	}
}

// requestDeleteFolder asks for confirmation. Folders with contents are
// deleted recursively once confirmed.
func (a *App) requestDeleteFolder(id int64) {
	f, ok := a.ws.Folder(id)
	if !ok {
		return
	}
	a.confirm = confirmDeleteFolder
	a.confirmID = id
	a.confirmRecursive = a.ws.FolderHasContents(id)
	name := components.SanitizeOneLine(f.Name)
	if a.confirmRecursive {
		a.confirmMsg = fmt.Sprintf("Delete folder %q and everything in it?", name)
		return
	}
	a.confirmMsg = fmt.Sprintf("Delete folder %q?", name)
}

// --- Mouse ---

func (a App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.authErr != "" || a.confirm != confirmNone || a.prompt != promptNone {
		return a, nil
	}
	inSidebar := msg.X < a.sidebarWidth()
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if inSidebar {
			a.list.Up()
		}
		return a, nil
	case tea.MouseButtonWheelDown:
		if inSidebar {
			a.list.Down()
		}
		return a, nil
	}
	if msg.Action != tea.MouseActionPress {
		return a, nil
	}

	if menu := a.ws.ContextMenu(); menu.Open {
		if msg.Button == tea.MouseButtonLeft {
			if idx, ok := a.menuItemAt(menu, msg.X, msg.Y); ok {
				a.menuCursor = idx
				return a.runMenuAction(menu.Actions()[idx], menu.Target)
			}
		}
		// Any other click dismisses the menu.
		a.ws.CloseContextMenu()
		if msg.Button != tea.MouseButtonRight {
			a.refresh()
			return a, nil
		}
	}

	if !inSidebar {
		if msg.Button == tea.MouseButtonLeft && a.editing != nil && msg.Y >= sidebarRowTop-1 {
			if msg.Y == sidebarRowTop-1 {
				cmd := a.setFocus(focusTitle)
				return a, cmd
			}
			cmd := a.setFocus(focusEditor)
			return a, cmd
		}
		return a, nil
	}

	idx, onRow := a.list.RowAt(msg.Y - sidebarRowTop)
	switch msg.Button {
	case tea.MouseButtonRight:
		var target *int64
		if onRow {
			a.list.SetCursor(idx)
			target = a.rows[idx].Target()
		}
		a.menuCursor = 0
		a.ws.OpenContextMenu(msg.X, msg.Y, target)
	case tea.MouseButtonLeft:
		if msg.Y == sidebarRowTop-1 {
			cmd := a.setFocus(focusSearch)
			return a, cmd
		}
		if onRow {
			a.list.SetCursor(idx)
			_ = a.setFocus(focusSidebar)
			return a.activateRow(a.rows[idx])
		}
	}
	a.refresh()
	return a, nil
}

// --- View ---

func (a App) renderSidebar() string {
	width := a.sidebarWidth()
	inner := components.PanelContentWidth(width)

	lines := []string{a.search.View()}
	start, end := a.list.Window()
	for i := start; i < end; i++ {
		lines = append(lines, a.renderRow(a.rows[i], i == a.list.Cursor, inner))
	}
	if len(a.rows) == 0 {
		empty := "No folders or notes yet"
		if strings.TrimSpace(a.ws.Query()) != "" {
			empty = "No matching notes"
		}
		lines = append(lines, MutedStyle.Render(empty))
	}
	if menu := a.ws.ContextMenu(); menu.Open {
		lines = a.spliceMenu(lines, menu)
	}

	title := "Folders"
	if strings.TrimSpace(a.ws.Query()) != "" {
		title = fmt.Sprintf("Results (%d)", len(a.rows))
	}
	content := components.PadLines(strings.Join(lines, "\n"), a.list.PageSize+1)
	return components.TitledBox(title, content, width, a.focus == focusSidebar || a.focus == focusSearch)
}

func (a App) renderRow(r workspace.TreeRow, cursor bool, width int) string {
	prefix := strings.Repeat("  ", r.Depth)
	switch r.Kind {
	case workspace.RowFolder:
		switch {
		case !r.HasChildren:
			prefix += "• "
		case r.Expanded:
			prefix += "▾ "
		default:
			prefix += "▸ "
		}
	case workspace.RowBucket:
		prefix += "◇ "
	case workspace.RowNote:
		prefix += "  "
	}

	marker := ""
	switch r.Status {
	case workspace.StatusEditing, workspace.StatusSaving:
		marker = " ●"
	case workspace.StatusSaved:
		marker = " ✓"
	case workspace.StatusError:
		marker = " !"
	}

	room := width - len([]rune(prefix)) - len([]rune(marker))
	text := prefix + components.ClampTextWidth(r.Label, room)

	style := NormalStyle
	switch {
	case cursor && a.focus == focusSidebar:
		style = CursorRowStyle
	case r.Active:
		style = SelectedStyle
	case r.Kind == workspace.RowFolder:
		style = FolderStyle
	case r.Kind == workspace.RowBucket:
		style = MutedStyle
	}
	if marker == "" {
		return style.Render(text)
	}
	return style.Render(text) + PendingStyle.Render(marker)
}
