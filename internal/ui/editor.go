package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/quill/internal/ui/components"
	"github.com/gravitrone/quill/internal/workspace"
)

// syncEditor loads the active note into the fields when the active note
// changes. While a note stays active the fields are the source of its
// edits and are left alone.
func (a *App) syncEditor() {
	if a.ws == nil {
		return
	}
	n, ok := a.ws.ActiveNote()
	if !ok {
		if a.editing != nil {
			a.editing = nil
			a.title.SetValue("")
			a.editor.SetValue("")
			if a.focus == focusTitle || a.focus == focusEditor {
				_ = a.setFocus(focusSidebar)
			}
		}
		return
	}
	if a.editing != nil && *a.editing == n.ID {
		return
	}
	id := n.ID
	a.editing = &id
	a.title.SetValue(n.Title)
	a.title.CursorEnd()
	a.editor.SetValue(workspace.DisplayContent(n.Content))
}

func (a App) handleTitleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isEnter(msg), isKey(msg, "down"):
		cmd := a.setFocus(focusEditor)
		return a, cmd
	case isBack(msg):
		cmd := a.setFocus(focusSidebar)
		return a, cmd
	}
	before := a.title.Value()
	var cmd tea.Cmd
	a.title, cmd = a.title.Update(msg)
	if after := a.title.Value(); after != before {
		a.edit(workspace.TitleDelta(after))
	}
	return a, cmd
}

func (a App) handleEditorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isBack(msg) {
		cmd := a.setFocus(focusSidebar)
		return a, cmd
	}
	before := a.editor.Value()
	var cmd tea.Cmd
	a.editor, cmd = a.editor.Update(msg)
	if after := a.editor.Value(); after != before {
		a.edit(workspace.ContentDelta(after))
	}
	return a, cmd
}

// edit feeds a change from the fields into the autosave pipeline.
func (a *App) edit(delta workspace.NoteDelta) {
	if a.editing == nil {
		return
	}
	if _, err := a.ws.EditNote(*a.editing, delta); err != nil {
		a.log.WithError(err).WithField("note_id", *a.editing).Debug("edit dropped")
		return
	}
	a.rows = a.sidebarRows()
	a.list.SetLen(len(a.rows))
}

func (a App) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isBack(msg):
		if a.search.Value() != "" {
			a.search.SetValue("")
			a.ws.SetQuery("")
			a.list.SetCursor(0)
			a.refresh()
			return a, nil
		}
		cmd := a.setFocus(focusSidebar)
		return a, cmd
	case isEnter(msg), isKey(msg, "down"):
		cmd := a.setFocus(focusSidebar)
		return a, cmd
	}
	before := a.search.Value()
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if after := a.search.Value(); after != before {
		a.ws.SetQuery(after)
		a.list.SetCursor(0)
		a.refresh()
	}
	return a, cmd
}

// --- View ---

func (a App) renderMain() string {
	width := a.editorWidth()
	inner := components.PanelContentWidth(width)
	height := a.bodyHeight() - 2

	if overlay := a.renderOverlay(); overlay != "" {
		return components.Box(placeCenter(overlay, inner, height), width)
	}

	if !a.ws.Ready() {
		msg := "Loading workspace..."
		if a.ws.Err() != "" {
			msg = "Workspace unavailable"
		}
		return components.Box(placeCenter(MutedStyle.Render(msg), inner, height), width)
	}

	n, ok := a.ws.ActiveNote()
	if !ok {
		hint := MutedStyle.Render("No note open. Press ctrl+n to create one.")
		return components.Box(placeCenter(RenderBanner()+"\n\n"+hint, inner, height), width)
	}

	lines := []string{
		a.title.View(),
		DividerStyle.Render(strings.Repeat("─", inner)),
		a.editor.View(),
	}
	content := components.PadLines(strings.Join(lines, "\n"), height)
	label := workspace.DisplayTitle(n.Title)
	if s := a.ws.Status(n.ID); s != workspace.StatusNone {
		label += " · " + s.String()
	}
	return components.TitledBox(label, content, width, a.focus == focusTitle || a.focus == focusEditor)
}
