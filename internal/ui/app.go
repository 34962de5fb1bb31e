package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/gravitrone/quill/internal/config"
	"github.com/gravitrone/quill/internal/logging"
	"github.com/gravitrone/quill/internal/ui/components"
	"github.com/gravitrone/quill/internal/workspace"
)

// --- Focus ---

type focusArea int

const (
	focusSidebar focusArea = iota
	focusTitle
	focusEditor
	focusSearch
)

type promptKind int

const (
	promptNone promptKind = iota
	promptNewFolder
	promptNewNote
	promptRename
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDeleteFolder
	confirmDeleteNote
	confirmQuit
)

// --- Messages ---

type loadedMsg struct{ err error }
type changedMsg struct{}

type opDoneMsg struct {
	op  string
	err error
}

type savedAllMsg struct {
	count int
	err   error
	quit  bool
}

type loggedOutMsg struct{ err error }

// --- Layout ---

const (
	headerHeight = 2
	footerHeight = 1
	errorHeight  = 3
	// sidebarRowTop is the screen line of the first tree row: the header,
	// the panel border and the search field come first.
	sidebarRowTop = headerHeight + 2
)

// --- App Model ---

// App is the root TUI model. All note state lives in the workspace; the
// model only keeps what the terminal needs to render it.
type App struct {
	ws     *workspace.Workspace
	config *config.Config
	log    logrus.FieldLogger
	ctx    context.Context

	width   int
	height  int
	focus   focusArea
	authErr string
	notice  string

	helpOpen bool

	rows []workspace.TreeRow
	list *components.List

	search  textinput.Model
	title   textinput.Model
	editor  textarea.Model
	editing *int64

	prompt       promptKind
	promptTarget *int64
	input        textinput.Model

	confirm          confirmKind
	confirmID        int64
	confirmRecursive bool
	confirmMsg       string

	menuCursor int

	logout func(ctx context.Context) error
}

// NewApp creates the root model over ws. A nil logger discards.
func NewApp(ws *workspace.Workspace, cfg *config.Config, log logrus.FieldLogger) App {
	if log == nil {
		log = logging.Discard()
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search notes"

	title := textinput.New()
	title.Prompt = ""
	title.Placeholder = "Untitled"

	editor := textarea.New()
	editor.Placeholder = "Start writing..."
	editor.ShowLineNumbers = false
	editor.CharLimit = 0

	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 255

	a := App{
		ws:     ws,
		config: cfg,
		log:    log.WithField("component", "ui"),
		ctx:    context.Background(),
		list:   components.NewList(20),
		search: search,
		title:  title,
		editor: editor,
		input:  input,
	}
	if err := cfg.RequireToken(); err != nil {
		a.authErr = err.Error()
	}
	return a
}

// WithLogout enables ^l. fn must save pending edits before dropping the
// credential.
func (a App) WithLogout(fn func(ctx context.Context) error) App {
	a.logout = fn
	return a
}

func (a App) Init() tea.Cmd {
	if a.authErr != "" {
		return nil
	}
	return tea.Batch(a.loadCmd(), waitForChange(a.ws.Changes()))
}

func (a App) loadCmd() tea.Cmd {
	ws, ctx := a.ws, a.ctx
	return func() tea.Msg {
		return loadedMsg{err: ws.Load(ctx)}
	}
}

// waitForChange blocks until the workspace signals and is re-armed by the
// changedMsg handler.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// opCmd runs a remote workspace operation off the update loop.
func (a App) opCmd(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (a App) saveAllCmd(quit bool) tea.Cmd {
	ws, ctx := a.ws, a.ctx
	return func() tea.Msg {
		n, err := ws.SaveAllPending(ctx)
		return savedAllMsg{count: n, err: err, quit: quit}
	}
}

func (a App) logoutCmd() tea.Cmd {
	fn, ctx := a.logout, a.ctx
	return func() tea.Msg {
		return loggedOutMsg{err: fn(ctx)}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.refresh()
		return a, nil

	case loadedMsg:
		if msg.err != nil {
			a.log.WithError(msg.err).Warn("workspace load failed")
		}
		a.refresh()
		return a, nil

	case changedMsg:
		a.refresh()
		return a, waitForChange(a.ws.Changes())

	case opDoneMsg:
		return a.handleOpDone(msg)

	case savedAllMsg:
		return a.handleSavedAll(msg)

	case loggedOutMsg:
		if msg.err != nil {
			a.log.WithError(msg.err).Warn("logout failed")
			a.notice = "Logout failed"
			return a, nil
		}
		a.authErr = config.ErrNotLoggedIn.Error()
		return a, nil

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a.updateFocused(msg)
}

func (a App) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	a.refresh()
	if msg.err != nil {
		if !errors.Is(msg.err, workspace.ErrEmptyName) {
			a.log.WithError(msg.err).WithField("op", msg.op).Warn("operation failed")
		}
		return a, nil
	}
	switch msg.op {
	case "new-note":
		cmd := a.setFocus(focusTitle)
		return a, cmd
	case "save":
		a.notice = "Saved"
	}
	return a, nil
}

func (a App) handleSavedAll(msg savedAllMsg) (tea.Model, tea.Cmd) {
	a.confirm = confirmNone
	a.refresh()
	if msg.err != nil {
		a.log.WithError(msg.err).Warn("save all failed")
		return a, nil
	}
	if msg.quit {
		return a, tea.Quit
	}
	a.notice = pluralNotes(msg.count) + " saved"
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.notice = ""
	if a.authErr != "" {
		if isQuit(msg) || isBack(msg) {
			return a, tea.Quit
		}
		return a, nil
	}
	if a.confirm != confirmNone {
		return a.handleConfirmKeys(msg)
	}
	if a.prompt != promptNone {
		return a.handlePromptKeys(msg)
	}
	if a.ws.ContextMenu().Open {
		return a.handleMenuKeys(msg)
	}
	if a.helpOpen {
		if isBack(msg) || isKey(msg, "?", "f1") {
			a.helpOpen = false
		}
		return a, nil
	}

	// Global keys
	switch {
	case isQuit(msg):
		return a.requestQuit()
	case isBack(msg) && a.ws.Err() != "":
		a.ws.DismissError()
		a.refresh()
		return a, nil
	case isSave(msg):
		return a.saveActive()
	case isKey(msg, "ctrl+f"):
		cmd := a.setFocus(focusSearch)
		return a, cmd
	case isKey(msg, "ctrl+n"):
		a.openPrompt(promptNewNote, a.ws.ActiveFolder(), "")
		return a, nil
	case isKey(msg, "ctrl+w"):
		if n, ok := a.ws.ActiveNote(); ok {
			a.ws.CloseTab(n.ID)
			a.refresh()
		}
		return a, nil
	case isNextTab(msg):
		a.ws.CycleTab(1)
		a.refresh()
		return a, nil
	case isPrevTab(msg):
		a.ws.CycleTab(-1)
		a.refresh()
		return a, nil
	case isKey(msg, "tab"):
		cmd := a.cycleFocus(1)
		return a, cmd
	case isKey(msg, "shift+tab"):
		cmd := a.cycleFocus(-1)
		return a, cmd
	case isKey(msg, "f1"):
		a.helpOpen = true
		return a, nil
	case isKey(msg, "ctrl+l") && a.logout != nil:
		return a, a.logoutCmd()
	}

	switch a.focus {
	case focusTitle:
		return a.handleTitleKeys(msg)
	case focusEditor:
		return a.handleEditorKeys(msg)
	case focusSearch:
		return a.handleSearchKeys(msg)
	}
	return a.handleSidebarKeys(msg)
}

func (a App) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kind, id, recursive := a.confirm, a.confirmID, a.confirmRecursive
	if kind == confirmQuit {
		switch {
		case isKey(msg, "s"):
			return a, a.saveAllCmd(true)
		case isKey(msg, "y"):
			return a, tea.Quit
		case isKey(msg, "n"), isBack(msg):
			a.confirm = confirmNone
		}
		return a, nil
	}

	switch {
	case isKey(msg, "y"), isEnter(msg):
		a.confirm = confirmNone
		ws := a.ws
		if kind == confirmDeleteNote {
			return a, a.opCmd("delete-note", func(ctx context.Context) error {
				return ws.DeleteNote(ctx, id)
			})
		}
		return a, a.opCmd("delete-folder", func(ctx context.Context) error {
			return ws.DeleteFolder(ctx, id, recursive)
		})
	case isKey(msg, "n"), isBack(msg):
		a.confirm = confirmNone
	}
	return a, nil
}

func (a App) requestQuit() (tea.Model, tea.Cmd) {
	if err := a.ws.GuardExit(); err != nil {
		a.confirm = confirmQuit
		a.confirmMsg = err.Error()
		return a, nil
	}
	return a, tea.Quit
}

func (a App) saveActive() (tea.Model, tea.Cmd) {
	n, ok := a.ws.ActiveNote()
	if !ok {
		return a, nil
	}
	ws, id := a.ws, n.ID
	return a, a.opCmd("save", func(ctx context.Context) error {
		return ws.SaveNote(ctx, id)
	})
}

// updateFocused forwards non-key messages such as cursor blinks.
func (a App) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case a.prompt != promptNone:
		a.input, cmd = a.input.Update(msg)
	case a.focus == focusTitle:
		a.title, cmd = a.title.Update(msg)
	case a.focus == focusEditor:
		a.editor, cmd = a.editor.Update(msg)
	case a.focus == focusSearch:
		a.search, cmd = a.search.Update(msg)
	}
	return a, cmd
}

// --- Focus & layout ---

func (a *App) setFocus(f focusArea) tea.Cmd {
	if (f == focusTitle || f == focusEditor) && a.editing == nil {
		f = focusSidebar
	}
	a.focus = f
	a.title.Blur()
	a.editor.Blur()
	a.search.Blur()
	switch f {
	case focusTitle:
		return a.title.Focus()
	case focusEditor:
		return a.editor.Focus()
	case focusSearch:
		return a.search.Focus()
	}
	return nil
}

// cycleFocus walks sidebar, title and editor. Search is reached with ^f.
func (a *App) cycleFocus(delta int) tea.Cmd {
	order := []focusArea{focusSidebar, focusTitle, focusEditor}
	idx := 0
	for i, f := range order {
		if f == a.focus {
			idx = i
		}
	}
	for range order {
		idx = (idx + delta + len(order)) % len(order)
		if order[idx] == focusSidebar || a.editing != nil {
			break
		}
	}
	return a.setFocus(order[idx])
}

// refresh re-reads the workspace after any state change.
func (a *App) refresh() {
	a.layout()
	a.rows = a.sidebarRows()
	a.list.SetLen(len(a.rows))
	a.syncEditor()
}

func (a *App) layout() {
	a.list.SetPageSize(a.bodyHeight() - 3)
	w := components.PanelContentWidth(a.editorWidth())
	if w < 1 {
		w = 1
	}
	a.title.Width = w
	a.editor.SetWidth(w)
	h := a.bodyHeight() - 4
	if h < 1 {
		h = 1
	}
	a.editor.SetHeight(h)
	a.search.Width = components.PanelContentWidth(a.sidebarWidth()) - 2
}

func (a App) bodyHeight() int {
	if a.height <= 0 {
		return 24
	}
	h := a.height - headerHeight - footerHeight
	if a.ws != nil && a.ws.Err() != "" {
		h -= errorHeight
	}
	if h < 5 {
		h = 5
	}
	return h
}

func (a App) sidebarWidth() int {
	if a.width <= 0 {
		return 32
	}
	w := a.width / 3
	if w < 24 {
		w = 24
	}
	if w > 40 {
		w = 40
	}
	return w
}

func (a App) editorWidth() int {
	if a.width <= 0 {
		return 80
	}
	w := a.width - a.sidebarWidth()
	if w < 20 {
		w = 20
	}
	return w
}

// --- View ---

func (a App) View() string {
	if a.authErr != "" {
		return a.renderSignedOut()
	}

	header := a.renderHeader()
	body := lipgloss.JoinHorizontal(lipgloss.Top, a.renderSidebar(), a.renderMain())
	footer := components.StatusBar(a.statusHints(), a.width)

	parts := []string{header, body}
	if msg := a.ws.Err(); msg != "" {
		parts = append(parts, components.ErrorBox("Error", msg+"  (esc to dismiss)", a.width))
	}
	parts = append(parts, footer)
	return strings.Join(parts, "\n")
}

func (a App) renderSignedOut() string {
	lines := []string{
		RenderBanner(),
		"",
		MutedStyle.Render(components.SanitizeOneLine(a.authErr)),
		"",
		components.StatusBar([]string{components.Hint("^c", "quit")}, 0),
	}
	return centerBlock(strings.Join(lines, "\n"), a.width)
}

func (a App) renderHeader() string {
	left := BannerStyle.Render("quill")
	if a.config != nil && a.config.Username != "" {
		left += MutedStyle.Render("  " + components.SanitizeOneLine(a.config.Username))
	}
	right := ""
	if n, ok := a.ws.ActiveNote(); ok {
		right = statusChip(a.ws.Status(n.ID))
	}
	if a.notice != "" {
		right = AccentStyle.Render(a.notice) + " " + right
	}
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right + "\n" + a.renderTabs()
}

func (a App) renderTabs() string {
	tabs := a.ws.VisibleTabs()
	if len(tabs) == 0 {
		return MutedStyle.Render("no open notes")
	}
	active, _ := a.ws.ActiveNote()
	segments := make([]string, 0, len(tabs))
	used := 0
	for _, n := range tabs {
		label := components.ClampTextWidth(workspace.DisplayTitle(n.Title), 18)
		if a.ws.Pending(n.ID) {
			label += " ●"
		}
		style := TabInactiveStyle
		if n.ID == active.ID {
			style = TabActiveStyle
		}
		seg := style.Render(label)
		if a.width > 0 && used+lipgloss.Width(seg) > a.width-2 {
			segments = append(segments, MutedStyle.Render("…"))
			break
		}
		used += lipgloss.Width(seg)
		segments = append(segments, seg)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, segments...)
}

func (a App) statusHints() []string {
	switch {
	case a.confirm == confirmQuit:
		return []string{components.Hint("s", "save and quit"), components.Hint("y", "discard"), components.Hint("n", "cancel")}
	case a.confirm != confirmNone:
		return []string{components.Hint("y", "confirm"), components.Hint("n", "cancel")}
	case a.prompt != promptNone:
		return []string{components.Hint("enter", "submit"), components.Hint("esc", "cancel")}
	case a.ws.ContextMenu().Open:
		return []string{components.Hint("↑/↓", "move"), components.Hint("enter", "select"), components.Hint("esc", "close")}
	}
	hints := []string{
		components.Hint("^s", "save"),
		components.Hint("^n", "new note"),
		components.Hint("^f", "search"),
		components.Hint("^w", "close tab"),
		components.Hint("tab", "focus"),
	}
	if a.focus == focusSidebar {
		hints = append(hints,
			components.Hint("m", "menu"),
			components.Hint("N", "new folder"),
			components.Hint("r", "rename"),
			components.Hint("d", "delete"),
		)
	}
	return append(hints, components.Hint("f1", "help"), components.Hint("^q", "quit"))
}

func (a App) renderHelp() string {
	rows := [][2]string{
		{"^s", "save the open note now"},
		{"^n", "new note in the selected folder"},
		{"^f  /", "search titles and content"},
		{"^w", "close the open tab"},
		{"^←  ^→", "previous or next tab"},
		{"tab", "move between tree, title and editor"},
		{"enter", "open a note or toggle a folder"},
		{"m", "folder menu (or right click)"},
		{"N  r  d", "new folder, rename, delete"},
		{"c", "collapse all folders"},
		{"^l", "save everything and sign out"},
		{"^q", "quit, asking about unsaved notes"},
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, SelectedStyle.Render(fmt.Sprintf("%-8s", r[0]))+" "+NormalStyle.Render(r[1]))
	}
	return components.TitledBox("Keys", strings.Join(lines, "\n"), 56, true)
}

func centerBlock(block string, width int) string {
	if width <= 0 {
		return block
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
}

func pluralNotes(n int) string {
	if n == 1 {
		return "1 note"
	}
	return fmt.Sprintf("%d notes", n)
}
