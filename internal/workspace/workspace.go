// Package workspace holds the client-side state of a notes session: the
// entity store, the folder tree, open tabs, search and the autosave
// pipeline that reconciles local edits with the remote store.
//
// All state is guarded by one mutex. Remote calls are made without holding
// it, so a slow request never blocks rendering or further edits.
package workspace

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gravitrone/quill/internal/api"
)

const (
	DefaultDebounce     = 500 * time.Millisecond
	DefaultSavedDisplay = 2 * time.Second
)

// Remote is the persistence API consumed by the workspace.
type Remote interface {
	ListNotes(ctx context.Context) ([]api.Note, error)
	GetNote(ctx context.Context, id int64) (*api.Note, error)
	CreateNote(ctx context.Context, input api.CreateNoteInput) (*api.Note, error)
	UpdateNote(ctx context.Context, id int64, input api.UpdateNoteInput) (*api.Note, error)
	MoveNote(ctx context.Context, id int64, folderID *int64) (*api.Note, error)
	DeleteNote(ctx context.Context, id int64) error

	ListFolders(ctx context.Context, parentID *int64) ([]api.Folder, error)
	CreateFolder(ctx context.Context, input api.CreateFolderInput) (*api.Folder, error)
	UpdateFolder(ctx context.Context, id int64, input api.UpdateFolderInput) (*api.Folder, error)
	DeleteFolder(ctx context.Context, id int64, recursive bool) error

	UploadFile(ctx context.Context, filename string, r io.Reader, folderID *int64, encrypted bool) (*api.File, error)
}

var _ Remote = (*api.Client)(nil)

// Options configures a Workspace. Zero values select the defaults.
type Options struct {
	Debounce     time.Duration
	SavedDisplay time.Duration
	Scheduler    Scheduler
	Logger       logrus.FieldLogger
}

// Workspace is the controller owning all session state.
type Workspace struct {
	remote       Remote
	log          logrus.FieldLogger
	debounce     time.Duration
	savedDisplay time.Duration
	debouncer    *Debouncer
	clears       *Debouncer
	changes      chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	ready        bool
	closed       bool
	store        *Store
	tabs         Tabs
	sync         map[int64]*noteSync
	expanded     map[int64]bool
	activeFolder *int64
	query        string
	menu         ContextMenu
	errMsg       string
}

// New returns an empty workspace backed by remote. Call Load before use.
func New(remote Remote, opts Options) *Workspace {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.SavedDisplay <= 0 {
		opts.SavedDisplay = DefaultSavedDisplay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = WallClock()
	}
	if opts.Logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		opts.Logger = discard
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Workspace{
		remote:       remote,
		log:          opts.Logger.WithField("component", "workspace"),
		debounce:     opts.Debounce,
		savedDisplay: opts.SavedDisplay,
		debouncer:    NewDebouncer(opts.Scheduler),
		clears:       NewDebouncer(opts.Scheduler),
		changes:      make(chan struct{}, 1),
		ctx:          ctx,
		cancel:       cancel,
		store:        NewStore(),
		sync:         make(map[int64]*noteSync),
		expanded:     make(map[int64]bool),
	}
}

// Load fetches folders, then notes, and replaces the store. If no tab is
// open afterwards the first note is opened.
func (w *Workspace) Load(ctx context.Context) error {
	folders, err := w.remote.ListFolders(ctx, nil)
	if err != nil {
		w.fail(msgLoadFailed, err, nil)
		return fmt.Errorf("list folders: %w", err)
	}
	notes, err := w.remote.ListNotes(ctx)
	if err != nil {
		w.fail(msgLoadFailed, err, nil)
		return fmt.Errorf("list notes: %w", err)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrNotReady
	}
	w.store.Load(folders, notes)
	for id := range w.sync {
		if _, ok := w.store.Note(id); !ok {
			w.purgeNoteLocked(id)
		}
	}
	for _, id := range w.tabs.IDs() {
		if _, ok := w.store.Note(id); !ok {
			w.tabs.Close(id)
		}
	}
	if w.tabs.Len() == 0 {
		if ids := w.store.NoteIDs(); len(ids) > 0 {
			w.tabs.Open(ids[0])
		}
	}
	w.ready = true
	w.mu.Unlock()

	w.log.WithFields(logrus.Fields{"folders": len(folders), "notes": len(notes)}).Info("workspace loaded")
	w.notify()
	return nil
}

// Ready reports whether Load has completed.
func (w *Workspace) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ready
}

// RefreshNote refetches one note. Notes with pending edits keep their local
// values.
func (w *Workspace) RefreshNote(ctx context.Context, id int64) (api.Note, error) {
	if err := w.usable(); err != nil {
		return api.Note{}, err
	}
	n, err := w.remote.GetNote(ctx, id)
	if err != nil {
		w.fail(msgRefreshFailed, err, logrus.Fields{"note_id": id})
		return api.Note{}, fmt.Errorf("get note %d: %w", id, err)
	}

	w.mu.Lock()
	defer w.notify()
	defer w.mu.Unlock()
	if st, ok := w.sync[id]; ok && st.pending {
		local, _ := w.store.Note(id)
		return local, nil
	}
	if !w.store.ReplaceNote(*n) {
		// Deleted while the request was out.
		return api.Note{}, fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	return cloneNote(*n), nil
}

// --- Notes ---

// Note returns a copy of a stored note.
func (w *Workspace) Note(id int64) (api.Note, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Note(id)
}

// Notes returns all notes in store order.
func (w *Workspace) Notes() []api.Note {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Notes()
}

// CreateNote creates an empty encrypted note in folderID, opens it and
// expands its folder. A blank title becomes "Untitled".
func (w *Workspace) CreateNote(ctx context.Context, title string, folderID *int64) (api.Note, error) {
	if err := w.usable(); err != nil {
		return api.Note{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}
	created, err := w.remote.CreateNote(ctx, api.CreateNoteInput{
		Title:       title,
		Content:     "",
		IsEncrypted: true,
		Tags:        []string{},
		FolderID:    cloneRef(folderID),
	})
	if err != nil {
		w.fail(msgCreateNoteFailed, err, nil)
		return api.Note{}, fmt.Errorf("create note: %w", err)
	}

	w.mu.Lock()
	w.store.InsertNote(*created)
	w.tabs.Open(created.ID)
	if created.FolderID != nil {
		w.expanded[*created.FolderID] = true
	}
	w.mu.Unlock()

	w.log.WithField("note_id", created.ID).Info("note created")
	w.notify()
	return cloneNote(*created), nil
}

// DeleteNote deletes a note remotely, then drops it locally together with
// its autosave state and its tab.
func (w *Workspace) DeleteNote(ctx context.Context, id int64) error {
	if err := w.usable(); err != nil {
		return err
	}
	if _, ok := w.Note(id); !ok {
		return fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	if err := w.remote.DeleteNote(ctx, id); err != nil {
		w.fail(msgDeleteNoteFailed, err, logrus.Fields{"note_id": id})
		return fmt.Errorf("delete note %d: %w", id, err)
	}

	w.mu.Lock()
	w.store.RemoveNote(id)
	w.purgeNoteLocked(id)
	w.mu.Unlock()

	w.log.WithField("note_id", id).Info("note deleted")
	w.notify()
	return nil
}

// MoveNote changes a note's folder remotely and mirrors only the folder
// reference locally, so unsaved edits to other fields survive.
func (w *Workspace) MoveNote(ctx context.Context, id int64, folderID *int64) error {
	if err := w.usable(); err != nil {
		return err
	}
	w.mu.Lock()
	_, noteOK := w.store.Note(id)
	folderOK := true
	if folderID != nil {
		_, folderOK = w.store.Folder(*folderID)
	}
	w.mu.Unlock()
	if !noteOK {
		return fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	if !folderOK {
		return fmt.Errorf("folder %d: %w", *folderID, ErrNotFound)
	}

	moved, err := w.remote.MoveNote(ctx, id, folderID)
	if err != nil {
		w.fail(msgMoveNoteFailed, err, logrus.Fields{"note_id": id})
		return fmt.Errorf("move note %d: %w", id, err)
	}

	w.mu.Lock()
	target := folderID
	if moved != nil {
		target = moved.FolderID
	}
	w.store.SetNoteFolder(id, target)
	w.mu.Unlock()

	w.notify()
	return nil
}

// --- Folders ---

// Folder returns a copy of a stored folder.
func (w *Workspace) Folder(id int64) (api.Folder, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Folder(id)
}

// Folders returns all folders in store order.
func (w *Workspace) Folders() []api.Folder {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Folders()
}

// ChildFolders returns the folders directly under parentID.
func (w *Workspace) ChildFolders(parentID *int64) []api.Folder {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.ChildFolders(parentID)
}

// NotesIn returns the notes directly inside folderID, or at the root.
func (w *Workspace) NotesIn(folderID *int64) []api.Note {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.NotesIn(folderID)
}

// CreateFolder creates a folder named by the trimmed name under parentID.
// The new folder becomes active and its parent is expanded.
func (w *Workspace) CreateFolder(ctx context.Context, name string, parentID *int64) (api.Folder, error) {
	if err := w.usable(); err != nil {
		return api.Folder{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return api.Folder{}, ErrEmptyName
	}
	created, err := w.remote.CreateFolder(ctx, api.CreateFolderInput{Name: name, ParentID: cloneRef(parentID)})
	if err != nil {
		w.fail(msgCreateFolderFailed, err, nil)
		return api.Folder{}, fmt.Errorf("create folder: %w", err)
	}

	w.mu.Lock()
	w.store.InsertFolder(*created)
	w.activeFolder = cloneRef(&created.ID)
	if created.ParentID != nil {
		w.expanded[*created.ParentID] = true
	}
	w.mu.Unlock()

	w.log.WithField("folder_id", created.ID).Info("folder created")
	w.notify()
	return cloneFolder(*created), nil
}

// RenameFolder renames a folder. A blank name cancels without a remote call.
func (w *Workspace) RenameFolder(ctx context.Context, id int64, name string) (api.Folder, error) {
	if err := w.usable(); err != nil {
		return api.Folder{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return api.Folder{}, ErrEmptyName
	}
	if _, ok := w.Folder(id); !ok {
		return api.Folder{}, fmt.Errorf("folder %d: %w", id, ErrNotFound)
	}
	updated, err := w.remote.UpdateFolder(ctx, id, api.UpdateFolderInput{Name: &name})
	if err != nil {
		w.fail(msgRenameFolderFailed, err, logrus.Fields{"folder_id": id})
		return api.Folder{}, fmt.Errorf("rename folder %d: %w", id, err)
	}

	w.mu.Lock()
	defer w.notify()
	defer w.mu.Unlock()
	if updated == nil {
		f, _ := w.store.Folder(id)
		f.Name = name
		updated = &f
	}
	w.store.ReplaceFolder(*updated)
	return cloneFolder(*updated), nil
}

// FolderHasContents reports whether a folder holds child folders or notes,
// which makes a recursive delete confirmation necessary.
func (w *Workspace) FolderHasContents(id int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.HasContents(id)
}

// DeleteFolder deletes a folder. A folder with contents requires recursive
// and otherwise fails with ErrConfirmationRequired before any remote call.
// On success the folder's whole subtree is dropped locally, since the
// server cascades the delete.
func (w *Workspace) DeleteFolder(ctx context.Context, id int64, recursive bool) error {
	if err := w.usable(); err != nil {
		return err
	}
	w.mu.Lock()
	_, ok := w.store.Folder(id)
	nonEmpty := ok && w.store.HasContents(id)
	w.mu.Unlock()
	if !ok {
		return fmt.Errorf("folder %d: %w", id, ErrNotFound)
	}
	if nonEmpty && !recursive {
		return ErrConfirmationRequired
	}

	if err := w.remote.DeleteFolder(ctx, id, recursive); err != nil {
		w.fail(msgDeleteFolderFailed, err, logrus.Fields{"folder_id": id})
		return fmt.Errorf("delete folder %d: %w", id, err)
	}

	w.mu.Lock()
	var removedNotes int
	subtree := w.store.Subtree(id)
	for _, fid := range subtree {
		ref := fid
		for _, n := range w.store.NotesIn(&ref) {
			w.store.RemoveNote(n.ID)
			w.purgeNoteLocked(n.ID)
			removedNotes++
		}
	}
	for _, fid := range subtree {
		w.store.RemoveFolder(fid)
		delete(w.expanded, fid)
		if w.activeFolder != nil && *w.activeFolder == fid {
			w.activeFolder = nil
		}
	}
	w.mu.Unlock()

	w.log.WithFields(logrus.Fields{
		"folder_id": id,
		"folders":   len(subtree),
		"notes":     removedNotes,
	}).Info("folder deleted")
	w.notify()
	return nil
}

// UploadFile uploads an attachment into folderID.
func (w *Workspace) UploadFile(ctx context.Context, filename string, r io.Reader, folderID *int64, encrypted bool) (api.File, error) {
	if err := w.usable(); err != nil {
		return api.File{}, err
	}
	f, err := w.remote.UploadFile(ctx, filename, r, folderID, encrypted)
	if err != nil {
		w.fail(msgUploadFailed, err, logrus.Fields{"filename": filename})
		return api.File{}, fmt.Errorf("upload %s: %w", filename, err)
	}
	w.log.WithFields(logrus.Fields{"file_id": f.ID, "filename": f.Filename}).Info("file uploaded")
	return *f, nil
}

// --- Tree ---

// Tree returns the visible rows of the folder tree.
func (w *Workspace) Tree() []TreeRow {
	w.mu.Lock()
	defer w.mu.Unlock()
	var activeNote *int64
	if id, ok := w.tabs.ActiveNote(); ok {
		activeNote = &id
	}
	return treeView{
		store:        w.store,
		expanded:     w.expanded,
		activeFolder: w.activeFolder,
		activeNote:   activeNote,
		status:       w.statusLocked,
	}.rows()
}

// ToggleExpanded flips a folder's expanded state and returns the new state.
func (w *Workspace) ToggleExpanded(id int64) bool {
	w.mu.Lock()
	open := !w.expanded[id]
	if open {
		w.expanded[id] = true
	} else {
		delete(w.expanded, id)
	}
	w.mu.Unlock()
	w.notify()
	return open
}

// SetExpanded sets a folder's expanded state.
func (w *Workspace) SetExpanded(id int64, open bool) {
	w.mu.Lock()
	if open {
		w.expanded[id] = true
	} else {
		delete(w.expanded, id)
	}
	w.mu.Unlock()
	w.notify()
}

// IsExpanded reports whether a folder is expanded. Unknown ids are collapsed.
func (w *Workspace) IsExpanded(id int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.expanded[id]
}

// CollapseAll collapses every folder.
func (w *Workspace) CollapseAll() {
	w.mu.Lock()
	w.expanded = make(map[int64]bool)
	w.mu.Unlock()
	w.notify()
}

// SetActiveFolder selects the folder new notes and folders go into. Nil
// selects the root.
func (w *Workspace) SetActiveFolder(id *int64) {
	w.mu.Lock()
	w.activeFolder = cloneRef(id)
	w.mu.Unlock()
	w.notify()
}

// ActiveFolder returns the selected folder, nil for the root.
func (w *Workspace) ActiveFolder() *int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneRef(w.activeFolder)
}

// SelectFolder makes a folder active and toggles it, as a click does.
func (w *Workspace) SelectFolder(id int64) bool {
	w.mu.Lock()
	w.activeFolder = cloneRef(&id)
	open := !w.expanded[id]
	if open {
		w.expanded[id] = true
	} else {
		delete(w.expanded, id)
	}
	w.mu.Unlock()
	w.notify()
	return open
}

// OpenContextMenu opens the single context menu, replacing any open one.
func (w *Workspace) OpenContextMenu(x, y int, target *int64) {
	w.mu.Lock()
	w.menu = ContextMenu{Open: true, X: x, Y: y, Target: cloneRef(target)}
	w.mu.Unlock()
	w.notify()
}

// CloseContextMenu closes the context menu if open.
func (w *Workspace) CloseContextMenu() {
	w.mu.Lock()
	w.menu = ContextMenu{}
	w.mu.Unlock()
	w.notify()
}

// ContextMenu returns the current menu state.
func (w *Workspace) ContextMenu() ContextMenu {
	w.mu.Lock()
	defer w.mu.Unlock()
	m := w.menu
	m.Target = cloneRef(m.Target)
	return m
}

// --- Tabs ---

// OpenNote opens a note in a tab and focuses it.
func (w *Workspace) OpenNote(id int64) error {
	w.mu.Lock()
	defer w.notify()
	defer w.mu.Unlock()
	if _, ok := w.store.Note(id); !ok {
		return fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	w.tabs.Open(id)
	return nil
}

// CloseTab closes a tab. Unsaved edits keep their pending state.
func (w *Workspace) CloseTab(id int64) bool {
	w.mu.Lock()
	closed := w.tabs.Close(id)
	w.mu.Unlock()
	if closed {
		w.notify()
	}
	return closed
}

// ActivateTab focuses an open tab.
func (w *Workspace) ActivateTab(id int64) bool {
	w.mu.Lock()
	ok := w.tabs.Activate(id)
	w.mu.Unlock()
	if ok {
		w.notify()
	}
	return ok
}

// CycleTab moves focus delta tabs to the right, wrapping around.
func (w *Workspace) CycleTab(delta int) (int64, bool) {
	w.mu.Lock()
	id, ok := w.tabs.Cycle(delta)
	w.mu.Unlock()
	if ok {
		w.notify()
	}
	return id, ok
}

// VisibleTabs returns the notes of open tabs in order, skipping tabs whose
// note no longer exists.
func (w *Workspace) VisibleTabs() []api.Note {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := w.tabs.IDs()
	out := make([]api.Note, 0, len(ids))
	for _, id := range ids {
		if n, ok := w.store.Note(id); ok {
			out = append(out, n)
		}
	}
	return out
}

// ActiveNote returns the note shown in the editor.
func (w *Workspace) ActiveNote() (api.Note, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id, ok := w.tabs.ActiveNote()
	if !ok {
		return api.Note{}, false
	}
	return w.store.Note(id)
}

// --- Search ---

// SetQuery sets the search query.
func (w *Workspace) SetQuery(q string) {
	w.mu.Lock()
	w.query = q
	w.mu.Unlock()
	w.notify()
}

// Query returns the search query.
func (w *Workspace) Query() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.query
}

// SearchResults returns the notes matching the current query.
func (w *Workspace) SearchResults() []api.Note {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Filter(w.store.Notes(), w.query)
}

// --- Error slot ---

// Err returns the workspace error message, empty when none.
func (w *Workspace) Err() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errMsg
}

// DismissError clears the workspace error message.
func (w *Workspace) DismissError() {
	w.mu.Lock()
	w.errMsg = ""
	w.mu.Unlock()
	w.notify()
}

// --- State ---

// State is a serializable snapshot of the workspace UI state.
type State struct {
	Ready        bool                 `json:"ready"`
	OpenTabs     []int64              `json:"open_tabs"`
	ActiveTab    *int64               `json:"active_tab"`
	ActiveNote   *int64               `json:"active_note"`
	ActiveFolder *int64               `json:"active_folder"`
	Expanded     []int64              `json:"expanded"`
	Query        string               `json:"query"`
	ContextMenu  ContextMenu          `json:"context_menu"`
	SaveStatus   map[int64]SaveStatus `json:"save_status"`
	Pending      []int64              `json:"pending"`
	Error        string               `json:"error,omitempty"`
}

// Snapshot returns a copy of the current state.
func (w *Workspace) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := State{
		Ready:        w.ready,
		OpenTabs:     w.tabs.IDs(),
		ActiveFolder: cloneRef(w.activeFolder),
		Expanded:     sortedKeys(w.expanded),
		Query:        w.query,
		ContextMenu:  w.menu,
		SaveStatus:   make(map[int64]SaveStatus),
		Pending:      w.pendingIDsLocked(),
		Error:        w.errMsg,
	}
	s.ContextMenu.Target = cloneRef(w.menu.Target)
	if id, ok := w.tabs.Active(); ok {
		s.ActiveTab = &id
	}
	if id, ok := w.tabs.ActiveNote(); ok {
		s.ActiveNote = &id
	}
	for id, st := range w.sync {
		if st.status != StatusNone {
			s.SaveStatus[id] = st.status
		}
	}
	return s
}

// Changes is signalled after state changes. Signals coalesce; receivers
// should re-read whatever they render.
func (w *Workspace) Changes() <-chan struct{} {
	return w.changes
}

// Close cancels all timers and in-flight debounce requests. Pending edits
// that were not saved are lost; call SaveAllPending first.
func (w *Workspace) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	n := w.debouncer.CancelAll()
	w.clears.CancelAll()
	w.mu.Unlock()

	w.cancel()
	w.log.WithField("cancelled_flushes", n).Debug("workspace closed")
}

// --- helpers ---

func (w *Workspace) usable() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.usableLocked()
}

func (w *Workspace) usableLocked() error {
	if w.closed || !w.ready {
		return ErrNotReady
	}
	return nil
}

// purgeNoteLocked drops a note's autosave state and closes its tab.
func (w *Workspace) purgeNoteLocked(id int64) {
	w.debouncer.Cancel(id)
	w.clears.Cancel(id)
	delete(w.sync, id)
	w.tabs.Close(id)
}

// fail records msg in the error slot.
func (w *Workspace) fail(msg string, err error, fields logrus.Fields) {
	w.mu.Lock()
	w.errMsg = msg
	w.mu.Unlock()
	w.log.WithFields(fields).WithError(err).Warn(strings.ToLower(msg))
	w.notify()
}

func (w *Workspace) notify() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}
