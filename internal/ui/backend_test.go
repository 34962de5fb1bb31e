package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/quill/internal/api"
	"github.com/gravitrone/quill/internal/config"
	"github.com/gravitrone/quill/internal/workspace"
)

// emptyCipher is how the server stores an encrypted empty string.
const emptyCipher = "gAAAAABmZ3xQ0aT1kq8wY9vLh2sNcEoR7uIpD5fGjKlMnBvCxZ=="

// backend is an in-memory notes API served over httptest.
type backend struct {
	mu          sync.Mutex
	folders     []api.Folder
	notes       []api.Note
	nextID      int64
	updates     []map[string]any
	deletes     []string
	failUpdates bool
}

func ref(v int64) *int64 { return &v }

func seededBackend() *backend {
	created := api.Timestamp{Time: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	return &backend{
		nextID: 100,
		folders: []api.Folder{
			{ID: 1, Name: "Work", CreatedAt: created},
			{ID: 2, Name: "Archive", ParentID: ref(1), CreatedAt: created},
		},
		notes: []api.Note{
			{ID: 1, Title: "Todo list", Content: "first body", IsEncrypted: true, Tags: []string{}, FolderID: ref(1), CreatedAt: created},
			{ID: 2, Title: "Ideas", Content: "idea body", IsEncrypted: true, Tags: []string{"misc"}, CreatedAt: created},
			{ID: 3, Title: "Blank", Content: emptyCipher, IsEncrypted: true, Tags: []string{}, CreatedAt: created},
		},
	}
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	var id int64
	if len(parts) > 1 {
		id, _ = strconv.ParseInt(parts[1], 10, 64)
	}
	switch {
	case parts[0] == "folders" && len(parts) == 1 && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, b.folders)
	case parts[0] == "folders" && len(parts) == 1 && r.Method == http.MethodPost:
		var in api.CreateFolderInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		b.nextID++
		f := api.Folder{ID: b.nextID, Name: in.Name, ParentID: in.ParentID}
		b.folders = append(b.folders, f)
		writeJSON(w, http.StatusCreated, f)
	case parts[0] == "folders" && r.Method == http.MethodPut:
		var in api.UpdateFolderInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		for i := range b.folders {
			if b.folders[i].ID == id {
				if in.Name != nil {
					b.folders[i].Name = *in.Name
				}
				writeJSON(w, http.StatusOK, b.folders[i])
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Folder not found"})
	case parts[0] == "folders" && r.Method == http.MethodDelete:
		b.deletes = append(b.deletes, r.URL.String())
		b.removeFolder(id)
		w.WriteHeader(http.StatusNoContent)
	case parts[0] == "notes" && len(parts) == 1 && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, b.notes)
	case parts[0] == "notes" && len(parts) == 1 && r.Method == http.MethodPost:
		var in api.CreateNoteInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		b.nextID++
		n := api.Note{ID: b.nextID, Title: in.Title, Content: in.Content, IsEncrypted: in.IsEncrypted, Tags: in.Tags, FolderID: in.FolderID}
		b.notes = append(b.notes, n)
		writeJSON(w, http.StatusCreated, n)
	case parts[0] == "notes" && r.Method == http.MethodPut:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.updates = append(b.updates, body)
		if b.failUpdates {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
			return
		}
		for i := range b.notes {
			if b.notes[i].ID != id {
				continue
			}
			if v, ok := body["title"].(string); ok {
				b.notes[i].Title = v
			}
			if v, ok := body["content"].(string); ok {
				b.notes[i].Content = v
			}
			writeJSON(w, http.StatusOK, b.notes[i])
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Note not found"})
	case parts[0] == "notes" && r.Method == http.MethodDelete:
		b.deletes = append(b.deletes, r.URL.String())
		b.removeNotes(func(n api.Note) bool { return n.ID == id })
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
	}
}

func (b *backend) removeFolder(id int64) {
	gone := map[int64]bool{id: true}
	for changed := true; changed; {
		changed = false
		for _, f := range b.folders {
			if f.ParentID != nil && gone[*f.ParentID] && !gone[f.ID] {
				gone[f.ID] = true
				changed = true
			}
		}
	}
	kept := b.folders[:0]
	for _, f := range b.folders {
		if !gone[f.ID] {
			kept = append(kept, f)
		}
	}
	b.folders = kept
	b.removeNotes(func(n api.Note) bool { return n.FolderID != nil && gone[*n.FolderID] })
}

func (b *backend) removeNotes(match func(api.Note) bool) {
	kept := b.notes[:0]
	for _, n := range b.notes {
		if !match(n) {
			kept = append(kept, n)
		}
	}
	b.notes = kept
}

func (b *backend) updateBodies() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]any(nil), b.updates...)
}

func (b *backend) setFailUpdates(on bool) {
	b.mu.Lock()
	b.failUpdates = on
	b.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newTestApp serves b, loads a workspace over it and sizes the app.
func newTestApp(t *testing.T, b *backend) (App, *workspace.ManualScheduler) {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	sched := workspace.NewManualScheduler()
	ws := workspace.New(api.NewClient(srv.URL, "test-token"), workspace.Options{
		Debounce:     500 * time.Millisecond,
		SavedDisplay: 2 * time.Second,
		Scheduler:    sched,
	})
	t.Cleanup(ws.Close)

	app := NewApp(ws, &config.Config{Token: "test-token", Username: "ada"}, nil)
	app, _ = update(app, tea.WindowSizeMsg{Width: 120, Height: 40})
	app, _ = update(app, app.loadCmd()())
	require.True(t, ws.Ready())
	return app, sched
}

func update(a App, msg tea.Msg) (App, tea.Cmd) {
	model, cmd := a.Update(msg)
	return model.(App), cmd
}

var specialKeys = map[string]tea.KeyType{
	"enter":      tea.KeyEnter,
	"esc":        tea.KeyEsc,
	"up":         tea.KeyUp,
	"down":       tea.KeyDown,
	"tab":        tea.KeyTab,
	"ctrl+c":     tea.KeyCtrlC,
	"ctrl+f":     tea.KeyCtrlF,
	"ctrl+l":     tea.KeyCtrlL,
	"ctrl+n":     tea.KeyCtrlN,
	"ctrl+q":     tea.KeyCtrlQ,
	"ctrl+s":     tea.KeyCtrlS,
	"ctrl+w":     tea.KeyCtrlW,
	"ctrl+right": tea.KeyCtrlRight,
}

func keyMsg(k string) tea.KeyMsg {
	if t, ok := specialKeys[k]; ok {
		return tea.KeyMsg{Type: t}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends keys in order and returns the last command.
func press(a App, keys ...string) (App, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		a, cmd = update(a, keyMsg(k))
	}
	return a, cmd
}

func typeText(a App, s string) App {
	for _, r := range s {
		a, _ = update(a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return a
}

// finish runs an operation command and feeds its result back.
func finish(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	switch msg.(type) {
	case opDoneMsg, savedAllMsg:
	default:
		t.Fatalf("unexpected message %T", msg)
	}
	a, _ = update(a, msg)
	return a
}

func isQuitCmd(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func rowLabels(a App) []string {
	out := make([]string, 0, len(a.rows))
	for _, r := range a.rows {
		out = append(out, r.Label)
	}
	return out
}
