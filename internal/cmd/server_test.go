package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/quill/internal/api"
	"github.com/gravitrone/quill/internal/config"
)

// fakeServer is a minimal notes API with auth and file endpoints.
type fakeServer struct {
	mu       sync.Mutex
	folders  []api.Folder
	notes    []api.Note
	files    []api.File
	nextID   int64
	requests []string
	forms    map[string]string
	uploads  map[string]string
}

func ref(v int64) *int64 { return &v }

func newFakeServer() *fakeServer {
	created := api.Timestamp{Time: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	updated := &api.Timestamp{Time: time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)}
	return &fakeServer{
		nextID: 100,
		folders: []api.Folder{
			{ID: 1, Name: "Work", CreatedAt: created},
			{ID: 2, Name: "Archive", ParentID: ref(1), CreatedAt: created},
		},
		notes: []api.Note{
			{ID: 1, Title: "Todo list", Content: "first body", Tags: []string{"work"}, FolderID: ref(1), CreatedAt: created, UpdatedAt: updated},
			{ID: 2, Title: "Ideas", Content: "idea body", Tags: []string{}, CreatedAt: created},
			{ID: 3, Title: "Old plan", Content: "gAAAAABmZ3xQ0aT1kq8wY9vLh2sNcEoR7uIpD5fGjKlMnBvCxZ==", Tags: []string{"work"}, FolderID: ref(2), CreatedAt: created},
		},
		files: []api.File{
			{ID: 7, Filename: "scan.pdf", Size: 2048, IsEncrypted: true, CreatedAt: created},
		},
		forms:   map[string]string{},
		uploads: map[string]string{},
	}
}

func (s *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.Method+" "+r.URL.String())

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	var id int64
	if len(parts) > 1 {
		id, _ = strconv.ParseInt(parts[1], 10, 64)
	}
	if parts[0] != "auth" && r.Header.Get("Authorization") != "Bearer tok-1" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
		return
	}

	switch {
	case r.URL.Path == "/auth/login":
		_ = r.ParseForm()
		s.forms["username"] = r.PostForm.Get("username")
		s.forms["password"] = r.PostForm.Get("password")
		if r.PostForm.Get("password") != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
			return
		}
		writeJSON(w, http.StatusOK, api.LoginResponse{AccessToken: "tok-1", TokenType: "bearer"})
	case r.URL.Path == "/auth/register":
		var in api.RegisterInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Username == "taken" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Username already registered"})
			return
		}
		writeJSON(w, http.StatusOK, api.User{ID: 9, Username: in.Username, Email: in.Email})
	case r.URL.Path == "/auth/logout":
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})

	case parts[0] == "folders" && len(parts) == 1 && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, s.folders)
	case parts[0] == "folders" && len(parts) == 1 && r.Method == http.MethodPost:
		var in api.CreateFolderInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		s.nextID++
		f := api.Folder{ID: s.nextID, Name: in.Name, ParentID: in.ParentID}
		s.folders = append(s.folders, f)
		writeJSON(w, http.StatusCreated, f)
	case parts[0] == "folders" && r.Method == http.MethodPut:
		var in api.UpdateFolderInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		for i := range s.folders {
			if s.folders[i].ID == id {
				if in.Name != nil {
					s.folders[i].Name = *in.Name
				}
				writeJSON(w, http.StatusOK, s.folders[i])
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Folder not found"})
	case parts[0] == "folders" && r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)

	case parts[0] == "notes" && len(parts) == 1 && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, s.notes)
	case parts[0] == "notes" && len(parts) == 1 && r.Method == http.MethodPost:
		var in api.CreateNoteInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		s.nextID++
		n := api.Note{ID: s.nextID, Title: in.Title, IsEncrypted: in.IsEncrypted, Tags: in.Tags, FolderID: in.FolderID}
		s.notes = append(s.notes, n)
		writeJSON(w, http.StatusCreated, n)
	case parts[0] == "notes" && r.Method == http.MethodGet:
		for _, n := range s.notes {
			if n.ID == id {
				writeJSON(w, http.StatusOK, n)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Note not found"})
	case parts[0] == "notes" && r.Method == http.MethodPut:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		for i := range s.notes {
			if s.notes[i].ID != id {
				continue
			}
			if raw, ok := body["folder_id"]; ok {
				if v, isNum := raw.(float64); isNum {
					s.notes[i].FolderID = ref(int64(v))
				} else {
					s.notes[i].FolderID = nil
				}
			}
			writeJSON(w, http.StatusOK, s.notes[i])
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Note not found"})
	case parts[0] == "notes" && r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)

	case parts[0] == "files" && len(parts) == 1 && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, s.files)
	case parts[0] == "files" && len(parts) == 1 && r.Method == http.MethodPost:
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "missing file"})
			return
		}
		data, _ := io.ReadAll(file)
		s.uploads[header.Filename] = string(data)
		s.nextID++
		f := api.File{ID: s.nextID, Filename: header.Filename, Size: int64(len(data)), IsEncrypted: r.URL.Query().Get("is_encrypted") == "true"}
		writeJSON(w, http.StatusCreated, f)
	case parts[0] == "files" && r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
	}
}

func (s *fakeServer) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *fakeServer) note(id int64) api.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notes {
		if n.ID == id {
			return n
		}
	}
	return api.Note{}
}

func (s *fakeServer) upload(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads[name]
}

func (s *fakeServer) form(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forms[key]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// serve starts s and points a fresh HOME at it. When loggedIn is set the
// stored config already carries the server's token.
func serve(t *testing.T, s *fakeServer, loggedIn bool) string {
	t.Helper()
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	t.Setenv("HOME", t.TempDir())

	cfg := &config.Config{BaseURL: srv.URL}
	if loggedIn {
		cfg.Token = "tok-1"
		cfg.Username = "ada"
	}
	require.NoError(t, cfg.Save())
	return srv.URL
}

// run executes cmd with args and stdin, returning what it printed.
func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
