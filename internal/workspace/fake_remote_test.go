package workspace

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/gravitrone/quill/internal/api"
)

var errRemote = errors.New("remote unavailable")

type updateCall struct {
	ID    int64
	Input api.UpdateNoteInput
}

// fakeRemote is an in-memory Remote that records every call.
type fakeRemote struct {
	mu      sync.Mutex
	nextID  int64
	notes   []api.Note
	folders []api.Folder

	updates       []updateCall
	deletedNotes  []int64
	deletedFolder []int64
	recursive     []bool
	moves         map[int64]*int64
	created       []api.CreateNoteInput
	uploads       []string
	calls         int

	// failing makes the named operation return errRemote.
	failing map[string]bool
	// hold blocks UpdateNote until a value is received.
	hold chan struct{}
	// stall runs after the nth UpdateNote (counting from 1) is applied and
	// before it replies. A non-nil error replaces the reply.
	stall func(call int) error
	// afterGet runs inside GetNote before it replies.
	afterGet func()
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		nextID:  100,
		moves:   make(map[int64]*int64),
		failing: make(map[string]bool),
	}
}

func (f *fakeRemote) fail(op string) { f.mu.Lock(); f.failing[op] = true; f.mu.Unlock() }
func (f *fakeRemote) heal(op string) { f.mu.Lock(); delete(f.failing, op); f.mu.Unlock() }

func (f *fakeRemote) begin(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failing[op] {
		return errRemote
	}
	return nil
}

func (f *fakeRemote) updateCalls() []updateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]updateCall(nil), f.updates...)
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeRemote) ListNotes(ctx context.Context) ([]api.Note, error) {
	if err := f.begin("ListNotes"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]api.Note, len(f.notes))
	for i, n := range f.notes {
		out[i] = cloneNote(n)
	}
	return out, nil
}

func (f *fakeRemote) GetNote(ctx context.Context, id int64) (*api.Note, error) {
	if err := f.begin("GetNote"); err != nil {
		return nil, err
	}
	if f.afterGet != nil {
		f.afterGet()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notes {
		if n.ID == id {
			c := cloneNote(n)
			return &c, nil
		}
	}
	return nil, &api.Error{StatusCode: 404, Message: "Note not found"}
}

func (f *fakeRemote) CreateNote(ctx context.Context, input api.CreateNoteInput) (*api.Note, error) {
	if err := f.begin("CreateNote"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n := api.Note{
		ID:          f.nextID,
		Title:       input.Title,
		Content:     input.Content,
		IsEncrypted: input.IsEncrypted,
		Tags:        input.Tags,
		FolderID:    cloneRef(input.FolderID),
	}
	f.created = append(f.created, input)
	f.notes = append(f.notes, n)
	return &n, nil
}

func (f *fakeRemote) UpdateNote(ctx context.Context, id int64, input api.UpdateNoteInput) (*api.Note, error) {
	if f.hold != nil {
		select {
		case <-f.hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	f.updates = append(f.updates, updateCall{ID: id, Input: input})
	call, stall := len(f.updates), f.stall
	f.mu.Unlock()

	n, err := f.applyUpdate(id, input)
	if stall != nil {
		if serr := stall(call); serr != nil {
			return nil, serr
		}
	}
	return n, err
}

func (f *fakeRemote) applyUpdate(id int64, input api.UpdateNoteInput) (*api.Note, error) {
	if err := f.begin("UpdateNote"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notes {
		if f.notes[i].ID != id {
			continue
		}
		n := &f.notes[i]
		if input.Title != nil {
			n.Title = *input.Title
		}
		if input.Content != nil {
			n.Content = *input.Content
		}
		if input.IsEncrypted != nil {
			n.IsEncrypted = *input.IsEncrypted
		}
		if input.Tags != nil {
			n.Tags = append([]string(nil), (*input.Tags)...)
		}
		c := cloneNote(*n)
		return &c, nil
	}
	return nil, &api.Error{StatusCode: 404, Message: "Note not found"}
}

func (f *fakeRemote) MoveNote(ctx context.Context, id int64, folderID *int64) (*api.Note, error) {
	if err := f.begin("MoveNote"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves[id] = cloneRef(folderID)
	for i := range f.notes {
		if f.notes[i].ID == id {
			f.notes[i].FolderID = cloneRef(folderID)
			c := cloneNote(f.notes[i])
			return &c, nil
		}
	}
	return nil, &api.Error{StatusCode: 404, Message: "Note not found"}
}

func (f *fakeRemote) DeleteNote(ctx context.Context, id int64) error {
	if err := f.begin("DeleteNote"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedNotes = append(f.deletedNotes, id)
	return nil
}

func (f *fakeRemote) ListFolders(ctx context.Context, parentID *int64) ([]api.Folder, error) {
	if err := f.begin("ListFolders"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]api.Folder, len(f.folders))
	for i, fo := range f.folders {
		out[i] = cloneFolder(fo)
	}
	return out, nil
}

func (f *fakeRemote) CreateFolder(ctx context.Context, input api.CreateFolderInput) (*api.Folder, error) {
	if err := f.begin("CreateFolder"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	fo := api.Folder{ID: f.nextID, Name: input.Name, ParentID: cloneRef(input.ParentID)}
	f.folders = append(f.folders, fo)
	return &fo, nil
}

func (f *fakeRemote) UpdateFolder(ctx context.Context, id int64, input api.UpdateFolderInput) (*api.Folder, error) {
	if err := f.begin("UpdateFolder"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.folders {
		if f.folders[i].ID != id {
			continue
		}
		if input.Name != nil {
			f.folders[i].Name = *input.Name
		}
		if input.ParentID != nil {
			f.folders[i].ParentID = cloneRef(input.ParentID)
		}
		c := cloneFolder(f.folders[i])
		return &c, nil
	}
	return nil, &api.Error{StatusCode: 404, Message: "Folder not found"}
}

func (f *fakeRemote) DeleteFolder(ctx context.Context, id int64, recursive bool) error {
	if err := f.begin("DeleteFolder"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedFolder = append(f.deletedFolder, id)
	f.recursive = append(f.recursive, recursive)
	return nil
}

func (f *fakeRemote) UploadFile(ctx context.Context, filename string, r io.Reader, folderID *int64, encrypted bool) (*api.File, error) {
	if err := f.begin("UploadFile"); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.uploads = append(f.uploads, filename)
	return &api.File{
		ID:          f.nextID,
		Filename:    filename,
		Size:        int64(len(data)),
		IsEncrypted: encrypted,
		FolderID:    cloneRef(folderID),
	}, nil
}
