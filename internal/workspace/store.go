package workspace

import (
	"sort"

	"github.com/gravitrone/quill/internal/api"
)

// rootKey is the index key for a nil parent or folder reference.
// Server-assigned ids start at 1.
const rootKey int64 = 0

func keyOf(ref *int64) int64 {
	if ref == nil {
		return rootKey
	}
	return *ref
}

// NoteDelta is a partial set of note fields. Nil fields are left unchanged.
type NoteDelta struct {
	Title       *string
	Content     *string
	IsEncrypted *bool
	Tags        *[]string
}

// Fields returns which fields the delta sets.
func (d NoteDelta) Fields() Field {
	var f Field
	if d.Title != nil {
		f |= FieldTitle
	}
	if d.Content != nil {
		f |= FieldContent
	}
	if d.IsEncrypted != nil {
		f |= FieldEncrypted
	}
	if d.Tags != nil {
		f |= FieldTags
	}
	return f
}

// TitleDelta sets only the title.
func TitleDelta(title string) NoteDelta { return NoteDelta{Title: &title} }

// ContentDelta sets only the content.
func ContentDelta(content string) NoteDelta { return NoteDelta{Content: &content} }

type noteEntry struct {
	note api.Note
	seq  uint64
}

type folderEntry struct {
	folder api.Folder
	seq    uint64
}

// Store is the in-memory set of notes and folders for one session.
// Iteration follows insertion order. Store is not safe for concurrent use;
// Workspace serializes access to it.
type Store struct {
	seq     uint64
	notes   map[int64]*noteEntry
	folders map[int64]*folderEntry

	noteOrder   []int64
	folderOrder []int64

	// parent key -> child folder ids, kept in insertion order
	childFolders map[int64][]int64
	// folder key -> note ids, kept in insertion order
	folderNotes map[int64][]int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.notes = make(map[int64]*noteEntry)
	s.folders = make(map[int64]*folderEntry)
	s.noteOrder = nil
	s.folderOrder = nil
	s.childFolders = make(map[int64][]int64)
	s.folderNotes = make(map[int64][]int64)
}

// Load replaces the store contents with the fetched collections.
func (s *Store) Load(folders []api.Folder, notes []api.Note) {
	s.reset()
	for _, f := range folders {
		s.InsertFolder(f)
	}
	for _, n := range notes {
		s.InsertNote(n)
	}
}

// --- Notes ---

// Note returns a copy of the note with id.
func (s *Store) Note(id int64) (api.Note, bool) {
	e, ok := s.notes[id]
	if !ok {
		return api.Note{}, false
	}
	return cloneNote(e.note), true
}

// Notes returns every note in store order.
func (s *Store) Notes() []api.Note {
	out := make([]api.Note, 0, len(s.noteOrder))
	for _, id := range s.noteOrder {
		out = append(out, cloneNote(s.notes[id].note))
	}
	return out
}

// NoteIDs returns every note id in store order.
func (s *Store) NoteIDs() []int64 {
	return append([]int64(nil), s.noteOrder...)
}

// NoteCount returns the number of notes.
func (s *Store) NoteCount() int {
	return len(s.notes)
}

// InsertNote adds a note, or replaces it if the id is already present.
func (s *Store) InsertNote(n api.Note) {
	if _, ok := s.notes[n.ID]; ok {
		s.ReplaceNote(n)
		return
	}
	s.seq++
	s.notes[n.ID] = &noteEntry{note: cloneNote(n), seq: s.seq}
	s.noteOrder = append(s.noteOrder, n.ID)
	key := keyOf(n.FolderID)
	s.folderNotes[key] = s.insertNoteID(s.folderNotes[key], n.ID)
}

// ReplaceNote overwrites an existing note, keeping its position.
// It reports false, and inserts nothing, when the id is unknown.
func (s *Store) ReplaceNote(n api.Note) bool {
	e, ok := s.notes[n.ID]
	if !ok {
		return false
	}
	oldKey := keyOf(e.note.FolderID)
	e.note = cloneNote(n)
	if newKey := keyOf(n.FolderID); newKey != oldKey {
		s.folderNotes[oldKey] = removeID(s.folderNotes[oldKey], n.ID)
		s.folderNotes[newKey] = s.insertNoteID(s.folderNotes[newKey], n.ID)
	}
	return true
}

// ApplyNoteEdit merges delta into the note with id and returns the result.
// Unknown ids are ignored.
func (s *Store) ApplyNoteEdit(id int64, delta NoteDelta) (api.Note, bool) {
	e, ok := s.notes[id]
	if !ok {
		return api.Note{}, false
	}
	if delta.Title != nil {
		e.note.Title = *delta.Title
	}
	if delta.Content != nil {
		e.note.Content = *delta.Content
	}
	if delta.IsEncrypted != nil {
		e.note.IsEncrypted = *delta.IsEncrypted
	}
	if delta.Tags != nil {
		e.note.Tags = append([]string(nil), (*delta.Tags)...)
	}
	return cloneNote(e.note), true
}

// SetNoteFolder changes the folder reference of a note.
func (s *Store) SetNoteFolder(id int64, folderID *int64) (api.Note, bool) {
	e, ok := s.notes[id]
	if !ok {
		return api.Note{}, false
	}
	n := cloneNote(e.note)
	n.FolderID = cloneRef(folderID)
	s.ReplaceNote(n)
	return cloneNote(n), true
}

// RemoveNote deletes a note. It reports whether the id was present.
func (s *Store) RemoveNote(id int64) bool {
	e, ok := s.notes[id]
	if !ok {
		return false
	}
	key := keyOf(e.note.FolderID)
	s.folderNotes[key] = removeID(s.folderNotes[key], id)
	delete(s.notes, id)
	s.noteOrder = removeID(s.noteOrder, id)
	return true
}

// NotesIn returns the notes whose folder reference equals folderID.
func (s *Store) NotesIn(folderID *int64) []api.Note {
	ids := s.folderNotes[keyOf(folderID)]
	out := make([]api.Note, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneNote(s.notes[id].note))
	}
	return out
}

// --- Folders ---

// Folder returns a copy of the folder with id.
func (s *Store) Folder(id int64) (api.Folder, bool) {
	e, ok := s.folders[id]
	if !ok {
		return api.Folder{}, false
	}
	return cloneFolder(e.folder), true
}

// Folders returns every folder in store order.
func (s *Store) Folders() []api.Folder {
	out := make([]api.Folder, 0, len(s.folderOrder))
	for _, id := range s.folderOrder {
		out = append(out, cloneFolder(s.folders[id].folder))
	}
	return out
}

// InsertFolder adds a folder, or replaces it if the id is already present.
func (s *Store) InsertFolder(f api.Folder) {
	if _, ok := s.folders[f.ID]; ok {
		s.ReplaceFolder(f)
		return
	}
	s.seq++
	s.folders[f.ID] = &folderEntry{folder: cloneFolder(f), seq: s.seq}
	s.folderOrder = append(s.folderOrder, f.ID)
	key := keyOf(f.ParentID)
	s.childFolders[key] = s.insertFolderID(s.childFolders[key], f.ID)
}

// ReplaceFolder overwrites an existing folder, keeping its position.
func (s *Store) ReplaceFolder(f api.Folder) bool {
	e, ok := s.folders[f.ID]
	if !ok {
		return false
	}
	oldKey := keyOf(e.folder.ParentID)
	e.folder = cloneFolder(f)
	if newKey := keyOf(f.ParentID); newKey != oldKey {
		s.childFolders[oldKey] = removeID(s.childFolders[oldKey], f.ID)
		s.childFolders[newKey] = s.insertFolderID(s.childFolders[newKey], f.ID)
	}
	return true
}

// RemoveFolder deletes a single folder. Children are not touched.
func (s *Store) RemoveFolder(id int64) bool {
	e, ok := s.folders[id]
	if !ok {
		return false
	}
	key := keyOf(e.folder.ParentID)
	s.childFolders[key] = removeID(s.childFolders[key], id)
	delete(s.folders, id)
	s.folderOrder = removeID(s.folderOrder, id)
	return true
}

// ChildFolders returns folders whose parent reference equals parentID.
func (s *Store) ChildFolders(parentID *int64) []api.Folder {
	ids := s.childFolders[keyOf(parentID)]
	out := make([]api.Folder, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneFolder(s.folders[id].folder))
	}
	return out
}

// RootFolders returns folders with no parent, plus folders whose parent does
// not exist. The latter are a data-integrity problem shown at the root.
func (s *Store) RootFolders() []api.Folder {
	out := make([]api.Folder, 0)
	for _, id := range s.folderOrder {
		f := s.folders[id].folder
		if f.ParentID == nil {
			out = append(out, cloneFolder(f))
			continue
		}
		if _, ok := s.folders[*f.ParentID]; !ok {
			out = append(out, cloneFolder(f))
		}
	}
	return out
}

// HasContents reports whether a folder has child folders or notes.
func (s *Store) HasContents(id int64) bool {
	return len(s.childFolders[id]) > 0 || len(s.folderNotes[id]) > 0
}

// Subtree returns id followed by all of its descendant folder ids.
// Cycles in the parent graph are not followed twice.
func (s *Store) Subtree(id int64) []int64 {
	if _, ok := s.folders[id]; !ok {
		return nil
	}
	seen := map[int64]bool{id: true}
	out := []int64{id}
	for i := 0; i < len(out); i++ {
		for _, child := range s.childFolders[out[i]] {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
		}
	}
	return out
}

// --- index helpers ---

func (s *Store) insertNoteID(ids []int64, id int64) []int64 {
	return insertBySeq(ids, id, func(x int64) uint64 { return s.notes[x].seq })
}

func (s *Store) insertFolderID(ids []int64, id int64) []int64 {
	return insertBySeq(ids, id, func(x int64) uint64 { return s.folders[x].seq })
}

func insertBySeq(ids []int64, id int64, seqOf func(int64) uint64) []int64 {
	seq := seqOf(id)
	i := sort.Search(len(ids), func(i int) bool { return seqOf(ids[i]) > seq })
	ids = append(ids, 0)
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}

func removeID(ids []int64, id int64) []int64 {
	for i, x := range ids {
		if x == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func cloneRef(ref *int64) *int64 {
	if ref == nil {
		return nil
	}
	v := *ref
	return &v
}

func cloneNote(n api.Note) api.Note {
	if n.Tags != nil {
		n.Tags = append([]string(nil), n.Tags...)
	}
	n.FolderID = cloneRef(n.FolderID)
	if n.UpdatedAt != nil {
		ts := *n.UpdatedAt
		n.UpdatedAt = &ts
	}
	return n
}

func cloneFolder(f api.Folder) api.Folder {
	f.ParentID = cloneRef(f.ParentID)
	if f.UpdatedAt != nil {
		ts := *f.UpdatedAt
		f.UpdatedAt = &ts
	}
	return f
}
