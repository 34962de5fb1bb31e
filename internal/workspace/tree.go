package workspace

import (
	"sort"
	"strings"
)

// RowKind distinguishes the rows of the flattened folder tree.
type RowKind int

const (
	RowFolder RowKind = iota
	RowNote
	// RowBucket is the virtual root holding notes without a folder.
	RowBucket
)

// TreeRow is one visible line of the sidebar tree.
type TreeRow struct {
	Kind     RowKind
	ID       int64
	Label    string
	Depth    int
	Expanded bool
	Active   bool
	// HasChildren is set for folders with child folders or notes.
	HasChildren bool
	Status      SaveStatus
	// Folder is the row itself for folders and the containing folder for
	// notes. Nil means the root.
	Folder *int64
}

// Target returns the folder a context menu opened on this row applies to.
// Note rows target their containing folder, the bucket targets the root.
func (r TreeRow) Target() *int64 {
	return cloneRef(r.Folder)
}

// treeView holds the inputs needed to flatten the tree.
type treeView struct {
	store        *Store
	expanded     map[int64]bool
	activeFolder *int64
	activeNote   *int64
	status       func(id int64) SaveStatus
}

// rows flattens the tree: root folders depth first, expanded folders list
// child folders before their notes, and the bucket of root notes comes last.
func (v treeView) rows() []TreeRow {
	var out []TreeRow
	seen := make(map[int64]bool)

	var walk func(id int64, label string, depth int)
	walk = func(id int64, label string, depth int) {
		if seen[id] {
			return
		}
		seen[id] = true
		open := v.expanded[id]
		out = append(out, TreeRow{
			Kind:        RowFolder,
			ID:          id,
			Label:       displayName(label),
			Depth:       depth,
			Expanded:    open,
			Active:      v.activeFolder != nil && *v.activeFolder == id,
			HasChildren: v.store.HasContents(id),
			Folder:      cloneRef(&id),
		})
		if !open {
			return
		}
		ref := id
		for _, child := range v.store.ChildFolders(&ref) {
			walk(child.ID, child.Name, depth+1)
		}
		for _, n := range v.store.NotesIn(&ref) {
			out = append(out, v.noteRow(n.ID, n.Title, depth+1, &ref))
		}
	}

	for _, f := range v.store.RootFolders() {
		walk(f.ID, f.Name, 0)
	}

	out = append(out, TreeRow{
		Kind:     RowBucket,
		Label:    UncategorizedLabel,
		Expanded: true,
		Active:   v.activeFolder == nil,
	})
	for _, n := range v.store.NotesIn(nil) {
		out = append(out, v.noteRow(n.ID, n.Title, 1, nil))
	}
	return out
}

func (v treeView) noteRow(id int64, title string, depth int, folder *int64) TreeRow {
	row := TreeRow{
		Kind:   RowNote,
		ID:     id,
		Label:  DisplayTitle(title),
		Depth:  depth,
		Active: v.activeNote != nil && *v.activeNote == id,
		Folder: cloneRef(folder),
	}
	if v.status != nil {
		row.Status = v.status(id)
	}
	return row
}

// DisplayTitle returns the label shown for a note title.
func DisplayTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "Untitled"
	}
	return title
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(unnamed)"
	}
	return name
}

// MenuAction is an entry of the folder tree context menu.
type MenuAction string

const (
	ActionNewFolder MenuAction = "New folder"
	ActionNewNote   MenuAction = "New note"
	ActionRename    MenuAction = "Rename"
	ActionDelete    MenuAction = "Delete"
)

// ContextMenu is the single transient menu of the folder tree.
type ContextMenu struct {
	Open   bool   `json:"open"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Target *int64 `json:"target"`
}

// Actions lists the entries offered for the menu's target. Rename and
// delete apply only to real folders.
func (m ContextMenu) Actions() []MenuAction {
	if !m.Open {
		return nil
	}
	actions := []MenuAction{ActionNewFolder, ActionNewNote}
	if m.Target != nil {
		actions = append(actions, ActionRename, ActionDelete)
	}
	return actions
}

func sortedKeys(m map[int64]bool) []int64 {
	out := make([]int64, 0, len(m))
	for id, on := range m {
		if on {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
