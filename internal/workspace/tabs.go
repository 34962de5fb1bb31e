package workspace

// Tabs is the ordered set of open notes and the active selection.
//
// Tabs does not watch the store. A tab whose note was deleted stays open
// until someone closes it; Workspace closes tabs of notes it deletes and
// VisibleTabs skips any that still dangle.
type Tabs struct {
	open       []int64
	active     *int64
	activeNote *int64
}

// Open appends id if it is not open yet and focuses it. Reopening an open
// tab only refocuses it.
func (t *Tabs) Open(id int64) {
	if !t.Contains(id) {
		t.open = append(t.open, id)
	}
	t.focus(id)
}

// Activate focuses an already open tab. It reports false if id is not open.
func (t *Tabs) Activate(id int64) bool {
	if !t.Contains(id) {
		return false
	}
	t.focus(id)
	return true
}

// Close removes id. When the active tab closes, the left neighbour becomes
// active, or the first tab if the closed one was leftmost.
func (t *Tabs) Close(id int64) bool {
	idx := t.indexOf(id)
	if idx < 0 {
		return false
	}
	t.open = append(t.open[:idx], t.open[idx+1:]...)

	if t.active == nil || *t.active != id {
		return true
	}
	if len(t.open) == 0 {
		t.active = nil
		t.activeNote = nil
		return true
	}
	next := idx - 1
	if next < 0 {
		next = 0
	}
	if next > len(t.open)-1 {
		next = len(t.open) - 1
	}
	t.focus(t.open[next])
	return true
}

// Cycle moves focus delta tabs to the right, wrapping around.
func (t *Tabs) Cycle(delta int) (int64, bool) {
	if len(t.open) == 0 {
		return 0, false
	}
	idx := 0
	if t.active != nil {
		idx = t.indexOf(*t.active)
		if idx < 0 {
			idx = 0
		}
	}
	n := len(t.open)
	idx = ((idx+delta)%n + n) % n
	t.focus(t.open[idx])
	return t.open[idx], true
}

// IDs returns the open tab ids in order.
func (t *Tabs) IDs() []int64 {
	return append([]int64(nil), t.open...)
}

// Len returns the number of open tabs.
func (t *Tabs) Len() int {
	return len(t.open)
}

// Contains reports whether id is open.
func (t *Tabs) Contains(id int64) bool {
	return t.indexOf(id) >= 0
}

// Active returns the active tab.
func (t *Tabs) Active() (int64, bool) {
	if t.active == nil {
		return 0, false
	}
	return *t.active, true
}

// ActiveNote returns the note shown in the editor.
func (t *Tabs) ActiveNote() (int64, bool) {
	if t.activeNote == nil {
		return 0, false
	}
	return *t.activeNote, true
}

func (t *Tabs) focus(id int64) {
	t.active = &id
	note := id
	t.activeNote = &note
}

func (t *Tabs) indexOf(id int64) int {
	for i, x := range t.open {
		if x == id {
			return i
		}
	}
	return -1
}
