package workspace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gravitrone/quill/internal/api"
)

// Field is a bit set of note fields.
type Field uint8

const (
	FieldTitle Field = 1 << iota
	FieldContent
	FieldEncrypted
	FieldTags
)

func (f Field) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, it := range []struct {
		bit  Field
		name string
	}{
		{FieldTitle, "title"},
		{FieldContent, "content"},
		{FieldEncrypted, "is_encrypted"},
		{FieldTags, "tags"},
	} {
		if f&it.bit != 0 {
			parts = append(parts, it.name)
		}
	}
	return strings.Join(parts, "|")
}

// SaveStatus is the visible save state of one note.
type SaveStatus int

const (
	StatusNone SaveStatus = iota
	StatusEditing
	StatusSaving
	StatusSaved
	StatusError
)

// String returns the status chip label.
func (s SaveStatus) String() string {
	switch s {
	case StatusEditing:
		return "Editing..."
	case StatusSaving:
		return "Saving..."
	case StatusSaved:
		return "Saved"
	case StatusError:
		return "Error saving"
	default:
		return ""
	}
}

func (s SaveStatus) MarshalText() ([]byte, error) {
	switch s {
	case StatusNone:
		return []byte("none"), nil
	case StatusEditing:
		return []byte("editing"), nil
	case StatusSaving:
		return []byte("saving"), nil
	case StatusSaved:
		return []byte("saved"), nil
	case StatusError:
		return []byte("error"), nil
	}
	return nil, fmt.Errorf("unknown save status %d", int(s))
}

// noteSync is the autosave state of one note.
type noteSync struct {
	status  SaveStatus
	pending bool
	// dirty holds fields edited since the last request was sent.
	dirty Field
	// gen increments on every local edit.
	gen uint64
	// flushing marks an outstanding request issued by the debounce path.
	flushing bool
	// deferred marks a debounce expiry that arrived while flushing.
	deferred bool
	// seq numbers requests in issue order. settled is the newest request
	// whose reply has been applied; older replies are dropped.
	seq     uint64
	settled uint64
	// inflight holds the fields of requests still awaiting a reply. Every
	// new request carries them, so a newer reply covers all older ones.
	inflight Field
}

type saveRequest struct {
	id       int64
	gen      uint64
	seq      uint64
	fields   Field
	input    api.UpdateNoteInput
	debounce bool
}

// EditNote applies delta locally and schedules a debounced save. Edits
// arriving within the quiet period collapse into one request carrying
// every field touched since the last save.
func (w *Workspace) EditNote(id int64, delta NoteDelta) (api.Note, error) {
	w.mu.Lock()
	if err := w.usableLocked(); err != nil {
		w.mu.Unlock()
		return api.Note{}, err
	}
	n, ok := w.store.ApplyNoteEdit(id, delta)
	if !ok {
		w.mu.Unlock()
		return api.Note{}, fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	st := w.syncFor(id)
	st.status = StatusEditing
	st.pending = true
	st.dirty |= delta.Fields()
	st.gen++
	w.clears.Cancel(id)
	w.scheduleFlush(id, w.debounce)
	w.mu.Unlock()

	w.notify()
	return n, nil
}

// SaveNote persists a note now with its full title and content. Any
// debounce timer for the note is cancelled first so the manual request is
// never followed by a duplicate flush of the same edits.
func (w *Workspace) SaveNote(ctx context.Context, id int64) error {
	w.mu.Lock()
	if err := w.usableLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if _, ok := w.store.Note(id); !ok {
		w.mu.Unlock()
		return fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	w.debouncer.Cancel(id)
	req := w.beginSave(id, w.syncFor(id), true)
	w.mu.Unlock()
	w.notify()

	return w.runSave(ctx, req)
}

// SaveAllPending cancels every debounce timer and saves all notes with
// pending changes concurrently. It returns the number of requests issued
// and the first failure, after every request has completed.
func (w *Workspace) SaveAllPending(ctx context.Context) (int, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return 0, ErrNotReady
	}
	w.debouncer.CancelAll()
	var reqs []saveRequest
	for _, id := range w.store.NoteIDs() {
		st, ok := w.sync[id]
		if !ok || !st.pending {
			continue
		}
		reqs = append(reqs, w.beginSave(id, st, true))
	}
	w.mu.Unlock()

	if len(reqs) == 0 {
		return 0, nil
	}
	w.notify()
	w.log.WithField("notes", len(reqs)).Info("saving pending notes")

	var g errgroup.Group
	for _, req := range reqs {
		req := req
		g.Go(func() error {
			return w.runSave(ctx, req)
		})
	}
	return len(reqs), g.Wait()
}

// HasPending reports whether any note has unsaved changes.
func (w *Workspace) HasPending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, st := range w.sync {
		if st.pending {
			return true
		}
	}
	return false
}

// PendingIDs returns the notes with unsaved changes in store order.
func (w *Workspace) PendingIDs() []int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pendingIDsLocked()
}

func (w *Workspace) pendingIDsLocked() []int64 {
	var out []int64
	for _, id := range w.store.NoteIDs() {
		if st, ok := w.sync[id]; ok && st.pending {
			out = append(out, id)
		}
	}
	return out
}

// GuardExit returns an *UnsavedChangesError when leaving now would lose
// edits. Callers decide whether to warn, save or discard.
func (w *Workspace) GuardExit() error {
	if ids := w.PendingIDs(); len(ids) > 0 {
		return &UnsavedChangesError{NoteIDs: ids}
	}
	return nil
}

// Status returns the save status of a note.
func (w *Workspace) Status(id int64) SaveStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.statusLocked(id)
}

func (w *Workspace) statusLocked(id int64) SaveStatus {
	if st, ok := w.sync[id]; ok {
		return st.status
	}
	return StatusNone
}

// Pending reports whether a note has unsaved changes.
func (w *Workspace) Pending(id int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.sync[id]
	return ok && st.pending
}

// --- internals, callers hold w.mu unless noted ---

func (w *Workspace) syncFor(id int64) *noteSync {
	st, ok := w.sync[id]
	if !ok {
		st = &noteSync{}
		w.sync[id] = st
	}
	return st
}

func (w *Workspace) scheduleFlush(id int64, delay time.Duration) {
	w.debouncer.Schedule(id, delay, func(token uint64) {
		w.flush(id, token)
	})
}

// flush runs on the scheduler when a debounce period expires. It does not
// hold w.mu on entry.
func (w *Workspace) flush(id int64, token uint64) {
	if !w.debouncer.Claim(id, token) {
		return
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	st, ok := w.sync[id]
	if !ok || !st.pending || w.debouncer.Pending(id) {
		w.mu.Unlock()
		return
	}
	if st.flushing {
		st.deferred = true
		w.mu.Unlock()
		return
	}
	req := w.beginSave(id, st, false)
	req.debounce = true
	st.flushing = true
	ctx := w.ctx
	w.mu.Unlock()
	w.notify()

	_ = w.runSave(ctx, req)
}

// beginSave moves a note to Saving and builds its request from the stored
// values. The dirty set is handed to the request and restored on failure.
func (w *Workspace) beginSave(id int64, st *noteSync, full bool) saveRequest {
	n, _ := w.store.Note(id)
	fields := st.dirty | st.inflight
	if full || fields == 0 {
		fields |= FieldTitle | FieldContent
	}
	st.dirty = 0
	st.inflight = fields
	st.seq++
	st.status = StatusSaving
	return saveRequest{
		id:     id,
		gen:    st.gen,
		seq:    st.seq,
		fields: fields,
		input:  updateInput(n, fields),
	}
}

// runSave performs the remote call and reconciles the result. It must be
// called without w.mu.
func (w *Workspace) runSave(ctx context.Context, req saveRequest) error {
	log := w.log.WithFields(logrus.Fields{"note_id": req.id, "fields": req.fields.String()})
	log.Debug("saving note")

	saved, err := w.remote.UpdateNote(ctx, req.id, req.input)

	w.mu.Lock()
	defer w.notify()
	defer w.mu.Unlock()

	st, ok := w.sync[req.id]
	if !ok || w.closed {
		// The note was deleted or the workspace closed while the request was
		// in flight. The reply must not resurrect it.
		log.Debug("discarding save reply")
		if err != nil {
			return fmt.Errorf("update note %d: %w", req.id, err)
		}
		return nil
	}
	if req.debounce {
		st.flushing = false
	}
	if req.seq < st.settled {
		// A newer request already answered and carried these fields.
		log.Debug("dropping stale save reply")
		if st.deferred {
			st.deferred = false
			if st.pending {
				w.scheduleFlush(req.id, 0)
			}
		}
		return nil
	}
	st.settled = req.seq
	latest := req.seq == st.seq
	if latest {
		st.inflight = 0
	}

	if err != nil {
		st.status = StatusError
		st.pending = true
		st.dirty |= req.fields
		w.errMsg = msgUpdateNoteFailed
		log.WithError(err).Warn("save failed")
		// A failed request is not retried. An edit made while it was in
		// flight still gets the flush it was waiting for.
		if st.deferred && st.gen != req.gen {
			w.scheduleFlush(req.id, 0)
		}
		st.deferred = false
		return fmt.Errorf("update note %d: %w", req.id, err)
	}

	if st.gen == req.gen {
		// No edit since this request was built, so it carried every field an
		// older failure put back.
		st.dirty = 0
	}
	switch {
	case saved == nil:
		// Nothing to reconcile against; keep the local values.
	case st.gen == req.gen:
		w.store.ReplaceNote(*saved)
	default:
		// Newer local edits win over the reply for the fields they touched.
		local, _ := w.store.Note(req.id)
		w.store.ReplaceNote(overlay(*saved, local, st.dirty))
	}
	switch {
	case st.gen == req.gen && st.dirty == 0:
		st.pending = false
		st.status = StatusSaved
		w.scheduleClear(req.id)
		log.Debug("note saved")
	case latest:
		// Edits made after this request was sent are still unsaved.
		st.status = StatusEditing
	}

	if st.deferred {
		st.deferred = false
		if st.pending {
			w.scheduleFlush(req.id, 0)
		}
	}
	return nil
}

// scheduleClear drops the Saved chip after the display delay unless a newer
// state replaced it.
func (w *Workspace) scheduleClear(id int64) {
	w.clears.Schedule(id, w.savedDisplay, func(token uint64) {
		if !w.clears.Claim(id, token) {
			return
		}
		w.mu.Lock()
		st, ok := w.sync[id]
		changed := ok && st.status == StatusSaved
		if changed {
			st.status = StatusNone
		}
		w.mu.Unlock()
		if changed {
			w.notify()
		}
	})
}

func updateInput(n api.Note, fields Field) api.UpdateNoteInput {
	var in api.UpdateNoteInput
	if fields&FieldTitle != 0 {
		title := n.Title
		in.Title = &title
	}
	if fields&FieldContent != 0 {
		content := n.Content
		in.Content = &content
	}
	if fields&FieldEncrypted != 0 {
		enc := n.IsEncrypted
		in.IsEncrypted = &enc
	}
	if fields&FieldTags != 0 {
		tags := append([]string{}, n.Tags...)
		in.Tags = &tags
	}
	return in
}

func overlay(base, local api.Note, fields Field) api.Note {
	out := cloneNote(base)
	if fields&FieldTitle != 0 {
		out.Title = local.Title
	}
	if fields&FieldContent != 0 {
		out.Content = local.Content
	}
	if fields&FieldEncrypted != 0 {
		out.IsEncrypted = local.IsEncrypted
	}
	if fields&FieldTags != 0 {
		out.Tags = append([]string(nil), local.Tags...)
	}
	return out
}
