package workspace

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyName is returned when a folder name is blank after trimming.
	// The operation is abandoned before any remote call.
	ErrEmptyName = errors.New("name must not be empty")

	// ErrConfirmationRequired is returned when deleting a non-empty folder
	// without the recursive flag.
	ErrConfirmationRequired = errors.New("folder is not empty: recursive delete must be confirmed")

	ErrNotFound = errors.New("not found")
	ErrNotReady = errors.New("workspace not loaded")
)

// UnsavedChangesError reports notes with edits that have not been persisted.
type UnsavedChangesError struct {
	NoteIDs []int64
}

func (e *UnsavedChangesError) Error() string {
	if len(e.NoteIDs) == 1 {
		return "1 note has unsaved changes"
	}
	return fmt.Sprintf("%d notes have unsaved changes", len(e.NoteIDs))
}

// Messages placed in the workspace error slot.
const (
	msgLoadFailed         = "Failed to load workspace"
	msgRefreshFailed      = "Failed to refresh note"
	msgUpdateNoteFailed   = "Failed to update note"
	msgCreateNoteFailed   = "Failed to create note"
	msgDeleteNoteFailed   = "Failed to delete note"
	msgMoveNoteFailed     = "Failed to move note"
	msgCreateFolderFailed = "Failed to create folder"
	msgRenameFolderFailed = "Failed to rename folder"
	msgDeleteFolderFailed = "Failed to delete folder"
	msgUploadFailed       = "Failed to upload file"
)
