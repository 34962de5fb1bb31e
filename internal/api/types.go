package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp decodes the API's timestamps, which may omit the zone offset.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("parse timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// --- Note ---

// Note is a single user note. Content is opaque and usually ciphertext.
type Note struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	IsEncrypted bool       `json:"is_encrypted"`
	Tags        []string   `json:"tags"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   *Timestamp `json:"updated_at"`
	UserID      int64      `json:"user_id"`
	FolderID    *int64     `json:"folder_id"`
}

// LastTouched returns updated_at when set, else created_at.
func (n Note) LastTouched() time.Time {
	if n.UpdatedAt != nil && !n.UpdatedAt.IsZero() {
		return n.UpdatedAt.Time
	}
	return n.CreatedAt.Time
}

// CreateNoteInput defines the fields required to create a new note.
type CreateNoteInput struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	IsEncrypted bool     `json:"is_encrypted"`
	Tags        []string `json:"tags"`
	FolderID    *int64   `json:"folder_id"`
}

// UpdateNoteInput defines the fields for a partial note update.
type UpdateNoteInput struct {
	Title       *string   `json:"title,omitempty"`
	Content     *string   `json:"content,omitempty"`
	IsEncrypted *bool     `json:"is_encrypted,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// Empty reports whether no field is set.
func (in UpdateNoteInput) Empty() bool {
	return in.Title == nil && in.Content == nil && in.IsEncrypted == nil && in.Tags == nil
}

// moveNoteInput always serializes folder_id so that null moves to the root.
type moveNoteInput struct {
	FolderID *int64 `json:"folder_id"`
}

// --- Folder ---

// Folder is a node in the user's folder forest. A nil ParentID is the root.
type Folder struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	ParentID  *int64     `json:"parent_id"`
	UserID    int64      `json:"user_id"`
	CreatedAt Timestamp  `json:"created_at"`
	UpdatedAt *Timestamp `json:"updated_at"`
}

// CreateFolderInput defines the fields required to create a folder.
type CreateFolderInput struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

// UpdateFolderInput defines the fields for renaming or reparenting a folder.
type UpdateFolderInput struct {
	Name     *string `json:"name,omitempty"`
	ParentID *int64  `json:"parent_id,omitempty"`
}

// --- File ---

// File is an uploaded attachment's metadata.
type File struct {
	ID          int64      `json:"id"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"content_type"`
	Size        int64      `json:"size"`
	IsEncrypted bool       `json:"is_encrypted"`
	FolderID    *int64     `json:"folder_id"`
	UserID      int64      `json:"user_id"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   *Timestamp `json:"updated_at"`
}

// --- Auth ---

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterInput defines the fields required to create an account.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the account returned by registration.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// QueryParams is a map of URL query parameters.
type QueryParams map[string]string
