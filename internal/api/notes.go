package api

import (
	"context"
	"fmt"
)

// --- Note Methods ---

// ListNotes returns every note owned by the current user.
func (c *Client) ListNotes(ctx context.Context) ([]Note, error) {
	data, err := c.get(ctx, "/notes/")
	if err != nil {
		return nil, err
	}
	return decodeList[Note](data)
}

// GetNote retrieves a note by id.
func (c *Client) GetNote(ctx context.Context, id int64) (*Note, error) {
	data, err := c.get(ctx, fmt.Sprintf("/notes/%d", id))
	if err != nil {
		return nil, err
	}
	return decodeOne[Note](data)
}

// CreateNote creates a note. The server assigns id and timestamps.
func (c *Client) CreateNote(ctx context.Context, input CreateNoteInput) (*Note, error) {
	if input.Tags == nil {
		input.Tags = []string{}
	}
	data, err := c.post(ctx, "/notes/", input)
	if err != nil {
		return nil, err
	}
	return decodeOne[Note](data)
}

// UpdateNote applies a partial update and returns the full note.
func (c *Client) UpdateNote(ctx context.Context, id int64, input UpdateNoteInput) (*Note, error) {
	data, err := c.put(ctx, fmt.Sprintf("/notes/%d", id), input)
	if err != nil {
		return nil, err
	}
	return decodeOne[Note](data)
}

// MoveNote changes a note's folder. A nil folderID moves it to the root.
func (c *Client) MoveNote(ctx context.Context, id int64, folderID *int64) (*Note, error) {
	data, err := c.put(ctx, fmt.Sprintf("/notes/%d", id), moveNoteInput{FolderID: folderID})
	if err != nil {
		return nil, err
	}
	return decodeOne[Note](data)
}

// DeleteNote deletes a note by id.
func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/notes/%d", id))
}
