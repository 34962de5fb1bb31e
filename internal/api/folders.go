package api

import (
	"context"
	"fmt"
	"strconv"
)

// --- Folder Methods ---

// ListFolders returns the user's folders, optionally only children of parentID.
func (c *Client) ListFolders(ctx context.Context, parentID *int64) ([]Folder, error) {
	params := QueryParams{}
	if parentID != nil {
		params["parent_id"] = strconv.FormatInt(*parentID, 10)
	}
	data, err := c.get(ctx, buildQuery("/folders/", params))
	if err != nil {
		return nil, err
	}
	return decodeList[Folder](data)
}

// GetFolder retrieves a folder by id.
func (c *Client) GetFolder(ctx context.Context, id int64) (*Folder, error) {
	data, err := c.get(ctx, fmt.Sprintf("/folders/%d", id))
	if err != nil {
		return nil, err
	}
	return decodeOne[Folder](data)
}

// CreateFolder creates a folder under input.ParentID (nil for the root).
func (c *Client) CreateFolder(ctx context.Context, input CreateFolderInput) (*Folder, error) {
	data, err := c.post(ctx, "/folders/", input)
	if err != nil {
		return nil, err
	}
	return decodeOne[Folder](data)
}

// UpdateFolder renames or reparents a folder.
func (c *Client) UpdateFolder(ctx context.Context, id int64, input UpdateFolderInput) (*Folder, error) {
	data, err := c.put(ctx, fmt.Sprintf("/folders/%d", id), input)
	if err != nil {
		return nil, err
	}
	return decodeOne[Folder](data)
}

// DeleteFolder deletes a folder. Non-empty folders require recursive.
func (c *Client) DeleteFolder(ctx context.Context, id int64, recursive bool) error {
	path := buildQuery(fmt.Sprintf("/folders/%d", id), QueryParams{
		"recursive": strconv.FormatBool(recursive),
	})
	return c.del(ctx, path)
}
