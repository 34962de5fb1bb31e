package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
)

// UploadFile streams r as a multipart upload named filename.
func (c *Client) UploadFile(ctx context.Context, filename string, r io.Reader, folderID *int64, encrypted bool) (*File, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	params := QueryParams{"is_encrypted": strconv.FormatBool(encrypted)}
	if folderID != nil {
		params["folder_id"] = strconv.FormatInt(*folderID, 10)
	}
	data, _, err := c.send(ctx, http.MethodPost, buildQuery("/files/", params), mw.FormDataContentType(), &buf, true)
	if err != nil {
		return nil, err
	}
	return decodeOne[File](data)
}

// ListFiles returns file metadata, optionally filtered by folder.
func (c *Client) ListFiles(ctx context.Context, folderID *int64) ([]File, error) {
	params := QueryParams{}
	if folderID != nil {
		params["folder_id"] = strconv.FormatInt(*folderID, 10)
	}
	data, err := c.get(ctx, buildQuery("/files/", params))
	if err != nil {
		return nil, err
	}
	return decodeList[File](data)
}

// DeleteFile deletes an uploaded file by id.
func (c *Client) DeleteFile(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/files/%d", id))
}
