package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// --- Auth Methods ---

// Login exchanges credentials for a bearer token. It does not store the token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	data, _, err := c.send(ctx, http.MethodPost, "/auth/login", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), false)
	if err != nil {
		return nil, err
	}
	resp, err := decodeOne[LoginResponse](data)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("login response missing access_token")
	}
	return resp, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*User, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}
	data, _, err := c.send(ctx, http.MethodPost, "/auth/register", "application/json", bytes.NewReader(body), false)
	if err != nil {
		return nil, err
	}
	return decodeOne[User](data)
}

// Logout ends the server-side session for the current token.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.post(ctx, "/auth/logout", nil)
	return err
}
