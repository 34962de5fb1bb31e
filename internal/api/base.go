package api

import "time"

// DefaultBaseURL is the single source of truth for the client API target.
const DefaultBaseURL = "http://localhost:8000"

// NewDefaultClient builds a client pointed at the default notes API URL.
func NewDefaultClient(token string, timeout ...time.Duration) *Client {
	return NewClient(DefaultBaseURL, token, timeout...)
}
