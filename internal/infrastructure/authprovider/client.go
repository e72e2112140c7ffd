// Package authprovider talks to the external login provider that hands out
// session data in exchange for a one-time session id.
package authprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrRejected is returned when the provider does not accept the session id
var ErrRejected = errors.New("session id rejected by provider")

// SessionData is what the provider knows about the signed-in user
type SessionData struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Picture      *string `json:"picture"`
	SessionToken string  `json:"session_token"`
}

// Client fetches session data from the provider
type Client struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a new provider client for the session-data endpoint at url.
// A nil httpClient uses http.DefaultClient.
func NewClient(url string, timeout time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		url:        url,
		timeout:    timeout,
		httpClient: httpClient,
	}
}

// SessionData exchanges sessionID for the user's profile and a session token.
// A non-200 answer yields ErrRejected; any other error means the provider could not be reached.
func (c *Client) SessionData(ctx context.Context, sessionID string) (*SessionData, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrRejected, resp.Status)
	}

	var data SessionData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}
	if data.Email == "" || data.SessionToken == "" {
		return nil, fmt.Errorf("%w: incomplete session data", ErrRejected)
	}
	return &data, nil
}
