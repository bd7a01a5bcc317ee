// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package client provides a Go client library for the claudeui REST API.
//
// Create a client pointing to a running server:
//
//	c := client.New("http://localhost:3001")
//
// Resources are reached through sub-clients:
//
//	projects, err := c.Projects.List(ctx)
//	active, err := c.Sessions.Active(ctx)
//	title, err := c.Summary.Generate(ctx, messages)
//
// API errors are returned as *APIError values carrying the server's error
// code and message. Chat and shell traffic use WebSockets and are not
// covered here.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a claudeui API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// Projects reads project storage and edits session titles.
	Projects *ProjectClient

	// Sessions lists and aborts running CLI commands.
	Sessions *SessionClient

	// Events reads the event history.
	Events *EventClient

	// Shells lists live terminal sessions.
	Shells *ShellClient

	// Summary generates session titles.
	Summary *SummaryClient
}

// Option configures a [Client].
type Option func(*Client)

// New creates a client for the server at baseURL. A trailing slash is
// removed. The default HTTP timeout is 30 seconds.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Projects = &ProjectClient{c: c}
	c.Sessions = &SessionClient{c: c}
	c.Events = &EventClient{c: c}
	c.Shells = &ShellClient{c: c}
	c.Summary = &SummaryClient{c: c}

	return c
}

// WithHTTPClient sets a custom HTTP client for making requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP client timeout for all requests.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// BaseURL returns the base URL of the API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// apiResponse is the standard API response envelope.
type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

// APIError represents an error response from the API.
//
// Codes include NOT_FOUND, BAD_REQUEST, SESSION_BUSY, STORAGE_ERROR and
// INTERNAL_ERROR.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`

	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// IsNotFound reports whether err is an API error with code NOT_FOUND.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Code == "NOT_FOUND"
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, nil)
}

func (c *Client) putJSON(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPut, path, bytes.NewReader(data))
}

func (c *Client) delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

// do performs an HTTP request and unwraps the response envelope.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (json.RawMessage, error) {
	status, respBody, err := c.send(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	return parseResponse(status, respBody)
}

// send performs an HTTP request and returns the raw response body.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func parseResponse(status int, body []byte) (json.RawMessage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		if status >= 400 {
			return nil, &APIError{Message: http.StatusText(status), StatusCode: status}
		}
		return nil, nil
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		if status >= 400 {
			return nil, fmt.Errorf("request failed with status %d: %s", status, string(body))
		}
		return body, nil
	}

	if apiResp.Error != nil {
		apiResp.Error.StatusCode = status
		return nil, apiResp.Error
	}
	if status >= 400 {
		return nil, &APIError{Message: http.StatusText(status), StatusCode: status}
	}

	return apiResp.Data, nil
}
