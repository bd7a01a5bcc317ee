// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// SessionClient manages running CLI commands.
type SessionClient struct {
	c *Client
}

// Active returns the IDs of sessions with a running command, sorted.
func (s *SessionClient) Active(ctx context.Context) ([]string, error) {
	data, err := s.c.get(ctx, "/api/sessions/active")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Sessions []string `json:"sessions"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse active sessions: %w", err)
	}
	return resp.Sessions, nil
}

// Abort terminates the command running for sessionID. It reports false
// when no command was running.
func (s *SessionClient) Abort(ctx context.Context, sessionID string) (bool, error) {
	data, err := s.c.post(ctx, "/api/sessions/"+url.PathEscape(sessionID)+"/abort")
	if err != nil {
		return false, err
	}

	var resp struct {
		Aborted bool `json:"aborted"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return false, fmt.Errorf("failed to parse abort result: %w", err)
	}
	return resp.Aborted, nil
}
