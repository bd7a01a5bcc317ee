// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// ProjectClient reads project storage.
//
// Project names are the encoded directory names returned by [ProjectClient.List].
type ProjectClient struct {
	c *Client
}

// List returns every project, most recently active first.
func (p *ProjectClient) List(ctx context.Context) ([]Project, error) {
	data, err := p.c.get(ctx, "/api/projects")
	if err != nil {
		return nil, err
	}

	var projects []Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("failed to parse projects: %w", err)
	}
	return projects, nil
}

// Sessions returns the sessions stored for a project.
func (p *ProjectClient) Sessions(ctx context.Context, project string) ([]Session, error) {
	data, err := p.c.get(ctx, projectPath(project)+"/sessions")
	if err != nil {
		return nil, err
	}

	var sessions []Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("failed to parse sessions: %w", err)
	}
	return sessions, nil
}

// Messages returns the conversation of one session in log order.
func (p *ProjectClient) Messages(ctx context.Context, project, sessionID string) ([]Message, error) {
	data, err := p.c.get(ctx, sessionPath(project, sessionID)+"/messages")
	if err != nil {
		return nil, err
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}
	return messages, nil
}

// Rename sets a manual title. Automatic titling will not replace it until
// [ProjectClient.Unlock] is called.
func (p *ProjectClient) Rename(ctx context.Context, project, sessionID, title string) (*TitleState, error) {
	data, err := p.c.putJSON(ctx, sessionPath(project, sessionID)+"/summary", map[string]string{"summary": title})
	if err != nil {
		return nil, err
	}
	return parseTitleState(data)
}

// Unlock clears the manual title flag.
func (p *ProjectClient) Unlock(ctx context.Context, project, sessionID string) (*TitleState, error) {
	data, err := p.c.delete(ctx, sessionPath(project, sessionID)+"/summary/lock")
	if err != nil {
		return nil, err
	}
	return parseTitleState(data)
}

// Delete removes a stored session. Deleting a session whose command is
// still running fails with SESSION_BUSY.
func (p *ProjectClient) Delete(ctx context.Context, project, sessionID string) error {
	_, err := p.c.delete(ctx, sessionPath(project, sessionID))
	return err
}

func parseTitleState(data []byte) (*TitleState, error) {
	var state TitleState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse title state: %w", err)
	}
	return &state, nil
}

func projectPath(project string) string {
	return "/api/projects/" + url.PathEscape(project)
}

func sessionPath(project, sessionID string) string {
	return projectPath(project) + "/sessions/" + url.PathEscape(sessionID)
}
