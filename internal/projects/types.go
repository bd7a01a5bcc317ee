// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package projects reads and updates the CLI's on-disk session storage:
// one directory per project, one JSONL log per session.
package projects

import (
	"errors"
	"time"

	"github.com/wingedpig/claudeui/internal/protocol"
)

// ErrNotFound is returned when a project or session log does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidName is returned for project or session names that would
// escape the storage directory.
var ErrInvalidName = errors.New("invalid name")

// Project is one directory under the storage root.
type Project struct {
	Name         string        `json:"name"` // encoded directory name
	Path         string        `json:"path"` // working directory the sessions ran in
	DisplayName  string        `json:"displayName"`
	Sessions     []SessionInfo `json:"sessions"`
	LastActivity time.Time     `json:"lastActivity"`
}

// SessionInfo summarises one session log.
type SessionInfo struct {
	ID           string    `json:"id"`
	Summary      string    `json:"summary"`
	MessageCount int       `json:"messageCount"`
	LastActivity time.Time `json:"lastActivity"`
	CWD          string    `json:"cwd,omitempty"`
}

// Message is one conversational entry from a session log.
type Message struct {
	Type      string    `json:"type"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// entry is the subset of a log line the store understands.
type entry struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	CWD       string `json:"cwd,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Message   *struct {
		Role    string       `json:"role"`
		Content protocol.Content `json:"content"`
	} `json:"message,omitempty"`
}

// summaryEntry is the line appended when a session is titled.
type summaryEntry struct {
	SessionID string `json:"sessionId"`
	Type      string `json:"type"`
	Summary   string `json:"summary"`
	Timestamp string `json:"timestamp"`
}
