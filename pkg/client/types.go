// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import "time"

// Project is a directory of session logs.
type Project struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	DisplayName  string    `json:"displayName"`
	Sessions     []Session `json:"sessions"`
	LastActivity time.Time `json:"lastActivity"`
}

// Session summarises one stored session.
type Session struct {
	ID           string    `json:"id"`
	Summary      string    `json:"summary"`
	MessageCount int       `json:"messageCount"`
	LastActivity time.Time `json:"lastActivity"`
	CWD          string    `json:"cwd,omitempty"`
}

// Message is one conversational entry of a stored session.
type Message struct {
	Type      string    `json:"type"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// TitleState is returned when a session title is set or unlocked.
type TitleState struct {
	SessionID string `json:"sessionId"`
	Summary   string `json:"summary,omitempty"`
	Manual    bool   `json:"manual"`
}

// Event is an entry from the server's event history.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Session   string                 `json:"session,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// Shell describes a live terminal session.
type Shell struct {
	ID         string    `json:"id"`
	PID        int       `json:"pid"`
	CreatedAt  time.Time `json:"createdAt"`
	Cols       int       `json:"cols"`
	Rows       int       `json:"rows"`
	Foreground string    `json:"foreground,omitempty"`
}

// SummaryMessage is one input message for title generation.
type SummaryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
