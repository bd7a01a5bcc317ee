// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package protocol defines the JSON messages exchanged over the chat and
// shell WebSockets. Every message carries a "type" discriminator; each
// variant is its own struct and optional fields are marked omitempty.
package protocol

import (
	"encoding/json"
)

// Chat client → server
const (
	TypeClaudeCommand = "claude-command"
	TypeAbortSession  = "abort-session"
)

// Chat server → client
const (
	TypeSessionCreated    = "session-created"
	TypeClaudeResponse    = "claude-response"
	TypeClaudeOutput      = "claude-output"
	TypeClaudeStatus      = "claude-status"
	TypeInteractivePrompt = "claude-interactive-prompt"
	TypeClaudeError       = "claude-error"
	TypeClaudeComplete    = "claude-complete"
	TypeSessionAborted    = "session-aborted"
	TypeProjectsUpdated   = "projects_updated"
)

// Shell, both directions
const (
	TypeShellInput     = "input"
	TypeShellResize    = "resize"
	TypeShellSessionID = "session-id"
	TypeShellOutput    = "output"
	TypeShellExit      = "exit"
	TypeShellError     = "shell-error"
)

// StreamStderr tags messages derived from the CLI's stderr.
const StreamStderr = "stderr"

// ToolsSettings controls which tools the CLI may use.
type ToolsSettings struct {
	AllowedTools    []string `json:"allowedTools,omitempty"`
	DisallowedTools []string `json:"disallowedTools,omitempty"`
	SkipPermissions bool     `json:"skipPermissions,omitempty"`
}

// CommandOptions accompany a claude-command.
type CommandOptions struct {
	SessionID     string         `json:"sessionId,omitempty"`
	Resume        bool           `json:"resume,omitempty"`
	ProjectPath   string         `json:"projectPath,omitempty"`
	CWD           string         `json:"cwd,omitempty"`
	ToolsSettings *ToolsSettings `json:"toolsSettings,omitempty"`
}

// ClientMessage is any message a chat client sends.
type ClientMessage struct {
	Type      string         `json:"type"`
	Command   string         `json:"command,omitempty"`
	Options   CommandOptions `json:"options"`
	SessionID string         `json:"sessionId,omitempty"`
}

// SessionCreated announces the ID the CLI assigned to a new session.
type SessionCreated struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

// NewSessionCreated builds a session-created message.
func NewSessionCreated(sessionID string) SessionCreated {
	return SessionCreated{Type: TypeSessionCreated, SessionID: sessionID}
}

// ClaudeResponse re-emits one stream-JSON object from the CLI unchanged.
type ClaudeResponse struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewClaudeResponse builds a claude-response message.
func NewClaudeResponse(data json.RawMessage) ClaudeResponse {
	return ClaudeResponse{Type: TypeClaudeResponse, Data: data}
}

// ClaudeOutput carries passthrough text.
type ClaudeOutput struct {
	Type   string `json:"type"`
	Data   string `json:"data"`
	Stream string `json:"stream,omitempty"`
}

// NewClaudeOutput builds a claude-output message.
func NewClaudeOutput(data string) ClaudeOutput {
	return ClaudeOutput{Type: TypeClaudeOutput, Data: data}
}

// StatusData describes an in-progress status line.
type StatusData struct {
	Message      string `json:"message"`
	Action       string `json:"action"`
	Tokens       int    `json:"tokens"`
	CanInterrupt bool   `json:"can_interrupt"`
}

// ClaudeStatus carries a parsed spinner/status line.
type ClaudeStatus struct {
	Type   string     `json:"type"`
	Data   StatusData `json:"data"`
	Stream string     `json:"stream,omitempty"`
}

// NewClaudeStatus builds a claude-status message.
func NewClaudeStatus(data StatusData, stream string) ClaudeStatus {
	return ClaudeStatus{Type: TypeClaudeStatus, Data: data, Stream: stream}
}

// InteractivePrompt carries a line the CLI is waiting on a choice for.
type InteractivePrompt struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// NewInteractivePrompt builds a claude-interactive-prompt message.
func NewInteractivePrompt(data string) InteractivePrompt {
	return InteractivePrompt{Type: TypeInteractivePrompt, Data: data}
}

// ClaudeError reports a failure or a stderr line.
type ClaudeError struct {
	Type   string `json:"type"`
	Error  string `json:"error"`
	Stream string `json:"stream,omitempty"`
}

// NewClaudeError builds a claude-error message.
func NewClaudeError(text, stream string) ClaudeError {
	return ClaudeError{Type: TypeClaudeError, Error: text, Stream: stream}
}

// ClaudeComplete is sent once per CLI process after it exits.
type ClaudeComplete struct {
	Type         string `json:"type"`
	ExitCode     int    `json:"exitCode"`
	IsNewSession bool   `json:"isNewSession"`
	SessionID    string `json:"sessionId,omitempty"`
}

// NewClaudeComplete builds a claude-complete message.
func NewClaudeComplete(exitCode int, isNewSession bool, sessionID string) ClaudeComplete {
	return ClaudeComplete{Type: TypeClaudeComplete, ExitCode: exitCode, IsNewSession: isNewSession, SessionID: sessionID}
}

// SessionAborted answers an abort-session request.
type SessionAborted struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Success   bool   `json:"success"`
}

// NewSessionAborted builds a session-aborted message.
func NewSessionAborted(sessionID string, success bool) SessionAborted {
	return SessionAborted{Type: TypeSessionAborted, SessionID: sessionID, Success: success}
}

// ProjectsUpdated is broadcast to every chat client when project storage changes.
type ProjectsUpdated struct {
	Type        string      `json:"type"`
	Projects    interface{} `json:"projects"`
	Timestamp   string      `json:"timestamp"`
	ChangeType  string      `json:"changeType"`
	ChangedFile string      `json:"changedFile"`
}

// ShellClientMessage is any message a shell client sends.
type ShellClientMessage struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
	Cols int    `json:"cols,omitempty"`
	Rows int    `json:"rows,omitempty"`
}

// ShellSessionID tells a shell client its session ID.
type ShellSessionID struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

// NewShellSessionID builds a session-id message.
func NewShellSessionID(id string) ShellSessionID {
	return ShellSessionID{Type: TypeShellSessionID, SessionID: id}
}

// ShellOutput carries raw PTY output.
type ShellOutput struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// NewShellOutput builds an output message.
func NewShellOutput(data string) ShellOutput {
	return ShellOutput{Type: TypeShellOutput, Data: data}
}

// ShellExit reports how the shell process ended.
type ShellExit struct {
	Type     string `json:"type"`
	ExitCode int    `json:"exitCode"`
	Signal   string `json:"signal,omitempty"`
}

// NewShellExit builds an exit message.
func NewShellExit(exitCode int, signal string) ShellExit {
	return ShellExit{Type: TypeShellExit, ExitCode: exitCode, Signal: signal}
}

// ShellError reports a shell failure before the socket closes.
type ShellError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// NewShellError builds a shell-error message.
func NewShellError(text string) ShellError {
	return ShellError{Type: TypeShellError, Error: text}
}
