// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package claude

import (
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wingedpig/claudeui/internal/protocol"
)

// Sink receives the typed messages produced for one CLI process.
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(msg interface{}) error
}

// Interpreter turns one CLI process's raw stdout/stderr into protocol
// messages and keeps its registry entry keyed by the best-known session ID.
type Interpreter struct {
	mu sync.Mutex

	stdout LineBuffer
	stderr LineBuffer

	sessionID         string // ID the client asked for, empty for new sessions
	capturedSessionID string
	createdSent       bool
	key               string // current registry key
	finished          bool

	proc     Process
	registry *Registry
	sink     Sink
	debug    bool

	// onCapture runs, with mu held, the first time the CLI reports a session ID.
	onCapture func(id string)
}

// NewInterpreter creates an interpreter for a process registered under key.
func NewInterpreter(key, sessionID string, proc Process, registry *Registry, sink Sink) *Interpreter {
	return &Interpreter{
		key:       key,
		sessionID: sessionID,
		proc:      proc,
		registry:  registry,
		sink:      sink,
	}
}

// Key returns the registry key the process is currently stored under.
func (in *Interpreter) Key() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.key
}

// CapturedSessionID returns the ID reported by the CLI, if any.
func (in *Interpreter) CapturedSessionID() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.capturedSessionID
}

// Stdout processes one chunk of standard output.
func (in *Interpreter) Stdout(chunk []byte) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, line := range in.stdout.Feed(chunk) {
		in.stdoutLine(line)
	}
}

// Stderr processes one chunk of standard error.
func (in *Interpreter) Stderr(chunk []byte) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, line := range in.stderr.Feed(chunk) {
		in.stderrLine(line)
	}
}

func (in *Interpreter) stdoutLine(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}
	if in.debug {
		log.Printf("claude [%s]: stdout: %s", in.key, trimmed)
	}

	// Stream-json events are always objects; anything else is text.
	if trimmed[0] == '{' {
		if !json.Valid([]byte(trimmed)) {
			log.Printf("claude [%s]: skipping malformed JSON line (%d bytes)", in.key, len(trimmed))
			return
		}
		in.captureSessionID([]byte(trimmed))
		in.send(protocol.NewClaudeResponse(json.RawMessage(trimmed)))
		return
	}

	switch {
	case IsStatusMessage(trimmed):
		in.send(protocol.NewClaudeStatus(ParseStatusMessage(trimmed), ""))
	case IsInteractivePrompt(trimmed):
		in.send(protocol.NewInteractivePrompt(line))
	default:
		in.send(protocol.NewClaudeOutput(line))
	}
}

func (in *Interpreter) stderrLine(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}
	if IsStatusMessage(trimmed) {
		in.send(protocol.NewClaudeStatus(ParseStatusMessage(trimmed), protocol.StreamStderr))
		return
	}
	in.send(protocol.NewClaudeError(trimmed, protocol.StreamStderr))
}

// captureSessionID records the first session_id the CLI reports, announces
// it and moves the registry entry onto it.
func (in *Interpreter) captureSessionID(raw []byte) {
	if in.capturedSessionID != "" || raw[0] != '{' {
		return
	}
	var ev struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(raw, &ev); err != nil || ev.SessionID == "" {
		return
	}

	in.capturedSessionID = ev.SessionID

	// Rekey first so an abort issued on session-created finds the process.
	if err := in.registry.Rekey(in.key, ev.SessionID); err != nil {
		log.Printf("claude: %v", err)
	} else {
		in.key = ev.SessionID
	}

	if !in.createdSent {
		in.createdSent = true
		in.send(protocol.NewSessionCreated(ev.SessionID))
	}

	if in.onCapture != nil {
		in.onCapture(ev.SessionID)
	}
}

// Close finalizes the run after the process exited with exitCode. It
// flushes buffered partial lines, sends claude-complete, then removes the
// process and message count from the registry. It returns the session ID
// the run resolved to and whether the session was new.
func (in *Interpreter) Close(exitCode int) (string, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.finished {
		return in.finalID(), in.sessionID == ""
	}
	in.finished = true

	if tail, ok := in.stdout.Flush(); ok {
		in.stdoutLine(tail)
	}
	if tail, ok := in.stderr.Flush(); ok {
		in.stderrLine(tail)
	}

	finalID := in.finalID()
	isNew := in.sessionID == ""

	in.send(protocol.NewClaudeComplete(exitCode, isNew, finalID))

	in.registry.DeleteProcessIf(in.key, in.proc)
	in.registry.DeleteMessageCount(finalID)
	if in.sessionID != "" && in.sessionID != finalID {
		in.registry.DeleteMessageCount(in.sessionID)
	}

	return finalID, isNew
}

// Fail finalizes the run after the process could not be started or waited
// on. Only the process handle is removed; counters survive.
func (in *Interpreter) Fail(err error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.finished {
		return
	}
	in.finished = true

	if in.proc != nil {
		in.registry.DeleteProcessIf(in.key, in.proc)
	}
	in.send(protocol.NewClaudeError(err.Error(), ""))
}

func (in *Interpreter) finalID() string {
	if in.capturedSessionID != "" {
		return in.capturedSessionID
	}
	if in.sessionID != "" {
		return in.sessionID
	}
	return "session-" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}

func (in *Interpreter) send(msg interface{}) {
	if in.sink == nil {
		return
	}
	// The client may be gone; the process keeps running regardless.
	_ = in.sink.Send(msg)
}
