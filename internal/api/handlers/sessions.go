// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/wingedpig/claudeui/internal/claude"
)

// SessionsHandler reports and controls running CLI commands.
type SessionsHandler struct {
	spawner *claude.Spawner
}

// NewSessionsHandler creates a sessions handler.
func NewSessionsHandler(spawner *claude.Spawner) *SessionsHandler {
	return &SessionsHandler{spawner: spawner}
}

// Active lists the sessions with a running command. Brand-new sessions
// appear under a pending key until the CLI reports their ID.
func (h *SessionsHandler) Active(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": h.spawner.Registry().ActiveSessions(),
	})
}

// Abort terminates a session's running command.
func (h *SessionsHandler) Abort(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session"]
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sessionID,
		"aborted":   h.spawner.Abort(sessionID),
	})
}
