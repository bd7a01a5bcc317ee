// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/wingedpig/claudeui/internal/claude"
	"github.com/wingedpig/claudeui/internal/projects"
	"github.com/wingedpig/claudeui/internal/summary"
)

// ProjectsHandler serves the stored projects and their sessions.
type ProjectsHandler struct {
	store     *projects.Store
	summaries *summary.Service
	registry  *claude.Registry
}

// NewProjectsHandler creates a projects handler.
func NewProjectsHandler(store *projects.Store, summaries *summary.Service, registry *claude.Registry) *ProjectsHandler {
	return &ProjectsHandler{
		store:     store,
		summaries: summaries,
		registry:  registry,
	}
}

// List returns every project with its sessions, most recent first.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListProjects(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// Sessions returns a project's sessions.
func (h *ProjectsHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.ListSessions(mux.Vars(r)["project"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sessions)
}

// Messages returns the conversation stored in a session log.
func (h *ProjectsHandler) Messages(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	messages, err := h.store.LoadMessages(vars["project"], vars["session"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, messages)
}

// RenameSession stores a user-chosen title and locks out automatic titling.
func (h *ProjectsHandler) RenameSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var body struct {
		Summary string `json:"summary"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid JSON: "+err.Error())
		return
	}
	title := strings.TrimSpace(body.Summary)
	if title == "" {
		WriteErrorWithDetails(w, http.StatusBadRequest, ErrBadRequest, "summary required",
			map[string]interface{}{"field": "summary"})
		return
	}

	if err := h.summaries.Rename(vars["project"], vars["session"], title); err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": vars["session"],
		"summary":   title,
		"manual":    true,
	})
}

// UnlockSummary lets automatic titling overwrite a renamed session again.
func (h *ProjectsHandler) UnlockSummary(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session"]
	h.summaries.Unlock(sessionID)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sessionID,
		"manual":    false,
	})
}

// DeleteSession removes a session log and its in-memory counters. A session
// with a running command cannot be deleted.
func (h *ProjectsHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["session"]

	if h.registry.GetProcess(sessionID) != nil {
		WriteError(w, http.StatusConflict, ErrSessionBusy, "session has a running command")
		return
	}
	if err := h.store.DeleteSession(vars["project"], sessionID); err != nil {
		writeStoreError(w, err)
		return
	}
	h.registry.DeleteMessageCount(sessionID)
	h.registry.DeleteManualEditFlag(sessionID)
	w.WriteHeader(http.StatusNoContent)
}
