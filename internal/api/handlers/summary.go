// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wingedpig/claudeui/internal/summary"
)

// SummaryHandler titles ad-hoc conversations.
type SummaryHandler struct {
	gen *summary.Generator
}

// NewSummaryHandler creates a summary handler.
func NewSummaryHandler(gen *summary.Generator) *SummaryHandler {
	return &SummaryHandler{gen: gen}
}

// Generate answers {messages} with a bare {summary} body, which browser
// clients read directly. It always produces a title.
func (h *SummaryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Messages []summary.Message `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid JSON: "+err.Error())
		return
	}

	title := h.gen.Generate(r.Context(), body.Messages)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"summary": title})
}
