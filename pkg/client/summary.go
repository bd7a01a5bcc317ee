// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// SummaryClient generates session titles.
type SummaryClient struct {
	c *Client
}

// Generate returns a short title for the conversation. The endpoint answers
// with a bare {"summary": ...} object rather than the usual envelope.
func (s *SummaryClient) Generate(ctx context.Context, messages []SummaryMessage) (string, error) {
	body, err := json.Marshal(map[string]interface{}{"messages": messages})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	status, data, err := s.c.send(ctx, http.MethodPost, "/api/generate-session-summary", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if status >= 400 {
		_, err := parseResponse(status, data)
		return "", err
	}

	var resp struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("failed to parse summary: %w", err)
	}
	return resp.Summary, nil
}
