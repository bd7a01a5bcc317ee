// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// ShellClient inspects terminal sessions.
type ShellClient struct {
	c *Client
}

// List returns the live shell sessions.
func (s *ShellClient) List(ctx context.Context) ([]Shell, error) {
	data, err := s.c.get(ctx, "/api/shell/sessions")
	if err != nil {
		return nil, err
	}

	var shells []Shell
	if err := json.Unmarshal(data, &shells); err != nil {
		return nil, fmt.Errorf("failed to parse shells: %w", err)
	}
	return shells, nil
}
