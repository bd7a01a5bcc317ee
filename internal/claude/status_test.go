// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package claude

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsStatusMessage(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"⚒ 42 tokens", true},
		{"✻ Thinking…", true},
		{"✶ Pondering", true},
		{"1.2k tokens used", true},
		{"(esc to interrupt)", true},
		{"Normal message", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStatusMessage(tt.line))
		})
	}
}

func TestParseStatusMessage(t *testing.T) {
	s := ParseStatusMessage("✻ Working... ⚒ 123 tokens")
	assert.Equal(t, "Working", s.Action)
	assert.Equal(t, 123, s.Tokens)
	assert.False(t, s.CanInterrupt)
	assert.Equal(t, "✻ Working... ⚒ 123 tokens", s.Message)

	s = ParseStatusMessage("random text")
	assert.Equal(t, "Working", s.Action)
	assert.Equal(t, 0, s.Tokens)

	s = ParseStatusMessage("✢ Compiling (42 tokens · esc to interrupt)")
	assert.Equal(t, "Compiling", s.Action)
	assert.Equal(t, 42, s.Tokens)
	assert.True(t, s.CanInterrupt)

	// ⚒ is a status glyph but never an action prefix.
	s = ParseStatusMessage("⚒ 7 tokens")
	assert.Equal(t, "Working", s.Action)
	assert.Equal(t, 7, s.Tokens)
}

func TestIsInteractivePrompt(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"1. Yes", true},
		{"Do you want to proceed", true},
		{"Continue?", true},
		{"> ", true},
		{"❯ Yes, allow", true},
		{"Normal message", false},
		{"version 1.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInteractivePrompt(tt.line))
		})
	}
}
