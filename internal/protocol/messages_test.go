// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestMessages_WireFormat(t *testing.T) {
	tests := []struct {
		name string
		msg  interface{}
		want string
	}{
		{"session created", NewSessionCreated("abc"), `{"type":"session-created","sessionId":"abc"}`},
		{"response keeps raw json", NewClaudeResponse(json.RawMessage(`{"a":1}`)), `{"type":"claude-response","data":{"a":1}}`},
		{"output", NewClaudeOutput("hi"), `{"type":"claude-output","data":"hi"}`},
		{"error from stderr", NewClaudeError("bad", StreamStderr), `{"type":"claude-error","error":"bad","stream":"stderr"}`},
		{"error without stream", NewClaudeError("bad", ""), `{"type":"claude-error","error":"bad"}`},
		{"complete", NewClaudeComplete(0, true, "abc"), `{"type":"claude-complete","exitCode":0,"isNewSession":true,"sessionId":"abc"}`},
		{"aborted", NewSessionAborted("abc", false), `{"type":"session-aborted","sessionId":"abc","success":false}`},
		{"prompt", NewInteractivePrompt("Continue?"), `{"type":"claude-interactive-prompt","data":"Continue?"}`},
		{"shell id", NewShellSessionID("shell-1"), `{"type":"session-id","sessionId":"shell-1"}`},
		{"shell exit", NewShellExit(0, ""), `{"type":"exit","exitCode":0}`},
		{"shell exit signal", NewShellExit(-1, "SIGKILL"), `{"type":"exit","exitCode":-1,"signal":"SIGKILL"}`},
		{"shell error", NewShellError("nope"), `{"type":"shell-error","error":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, encode(t, tt.msg))
		})
	}
}

func TestStatusMessage_WireFormat(t *testing.T) {
	msg := NewClaudeStatus(StatusData{Message: "✻ Thinking", Action: "Thinking", Tokens: 12, CanInterrupt: true}, StreamStderr)
	assert.JSONEq(t,
		`{"type":"claude-status","stream":"stderr","data":{"message":"✻ Thinking","action":"Thinking","tokens":12,"can_interrupt":true}}`,
		encode(t, msg))
}

func TestClientMessage_Decode(t *testing.T) {
	raw := `{"type":"claude-command","command":"hi","options":{"sessionId":"abc","resume":true,"projectPath":"/p","cwd":"/p/sub","toolsSettings":{"allowedTools":["Read"],"skipPermissions":true}}}`

	var msg ClientMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))

	assert.Equal(t, TypeClaudeCommand, msg.Type)
	assert.Equal(t, "hi", msg.Command)
	assert.Equal(t, "abc", msg.Options.SessionID)
	assert.True(t, msg.Options.Resume)
	assert.Equal(t, "/p/sub", msg.Options.CWD)
	require.NotNil(t, msg.Options.ToolsSettings)
	assert.Equal(t, []string{"Read"}, msg.Options.ToolsSettings.AllowedTools)
	assert.True(t, msg.Options.ToolsSettings.SkipPermissions)

	var abort ClientMessage
	require.NoError(t, json.Unmarshal([]byte(`{"type":"abort-session","sessionId":"abc"}`), &abort))
	assert.Equal(t, TypeAbortSession, abort.Type)
	assert.Equal(t, "abc", abort.SessionID)
	assert.Nil(t, abort.Options.ToolsSettings)
}

func TestShellClientMessage_Decode(t *testing.T) {
	var msg ShellClientMessage
	require.NoError(t, json.Unmarshal([]byte(`{"type":"resize","cols":120,"rows":40}`), &msg))
	assert.Equal(t, TypeShellResize, msg.Type)
	assert.Equal(t, 120, msg.Cols)
	assert.Equal(t, 40, msg.Rows)
}

func TestContent_Decode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Content
	}{
		{"string", `"hello"`, "hello"},
		{"text blocks", `[{"type":"text","text":"one"},{"type":"tool_use","id":"x"},{"type":"text","text":"two"}]`, "one\ntwo"},
		{"no text", `[{"type":"image"}]`, ""},
		{"object", `{"text":"ignored"}`, ""},
		{"null", `null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Content
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &c))
			assert.Equal(t, tt.want, c)
		})
	}
}
