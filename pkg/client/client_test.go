// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wingedpig/claudeui/internal/api"
	"github.com/wingedpig/claudeui/internal/claude"
	"github.com/wingedpig/claudeui/internal/events"
	"github.com/wingedpig/claudeui/internal/hub"
	"github.com/wingedpig/claudeui/internal/projects"
	"github.com/wingedpig/claudeui/internal/summary"
	"github.com/wingedpig/claudeui/internal/terminal"
)

// apiHandler returns a handler that writes data in the standard envelope.
func apiHandler(data interface{}, statusCode int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	}
}

// apiErrorHandler returns a handler that writes an API error.
func apiErrorHandler(code, message string, statusCode int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"code": code, "message": message},
		})
	}
}

func TestNew(t *testing.T) {
	c := New("http://localhost:3001/")

	assert.Equal(t, "http://localhost:3001", c.BaseURL())
	assert.NotNil(t, c.Projects)
	assert.NotNil(t, c.Sessions)
	assert.NotNil(t, c.Events)
	assert.NotNil(t, c.Shells)
	assert.NotNil(t, c.Summary)
}

func TestWithTimeout(t *testing.T) {
	c := New("http://localhost:3001", WithTimeout(5*time.Second))
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)

	hc := &http.Client{}
	c = New("http://localhost:3001", WithHTTPClient(hc))
	assert.Same(t, hc, c.httpClient)
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(apiErrorHandler("NOT_FOUND", "session not found", http.StatusNotFound))
	defer srv.Close()

	_, err := New(srv.URL).Projects.Messages(context.Background(), "p", "s")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok, "got %T", err)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NOT_FOUND: session not found", apiErr.Error())
	assert.True(t, IsNotFound(err))
}

func TestNonEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Projects.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.False(t, IsNotFound(err))
}

func TestProjectClient_Requests(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.EscapedPath()
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		apiHandler(map[string]interface{}{"sessionId": "s 1", "summary": "Fix login", "manual": true}, http.StatusOK)(w, r)
	}))
	defer srv.Close()

	state, err := New(srv.URL).Projects.Rename(context.Background(), "-work-app", "s 1", "Fix login")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/projects/-work-app/sessions/s%201/summary", gotPath)
	assert.JSONEq(t, `{"summary":"Fix login"}`, gotBody)
	assert.Equal(t, &TitleState{SessionID: "s 1", Summary: "Fix login", Manual: true}, state)
}

func TestProjectClient_DeleteNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL).Projects.Delete(context.Background(), "p", "s"))
}

func TestSessionClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions/active", apiHandler(map[string]interface{}{"sessions": []string{"a", "b"}}, http.StatusOK))
	mux.HandleFunc("/api/sessions/a/abort", apiHandler(map[string]interface{}{"sessionId": "a", "aborted": true}, http.StatusOK))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	active, err := c.Sessions.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, active)

	aborted, err := c.Sessions.Abort(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, aborted)
}

func TestEventClient_Query(t *testing.T) {
	var query map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		apiHandler([]map[string]interface{}{{"id": "1", "type": "session.created", "session": "x"}}, http.StatusOK)(w, r)
	}))
	defer srv.Close()

	since := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	list, err := New(srv.URL).Events.List(context.Background(), &ListOptions{
		Limit:   10,
		Types:   []string{"session.*", "shell.*"},
		Session: "x",
		Since:   since,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "session.created", list[0].Type)

	assert.Equal(t, []string{"10"}, query["limit"])
	assert.Equal(t, []string{"session.*", "shell.*"}, query["type"])
	assert.Equal(t, []string{"x"}, query["session"])
	assert.Equal(t, []string{"2026-01-02T03:04:05Z"}, query["since"])
}

func TestSummaryClient_Errors(t *testing.T) {
	srv := httptest.NewServer(apiErrorHandler("BAD_REQUEST", "invalid JSON", http.StatusBadRequest))
	defer srv.Close()

	_, err := New(srv.URL).Summary.Generate(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, "BAD_REQUEST", err.(*APIError).Code)
}

// TestAgainstServer drives the real API handler.
func TestAgainstServer(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "projects")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "-work-app"), 0755))
	log := `{"type":"user","sessionId":"abc","cwd":"/work/app","timestamp":"2026-01-02T03:04:05Z","message":{"role":"user","content":"add a login page"}}
{"type":"assistant","sessionId":"abc","timestamp":"2026-01-02T03:04:06Z","message":{"role":"assistant","content":[{"type":"text","text":"Added."}]}}
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "-work-app", "abc.jsonl"), []byte(log), 0644))

	bus := events.NewMemoryEventBus(events.MemoryBusConfig{})
	defer bus.Close()
	registry := claude.NewRegistry()
	store := projects.NewStore(root)
	shells := terminal.NewManager(terminal.Config{Shell: "/bin/sh", Dir: dir}, bus)
	defer shells.TerminateAll()
	deps := api.Dependencies{
		Spawner:  claude.NewSpawner(claude.SpawnerConfig{HomeDir: dir}, registry, bus),
		Store:    store,
		Summary:  summary.NewService(summary.NewGenerator(nil, time.Second, 5), store, registry, bus),
		Shells:   shells,
		Hub:      hub.New(),
		EventBus: bus,
	}
	srv := httptest.NewServer(api.NewHandler(deps, api.NewRouter(deps)))
	defer srv.Close()

	ctx := context.Background()
	c := New(srv.URL)

	list, err := c.Projects.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "-work-app", list[0].Name)

	messages, err := c.Projects.Messages(ctx, "-work-app", "abc")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "add a login page", messages[0].Content)

	state, err := c.Projects.Rename(ctx, "-work-app", "abc", "  Login page  ")
	require.NoError(t, err)
	assert.Equal(t, "Login page", state.Summary)
	assert.True(t, state.Manual)

	state, err = c.Projects.Unlock(ctx, "-work-app", "abc")
	require.NoError(t, err)
	assert.False(t, state.Manual)

	title, err := c.Summary.Generate(ctx, []SummaryMessage{{Role: "user", Content: "fix the login bug"}})
	require.NoError(t, err)
	assert.Equal(t, "Fix bug", title)

	active, err := c.Sessions.Active(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	aborted, err := c.Sessions.Abort(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, aborted)

	shellList, err := c.Shells.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, shellList)

	renamed, err := c.Events.List(ctx, &ListOptions{Types: []string{"session.summarized"}, Session: "abc"})
	require.NoError(t, err)
	assert.NotEmpty(t, renamed)

	require.NoError(t, c.Projects.Delete(ctx, "-work-app", "abc"))
	_, err = c.Projects.Messages(ctx, "-work-app", "abc")
	assert.True(t, IsNotFound(err), "got %v", err)
}
