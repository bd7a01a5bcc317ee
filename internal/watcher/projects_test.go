// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wingedpig/claudeui/internal/events"
)

func newTestWatcher(t *testing.T, root string) (*ProjectWatcher, chan events.Event) {
	t.Helper()

	bus := events.NewMemoryEventBus(events.MemoryBusConfig{})
	t.Cleanup(func() { bus.Close() })

	received := make(chan events.Event, 16)
	_, err := bus.Subscribe(events.EventProjectsUpdated, func(ctx context.Context, e events.Event) error {
		received <- e
		return nil
	})
	require.NoError(t, err)

	w, err := NewProjectWatcher(root, bus, 30*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	return w, received
}

func waitEvent(t *testing.T, ch chan events.Event) events.Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for projects.updated")
		return events.Event{}
	}
}

func TestProjectWatcher_CreatesRootAndWatchesProjects(t *testing.T) {
	root := filepath.Join(t.TempDir(), "projects")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "-home-alice-app"), 0755))

	w, _ := newTestWatcher(t, root)

	assert.ElementsMatch(t, []string{root, filepath.Join(root, "-home-alice-app")}, w.Watching())
}

func TestProjectWatcher_SessionFileWrite(t *testing.T) {
	root := t.TempDir()
	proj := filepath.Join(root, "-home-alice-app")
	require.NoError(t, os.MkdirAll(proj, 0755))

	_, received := newTestWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(proj, "abc.jsonl"), []byte("{}\n"), 0644))

	e := waitEvent(t, received)
	assert.Equal(t, filepath.Join("-home-alice-app", "abc.jsonl"), e.Payload["changedFile"])
	assert.Contains(t, []string{ChangeAdd, ChangeChange}, e.Payload["changeType"])
}

func TestProjectWatcher_NewProjectDirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	w, received := newTestWatcher(t, root)

	proj := filepath.Join(root, "-srv-api")
	require.NoError(t, os.Mkdir(proj, 0755))

	e := waitEvent(t, received)
	assert.Equal(t, ChangeAddDir, e.Payload["changeType"])
	assert.Contains(t, w.Watching(), proj)

	require.NoError(t, os.WriteFile(filepath.Join(proj, "s1.jsonl"), []byte("{}\n"), 0644))
	e = waitEvent(t, received)
	assert.Equal(t, filepath.Join("-srv-api", "s1.jsonl"), e.Payload["changedFile"])
}

func TestProjectWatcher_IgnoresTempFiles(t *testing.T) {
	root := t.TempDir()
	_, received := newTestWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "index.json.tmp"), []byte("x"), 0644))

	select {
	case e := <-received:
		t.Fatalf("unexpected event: %v", e.Payload)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestIgnoredFile(t *testing.T) {
	assert.True(t, ignoredFile("a.jsonl.tmp"))
	assert.True(t, ignoredFile(".a.swp"))
	assert.True(t, ignoredFile("notes~"))
	assert.True(t, ignoredFile(".#lock"))
	assert.False(t, ignoredFile("abc.jsonl"))
}
