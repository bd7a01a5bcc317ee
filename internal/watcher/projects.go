// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package watcher reports changes to the CLI's project storage directory.
package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/wingedpig/claudeui/internal/events"
)

// Change types reported in projects.updated payloads.
const (
	ChangeAdd       = "add"
	ChangeChange    = "change"
	ChangeUnlink    = "unlink"
	ChangeAddDir    = "addDir"
	ChangeUnlinkDir = "unlinkDir"
)

const projectsDebounceKey = "projects"

// ProjectWatcher watches the projects root and each project directory one
// level below it, publishing a debounced projects.updated event per burst.
type ProjectWatcher struct {
	mu        sync.Mutex
	root      string
	bus       events.EventBus
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	dirs      map[string]bool
	closed    bool
	closeCh   chan struct{}
	wg        sync.WaitGroup
}

// NewProjectWatcher starts watching root. The directory is created if missing.
func NewProjectWatcher(root string, bus events.EventBus, debounce time.Duration) (*ProjectWatcher, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create projects dir: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &ProjectWatcher{
		root:      filepath.Clean(root),
		bus:       bus,
		watcher:   fsWatcher,
		debouncer: NewDebouncer(debounce),
		dirs:      make(map[string]bool),
		closeCh:   make(chan struct{}),
	}

	if err := w.addDir(w.root); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("read projects dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := w.addDir(filepath.Join(w.root, e.Name())); err != nil {
				log.Printf("watcher: cannot watch %s: %v", e.Name(), err)
			}
		}
	}

	w.wg.Add(1)
	go w.processEvents()

	return w, nil
}

// Watching returns the directories currently watched.
func (w *ProjectWatcher) Watching() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	result := make([]string, 0, len(w.dirs))
	for dir := range w.dirs {
		result = append(result, dir)
	}
	return result
}

// Close stops the watcher and releases resources.
func (w *ProjectWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.debouncer.Stop()
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *ProjectWatcher) addDir(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dirs[path] {
		return nil
	}
	if err := w.watcher.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	w.dirs[path] = true
	return nil
}

// forgetDir reports whether path was a watched directory.
func (w *ProjectWatcher) forgetDir(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.dirs[path] {
		return false
	}
	delete(w.dirs, path)
	// fsnotify drops watches on removed directories itself.
	_ = w.watcher.Remove(path)
	return true
}

func (w *ProjectWatcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		}
	}
}

func (w *ProjectWatcher) handleEvent(event fsnotify.Event) {
	if ignoredFile(filepath.Base(event.Name)) {
		return
	}

	var changeType string
	switch {
	case event.Has(fsnotify.Create):
		changeType = ChangeAdd
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			changeType = ChangeAddDir
			// Only project directories directly under the root are watched.
			if filepath.Dir(event.Name) == w.root {
				if err := w.addDir(event.Name); err != nil {
					log.Printf("watcher: %v", err)
				}
			}
		}
	case event.Has(fsnotify.Write):
		changeType = ChangeChange
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		changeType = ChangeUnlink
		if w.forgetDir(event.Name) {
			changeType = ChangeUnlinkDir
		}
	default:
		// Chmod only
		return
	}

	w.trigger(changeType, event.Name)
}

func (w *ProjectWatcher) trigger(changeType, changedFile string) {
	rel, err := filepath.Rel(w.root, changedFile)
	if err != nil {
		rel = changedFile
	}

	w.debouncer.Debounce(projectsDebounceKey, func() {
		if w.bus == nil {
			return
		}
		err := w.bus.Publish(context.Background(), events.Event{
			Type: events.EventProjectsUpdated,
			Payload: map[string]interface{}{
				"changeType":  changeType,
				"changedFile": rel,
			},
		})
		if err != nil {
			log.Printf("watcher: publish failed: %v", err)
		}
	})
}

// ignoredFile filters editor swap files and atomic-write temporaries.
func ignoredFile(name string) bool {
	switch {
	case strings.HasSuffix(name, ".tmp"),
		strings.HasSuffix(name, ".swp"),
		strings.HasSuffix(name, "~"),
		strings.HasPrefix(name, ".#"):
		return true
	}
	return false
}
