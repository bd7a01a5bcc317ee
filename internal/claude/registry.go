// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package claude

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
)

// ErrKeyInUse is returned when a rekey target already holds another process.
var ErrKeyInUse = errors.New("session key already has a live process")

// Process is a live CLI subprocess handle.
type Process interface {
	PID() int
	// Terminate asks the process to stop. It does not wait.
	Terminate() error
}

// Registry maps session keys to live processes, message counts and
// manual-edit flags. One instance is shared by the whole server.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	processes map[string]Process
	counts    map[string]int
	edited    map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		processes: make(map[string]Process),
		counts:    make(map[string]int),
		edited:    make(map[string]bool),
	}
}

// SetProcess registers p under key, replacing any previous handle.
func (r *Registry) SetProcess(key string, p Process) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processes[key] = p
}

// SetProcessIfAbsent registers p under key unless a handle is already there.
func (r *Registry) SetProcessIfAbsent(key string, p Process) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.processes[key]; ok {
		return false
	}
	r.processes[key] = p
	return true
}

// GetProcess returns the live process for key, or nil.
func (r *Registry) GetProcess(key string) Process {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processes[key]
}

// DeleteProcess removes the handle for key.
func (r *Registry) DeleteProcess(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.processes, key)
}

// DeleteProcessIf removes the handle for key only if it is p.
func (r *Registry) DeleteProcessIf(key string, p Process) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.processes[key] != p {
		return false
	}
	delete(r.processes, key)
	return true
}

// Rekey moves the handle stored under oldKey to newKey in one step.
// It fails if newKey already holds a different process; the old entry is
// then left in place.
func (r *Registry) Rekey(oldKey, newKey string) error {
	if oldKey == newKey {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.processes[oldKey]
	if !ok {
		return fmt.Errorf("rekey %s: no process registered", oldKey)
	}
	if existing, ok := r.processes[newKey]; ok && existing != p {
		return fmt.Errorf("rekey %s -> %s: %w", oldKey, newKey, ErrKeyInUse)
	}
	delete(r.processes, oldKey)
	r.processes[newKey] = p
	return nil
}

// ActiveSessions returns the keys with a live process, sorted.
func (r *Registry) ActiveSessions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.processes))
	for k := range r.processes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IncrementMessageCount bumps the counter for key and returns the new value.
func (r *Registry) IncrementMessageCount(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[key]++
	return r.counts[key]
}

// GetMessageCount returns the counter for key.
func (r *Registry) GetMessageCount(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key]
}

// DeleteMessageCount resets the counter for key.
func (r *Registry) DeleteMessageCount(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.counts, key)
}

// MarkAsManuallyEdited records that the user renamed the session.
func (r *Registry) MarkAsManuallyEdited(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edited[key] = true
}

// ClearManualEditFlag allows generated summaries for key again.
func (r *Registry) ClearManualEditFlag(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edited[key] = false
}

func (r *Registry) IsManuallyEdited(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.edited[key]
}

func (r *Registry) DeleteManualEditFlag(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.edited, key)
}

// Forget drops every entry for key. Used when a session is deleted.
func (r *Registry) Forget(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.processes, key)
	delete(r.counts, key)
	delete(r.edited, key)
}

// Abort terminates the live process for key and reports whether one was
// found. Entries are removed later by the process's own exit path.
func (r *Registry) Abort(key string) bool {
	p := r.GetProcess(key)
	if p == nil {
		return false
	}
	if err := p.Terminate(); err != nil {
		log.Printf("claude: abort %s (pid %d): %v", key, p.PID(), err)
	}
	return true
}
