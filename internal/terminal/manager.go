// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package terminal runs interactive shells in pseudo-terminals, one per
// shell WebSocket connection.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"
	"github.com/wingedpig/claudeui/internal/events"
)

// ErrSessionNotFound is returned for unknown shell session IDs.
var ErrSessionNotFound = errors.New("shell session not found")

// Defaults for new shells.
const (
	DefaultShell = "/bin/sh"
	DefaultTerm  = "xterm-color"
	DefaultCols  = 80
	DefaultRows  = 30
)

// Config holds shell settings.
type Config struct {
	Shell string
	Dir   string // working directory, normally $HOME
	Term  string
	Cols  int
	Rows  int
	Env   []string // appended to the server's environment
}

// Manager owns every live shell session.
type Manager struct {
	cfg Config
	bus events.EventBus

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a shell manager. bus may be nil.
func NewManager(cfg Config, bus events.EventBus) *Manager {
	if cfg.Shell == "" {
		cfg.Shell = DefaultShell
	}
	if cfg.Term == "" {
		cfg.Term = DefaultTerm
	}
	if cfg.Cols <= 0 {
		cfg.Cols = DefaultCols
	}
	if cfg.Rows <= 0 {
		cfg.Rows = DefaultRows
	}
	return &Manager{
		cfg:      cfg,
		bus:      bus,
		sessions: make(map[string]*Session),
	}
}

func newSessionID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("shell-%d-%s", time.Now().UnixMilli(), suffix)
}

// Create starts a new shell.
func (m *Manager) Create() (*Session, error) {
	cmd := exec.Command(m.cfg.Shell)
	cmd.Dir = m.cfg.Dir
	cmd.Env = append(os.Environ(), m.cfg.Env...)
	cmd.Env = append(cmd.Env, "TERM="+m.cfg.Term)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Cols: uint16(m.cfg.Cols),
		Rows: uint16(m.cfg.Rows),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start shell: %w", err)
	}

	s := &Session{
		ID:        newSessionID(),
		CreatedAt: time.Now(),
		cmd:       cmd,
		ptmx:      ptmx,
		cols:      m.cfg.Cols,
		rows:      m.cfg.Rows,
		done:      make(chan struct{}),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	go func() {
		s.wait()
		code, sig := s.exitCode, s.signal
		log.Printf("shell [%s]: exited with code %d %s", s.ID, code, sig)
		m.publish(events.EventShellExited, s.ID, map[string]interface{}{
			"exitCode": code,
			"signal":   sig,
		})
	}()

	log.Printf("shell [%s]: started %s (pid %d)", s.ID, m.cfg.Shell, s.PID())
	m.publish(events.EventShellStarted, s.ID, map[string]interface{}{
		"pid":   s.PID(),
		"shell": m.cfg.Shell,
	})
	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Write sends input to a session.
func (m *Manager) Write(id string, data []byte) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	return s.Write(data)
}

// Resize changes a session's terminal size.
func (m *Manager) Resize(id string, cols, rows int) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	return s.Resize(cols, rows)
}

// Kill stops a session and forgets it. Unknown IDs are ignored, so the
// socket-close and shell-exit paths can both call it.
func (m *Manager) Kill(id string) error {
	s := m.Remove(id)
	if s == nil {
		return nil
	}
	return s.Kill()
}

// Remove forgets a session without stopping it and returns it, or nil if
// it was already gone.
func (m *Manager) Remove(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	delete(m.sessions, id)
	return s
}

// List returns live sessions, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	infos := make([]Info, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	return infos
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// TerminateAll kills every session. A failure on one session does not
// stop the others; all failures are returned together.
func (m *Manager) TerminateAll() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	if len(sessions) > 0 {
		log.Printf("shell: terminating %d session(s)", len(sessions))
	}

	var errs []error
	for id, s := range sessions {
		if err := killIsolated(s); err != nil {
			errs = append(errs, fmt.Errorf("shell %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// killIsolated kills s, turning a panic into an error.
func killIsolated(s *Session) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.Kill()
}

func (m *Manager) publish(eventType, id string, payload map[string]interface{}) {
	if m.bus == nil {
		return
	}
	err := m.bus.Publish(context.Background(), events.Event{
		Type:    eventType,
		Session: id,
		Payload: payload,
	})
	if err != nil && !errors.Is(err, events.ErrBusClosed) {
		log.Printf("shell: publish %s: %v", eventType, err)
	}
}
