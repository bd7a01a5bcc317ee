// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package claude runs the Claude CLI as a subprocess per chat command and
// translates its streamed output into WebSocket protocol messages.
package claude

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wingedpig/claudeui/internal/events"
)

// ErrSessionBusy is returned when a command targets a session whose
// previous command is still running.
var ErrSessionBusy = errors.New("session already has a running command")

// summaryTimeout bounds the detached completion hook.
const summaryTimeout = 2 * time.Minute

// CompletionHook runs after a brand-new session finishes with exit code 0.
type CompletionHook func(ctx context.Context, projectPath, sessionID string) error

// SpawnerConfig holds CLI process settings.
type SpawnerConfig struct {
	Binary      string
	Model       string
	IdleTimeout time.Duration // zero disables the watchdog
	HomeDir     string        // working directory when the command names none
	Env         []string      // appended to the server's environment
	Debug       bool
}

// Spawner starts CLI processes and owns their lifecycle.
type Spawner struct {
	cfg      SpawnerConfig
	registry *Registry
	bus      events.EventBus

	mu         sync.RWMutex
	onComplete CompletionHook

	runs sync.WaitGroup
}

// NewSpawner creates a spawner. bus may be nil.
func NewSpawner(cfg SpawnerConfig, registry *Registry, bus events.EventBus) *Spawner {
	if cfg.Binary == "" {
		cfg.Binary = "claude"
	}
	return &Spawner{
		cfg:      cfg,
		registry: registry,
		bus:      bus,
	}
}

// Registry returns the registry the spawner records processes in.
func (s *Spawner) Registry() *Registry {
	return s.registry
}

// OnNewSessionComplete sets the hook run for successful new sessions.
func (s *Spawner) OnNewSessionComplete(hook CompletionHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = hook
}

// Run tracks one spawned CLI process.
type Run struct {
	done      chan struct{}
	err       error
	sessionID string
	exitCode  int
}

// Done is closed once the process has exited and claude-complete or
// claude-error has been sent.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run finishes. It returns nil for exit code 0, an
// *ExitError for other exit codes, or the start/wait error.
func (r *Run) Wait() error {
	<-r.done
	return r.err
}

// SessionID returns the ID the run resolved to. Valid after Done.
func (r *Run) SessionID() string {
	return r.sessionID
}

// ExitCode returns the process exit code, -1 if it was killed by a signal.
// Valid after Done.
func (r *Run) ExitCode() int {
	return r.exitCode
}

// Spawn starts the CLI for command and streams its output to sink. Start
// failures are reported to sink as claude-error and also returned.
func (s *Spawner) Spawn(command string, opts SpawnOptions, sink Sink) (*Run, error) {
	run := &Run{done: make(chan struct{}), exitCode: -1}

	key := opts.SessionID
	if key == "" {
		key = "pending-" + uuid.NewString()
	}
	if opts.Model == "" {
		opts.Model = s.cfg.Model
	}

	if opts.SessionID != "" && s.registry.GetProcess(opts.SessionID) != nil {
		err := fmt.Errorf("session %s: %w", opts.SessionID, ErrSessionBusy)
		s.fail(run, NewInterpreter(key, opts.SessionID, nil, s.registry, sink), err)
		return run, err
	}

	args := BuildArgs(command, opts)
	cmd := exec.Command(s.cfg.Binary, args...)
	cmd.Dir = opts.workDir(s.cfg.HomeDir)
	cmd.Env = append(os.Environ(), s.cfg.Env...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		err = fmt.Errorf("failed to create stdout pipe: %w", err)
		s.fail(run, NewInterpreter(key, opts.SessionID, nil, s.registry, sink), err)
		return run, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		err = fmt.Errorf("failed to create stderr pipe: %w", err)
		s.fail(run, NewInterpreter(key, opts.SessionID, nil, s.registry, sink), err)
		return run, err
	}

	if err := cmd.Start(); err != nil {
		err = fmt.Errorf("failed to start claude: %w", err)
		s.fail(run, NewInterpreter(key, opts.SessionID, nil, s.registry, sink), err)
		return run, err
	}

	proc := &cliProcess{cmd: cmd}
	if !s.registry.SetProcessIfAbsent(key, proc) {
		// Lost a race with another command for the same session.
		proc.Kill()
		cmd.Wait()
		err := fmt.Errorf("session %s: %w", key, ErrSessionBusy)
		s.fail(run, NewInterpreter(key, opts.SessionID, nil, s.registry, sink), err)
		return run, err
	}

	log.Printf("claude [%s]: started pid %d in %s", key, proc.PID(), cmd.Dir)

	interp := NewInterpreter(key, opts.SessionID, proc, s.registry, sink)
	interp.debug = s.cfg.Debug
	if opts.SessionID != "" {
		s.registry.IncrementMessageCount(opts.SessionID)
	}
	interp.onCapture = func(id string) {
		if opts.SessionID == "" {
			s.registry.IncrementMessageCount(id)
		}
		s.publish(events.EventSessionCreated, id, nil)
	}

	s.publish(events.EventSessionStarted, key, map[string]interface{}{
		"pid":     proc.PID(),
		"resume":  opts.Resume,
		"project": opts.ProjectPath,
	})

	var watchdog *time.Timer
	touch := func() {}
	if idle := s.cfg.IdleTimeout; idle > 0 {
		watchdog = time.AfterFunc(idle, func() {
			log.Printf("claude [%s]: no output for %s, terminating", interp.Key(), idle)
			proc.Terminate()
		})
		touch = func() { watchdog.Reset(idle) }
	}

	var pumps sync.WaitGroup
	pumps.Add(2)
	go pump(stdout, interp.Stdout, touch, &pumps)
	go pump(stderr, interp.Stderr, touch, &pumps)

	s.runs.Add(1)
	go func() {
		defer s.runs.Done()

		// All output must be consumed before Wait closes the pipes.
		pumps.Wait()
		err := cmd.Wait()
		if watchdog != nil {
			watchdog.Stop()
		}

		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			s.fail(run, interp, fmt.Errorf("claude process error: %w", err))
			return
		}
		s.finish(run, interp, cmd.ProcessState.ExitCode(), opts.ProjectPath)
	}()

	return run, nil
}

// pump copies raw chunks from r into feed until EOF.
func pump(r io.Reader, feed func([]byte), touch func(), wg *sync.WaitGroup) {
	defer wg.Done()

	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			touch()
			feed(buf[:n])
		}
		if err != nil {
			if err != io.EOF && !errors.Is(err, os.ErrClosed) {
				log.Printf("claude: read error: %v", err)
			}
			return
		}
	}
}

func (s *Spawner) finish(run *Run, interp *Interpreter, exitCode int, projectPath string) {
	sessionID, isNew := interp.Close(exitCode)

	run.sessionID = sessionID
	run.exitCode = exitCode
	if exitCode != 0 {
		run.err = &ExitError{Code: exitCode}
	}

	log.Printf("claude [%s]: exited with code %d", sessionID, exitCode)
	s.publish(events.EventSessionCompleted, sessionID, map[string]interface{}{
		"exitCode":     exitCode,
		"isNewSession": isNew,
	})

	if exitCode == 0 && isNew {
		s.mu.RLock()
		hook := s.onComplete
		s.mu.RUnlock()
		if hook != nil {
			go runHook(hook, projectPath, sessionID)
		}
	}

	close(run.done)
}

func (s *Spawner) fail(run *Run, interp *Interpreter, err error) {
	log.Printf("claude: %v", err)
	interp.Fail(err)
	run.err = err
	s.publish(events.EventSessionFailed, interp.Key(), map[string]interface{}{
		"error": err.Error(),
	})
	close(run.done)
}

// runHook runs the completion hook detached from the request; failures are
// only logged.
func runHook(hook CompletionHook, projectPath, sessionID string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("claude [%s]: completion hook panic: %v", sessionID, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), summaryTimeout)
	defer cancel()
	if err := hook(ctx, projectPath, sessionID); err != nil {
		log.Printf("claude [%s]: completion hook: %v", sessionID, err)
	}
}

// Abort terminates the running command for sessionID and reports whether
// one was running.
func (s *Spawner) Abort(sessionID string) bool {
	ok := s.registry.Abort(sessionID)
	if ok {
		s.publish(events.EventSessionAborted, sessionID, nil)
	}
	return ok
}

// Shutdown terminates every running command and waits for them to finish.
func (s *Spawner) Shutdown(ctx context.Context) error {
	active := s.registry.ActiveSessions()
	if len(active) > 0 {
		log.Printf("claude: terminating %d running command(s)", len(active))
	}
	for _, key := range active {
		s.registry.Abort(key)
	}

	done := make(chan struct{})
	go func() {
		s.runs.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Spawner) publish(eventType, session string, payload map[string]interface{}) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(context.Background(), events.Event{
		Type:    eventType,
		Session: session,
		Payload: payload,
	})
	if err != nil && !errors.Is(err, events.ErrBusClosed) {
		log.Printf("claude: publish %s: %v", eventType, err)
	}
}
