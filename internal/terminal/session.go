// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package terminal

import (
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	ps "github.com/mitchellh/go-ps"
	"golang.org/x/sys/unix"
)

// Session is one shell running in a pseudo-terminal.
type Session struct {
	ID        string
	CreatedAt time.Time

	cmd  *exec.Cmd
	ptmx *os.File

	mu     sync.Mutex
	cols   int
	rows   int
	killed bool

	done     chan struct{}
	exitCode int
	signal   string
}

// Info describes a live session.
type Info struct {
	ID         string    `json:"id"`
	PID        int       `json:"pid"`
	CreatedAt  time.Time `json:"createdAt"`
	Cols       int       `json:"cols"`
	Rows       int       `json:"rows"`
	Foreground string    `json:"foreground,omitempty"`
}

// PID returns the shell's process ID.
func (s *Session) PID() int {
	if s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// Read reads raw output from the pty.
func (s *Session) Read(p []byte) (int, error) {
	return s.ptmx.Read(p)
}

// Write sends input to the shell.
func (s *Session) Write(data []byte) error {
	if _, err := s.ptmx.Write(data); err != nil {
		return fmt.Errorf("write to pty: %w", err)
	}
	return nil
}

// Resize changes the terminal geometry.
func (s *Session) Resize(cols, rows int) error {
	if cols <= 0 || rows <= 0 || cols > math.MaxUint16 || rows > math.MaxUint16 {
		return fmt.Errorf("invalid size %dx%d", cols, rows)
	}
	if err := pty.Setsize(s.ptmx, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)}); err != nil {
		return fmt.Errorf("resize pty: %w", err)
	}
	s.mu.Lock()
	s.cols, s.rows = cols, rows
	s.mu.Unlock()
	return nil
}

// Kill stops the shell and closes the pty. Calling it again is a no-op.
func (s *Session) Kill() error {
	s.mu.Lock()
	if s.killed {
		s.mu.Unlock()
		return nil
	}
	s.killed = true
	s.mu.Unlock()

	var errs []error
	if s.cmd.Process != nil {
		if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			errs = append(errs, fmt.Errorf("kill shell: %w", err))
		}
	}
	if err := s.ptmx.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		errs = append(errs, fmt.Errorf("close pty: %w", err))
	}
	return errors.Join(errs...)
}

// Done is closed once the shell process has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the shell exits and returns its exit code and, when
// it was killed by a signal, the signal name.
func (s *Session) Wait() (int, string) {
	<-s.done
	return s.exitCode, s.signal
}

func (s *Session) wait() {
	s.cmd.Wait()
	state := s.cmd.ProcessState
	if state != nil {
		s.exitCode = state.ExitCode()
		if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			s.signal = unix.SignalName(ws.Signal())
		}
	}
	close(s.done)
}

// Foreground returns the executable name of the newest process started
// directly by the shell, or "" when the shell is idle.
func (s *Session) Foreground() string {
	pid := s.PID()
	if pid == 0 {
		return ""
	}
	procs, err := ps.Processes()
	if err != nil {
		return ""
	}

	var newest ps.Process
	for _, p := range procs {
		if p.PPid() != pid {
			continue
		}
		if newest == nil || p.Pid() > newest.Pid() {
			newest = p
		}
	}
	if newest == nil {
		return ""
	}
	return newest.Executable()
}

// Info returns a snapshot of the session.
func (s *Session) Info() Info {
	s.mu.Lock()
	cols, rows := s.cols, s.rows
	s.mu.Unlock()

	return Info{
		ID:         s.ID,
		PID:        s.PID(),
		CreatedAt:  s.CreatedAt,
		Cols:       cols,
		Rows:       rows,
		Foreground: s.Foreground(),
	}
}
