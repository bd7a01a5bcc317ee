// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package claude

import (
	"errors"
	"os"
	"os/exec"
	"strconv"
	"syscall"
)

// cliProcess wraps a started exec.Cmd.
type cliProcess struct {
	cmd *exec.Cmd
}

func (p *cliProcess) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Terminate sends SIGTERM. Signalling an exited process is not an error.
func (p *cliProcess) Terminate() error {
	if p.cmd.Process == nil {
		return nil
	}
	err := p.cmd.Process.Signal(syscall.SIGTERM)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

// Kill sends SIGKILL.
func (p *cliProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	err := p.cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

// ExitError reports a non-zero CLI exit code to internal callers of Run.Wait.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return "claude exited with code " + strconv.Itoa(e.Code)
}
