// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package claude

import (
	"strings"

	"github.com/wingedpig/claudeui/internal/protocol"
)

// DefaultModel is passed with --model when starting a new session.
const DefaultModel = "sonnet"

// SpawnOptions describes one CLI invocation.
type SpawnOptions struct {
	SessionID   string
	Resume      bool
	ProjectPath string // project the session belongs to, used for storage
	CWD         string // working directory; defaults to ProjectPath
	Tools       *protocol.ToolsSettings
	Model       string // defaults to DefaultModel
}

// OptionsFromCommand converts wire options to spawn options.
func OptionsFromCommand(o protocol.CommandOptions) SpawnOptions {
	return SpawnOptions{
		SessionID:   o.SessionID,
		Resume:      o.Resume,
		ProjectPath: o.ProjectPath,
		CWD:         o.CWD,
		Tools:       o.ToolsSettings,
	}
}

// BuildArgs returns the CLI arguments for a command. The order is part of
// the CLI contract:
//
//	--print <command>                  when command is not blank
//	--resume <id>                      when resuming a known session
//	--output-format stream-json --verbose
//	--model <model>                    only for new sessions
//	--dangerously-skip-permissions     drops the tool lists entirely
//	--allowedTools/--disallowedTools   one pair per tool otherwise
func BuildArgs(command string, opts SpawnOptions) []string {
	var args []string

	if strings.TrimSpace(command) != "" {
		args = append(args, "--print", command)
	}

	if opts.Resume && opts.SessionID != "" {
		args = append(args, "--resume", opts.SessionID)
	}

	args = append(args, "--output-format", "stream-json", "--verbose")

	if !opts.Resume {
		model := opts.Model
		if model == "" {
			model = DefaultModel
		}
		args = append(args, "--model", model)
	}

	tools := opts.Tools
	if tools == nil {
		return args
	}
	if tools.SkipPermissions {
		return append(args, "--dangerously-skip-permissions")
	}
	for _, tool := range tools.AllowedTools {
		args = append(args, "--allowedTools", tool)
	}
	for _, tool := range tools.DisallowedTools {
		args = append(args, "--disallowedTools", tool)
	}
	return args
}

// workDir picks the directory the CLI runs in.
func (o SpawnOptions) workDir(fallback string) string {
	if o.CWD != "" {
		return o.CWD
	}
	if o.ProjectPath != "" {
		return o.ProjectPath
	}
	return fallback
}
