// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package claude

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wingedpig/claudeui/internal/protocol"
)

// statusGlyphs are the spinner characters the CLI prints while working.
const statusGlyphs = "✻✹✸✶✳✢✽⚒"

var (
	statusActionRe = regexp.MustCompile(`[✻✹✸✶✳✢✽]\s*(\w+)`)
	statusTokensRe = regexp.MustCompile(`(\d+)\s*tokens`)

	promptPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\?`),
		regexp.MustCompile(`>`),
		regexp.MustCompile(`❯`),
		regexp.MustCompile(`Do you want to`),
		regexp.MustCompile(`\d+\.\s+\w+`),
	}
)

// IsStatusMessage reports whether a text line is a spinner/progress line.
func IsStatusMessage(line string) bool {
	return strings.ContainsAny(line, statusGlyphs) ||
		strings.Contains(line, "tokens") ||
		strings.Contains(line, "esc to interrupt")
}

// ParseStatusMessage extracts the action verb and token count from a
// status line. Missing parts default to "Working" and 0.
func ParseStatusMessage(line string) protocol.StatusData {
	status := protocol.StatusData{
		Message:      line,
		Action:       "Working",
		CanInterrupt: strings.Contains(line, "esc to interrupt"),
	}
	if m := statusActionRe.FindStringSubmatch(line); m != nil {
		status.Action = m[1]
	}
	if m := statusTokensRe.FindStringSubmatch(line); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			status.Tokens = n
		}
	}
	return status
}

// IsInteractivePrompt reports whether a text line asks the user to choose.
func IsInteractivePrompt(line string) bool {
	for _, re := range promptPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
