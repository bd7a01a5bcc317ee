// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package claude

import (
	"bytes"
)

// LineBuffer reassembles newline-terminated lines from arbitrary chunks.
// A line split across two writes is returned once, after its newline arrives.
type LineBuffer struct {
	pending []byte
}

// Feed appends chunk and returns every line completed by it, without the
// trailing newline or carriage return.
func (b *LineBuffer) Feed(chunk []byte) []string {
	b.pending = append(b.pending, chunk...)

	var lines []string
	for {
		i := bytes.IndexByte(b.pending, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(bytes.TrimSuffix(b.pending[:i], []byte("\r"))))
		b.pending = b.pending[i+1:]
	}

	// Release the consumed prefix once everything is used up.
	if len(b.pending) == 0 {
		b.pending = nil
	}
	return lines
}

// Flush returns the unterminated tail, if any, and empties the buffer.
func (b *LineBuffer) Flush() (string, bool) {
	if len(b.pending) == 0 {
		return "", false
	}
	tail := string(bytes.TrimSuffix(b.pending, []byte("\r")))
	b.pending = nil
	return tail, true
}

// Pending returns the number of buffered bytes not yet part of a line.
func (b *LineBuffer) Pending() int {
	return len(b.pending)
}
