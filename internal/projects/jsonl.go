// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package projects

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Lines holding large tool output can run to megabytes.
const maxLineSize = 10 * 1024 * 1024

// readEntries calls fn for every well-formed line of a session log.
// Malformed lines are skipped.
func readEntries(path string, fn func(e *entry)) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("open session log: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 256*1024), maxLineSize)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		fn(&e)
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			log.Printf("projects: %s: stopped at oversized line", path)
			return nil
		}
		return fmt.Errorf("read session log: %w", err)
	}
	return nil
}

// scanSession builds the summary of one session log.
func scanSession(path, id string) (SessionInfo, error) {
	info := SessionInfo{ID: id}
	err := readEntries(path, func(e *entry) {
		if info.CWD == "" && e.CWD != "" {
			info.CWD = e.CWD
		}
		if e.Type == "summary" && e.Summary != "" {
			info.Summary = e.Summary
		}
		if e.Message != nil && e.Message.Role != "" {
			info.MessageCount++
		}
		if ts := parseTimestamp(e.Timestamp); ts.After(info.LastActivity) {
			info.LastActivity = ts
		}
	})
	if err != nil {
		return info, err
	}

	if info.LastActivity.IsZero() {
		if st, err := os.Stat(path); err == nil {
			info.LastActivity = st.ModTime()
		}
	}
	if info.Summary == "" {
		info.Summary = "New Session"
	}
	return info, nil
}

// appendLine writes v as one JSON line at the end of path. The file must
// already exist.
func appendLine(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("open session log: %w", err)
	}

	if err := ensureNewline(f); err != nil {
		f.Close()
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("append entry: %w", err)
	}
	return f.Close()
}

// ensureNewline terminates a trailing partial line so the appended entry
// starts on its own line.
func ensureNewline(f *os.File) error {
	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat session log: %w", err)
	}
	if st.Size() == 0 {
		return nil
	}

	r, err := os.Open(f.Name())
	if err != nil {
		return fmt.Errorf("open session log: %w", err)
	}
	defer r.Close()

	last := make([]byte, 1)
	if _, err := r.ReadAt(last, st.Size()-1); err != nil && err != io.EOF {
		return fmt.Errorf("read session log: %w", err)
	}
	if last[0] == '\n' {
		return nil
	}
	if _, err := f.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}
