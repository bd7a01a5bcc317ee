// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package projects

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// scanConcurrency bounds how many projects are scanned at once.
const scanConcurrency = 8

const logSuffix = ".jsonl"

var pathEncoder = strings.NewReplacer("/", "-", ".", "-")

// ProjectDir returns the directory name the CLI stores a project under.
func ProjectDir(projectPath string) string {
	return pathEncoder.Replace(filepath.Clean(projectPath))
}

// Store reads the project storage directory.
type Store struct {
	root string
}

// NewStore creates a store over root.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// ListProjects returns every project with its sessions, most recently
// active first. A missing storage directory yields an empty list.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	dirs, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Project{}, nil
		}
		return nil, fmt.Errorf("read projects directory: %w", err)
	}

	var names []string
	for _, d := range dirs {
		if d.IsDir() && !strings.HasPrefix(d.Name(), ".") {
			names = append(names, d.Name())
		}
	}

	projects := make([]Project, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := s.loadProject(name)
			if err != nil {
				return fmt.Errorf("project %s: %w", name, err)
			}
			projects[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].LastActivity.After(projects[j].LastActivity)
	})
	return projects, nil
}

func (s *Store) loadProject(name string) (Project, error) {
	sessions, err := s.ListSessions(name)
	if err != nil {
		return Project{}, err
	}

	p := Project{
		Name:     name,
		Path:     decodeName(name),
		Sessions: sessions,
	}
	if len(sessions) > 0 {
		p.LastActivity = sessions[0].LastActivity
	}
	// The recorded working directory is exact; the decoded name is lossy.
	for _, sess := range sessions {
		if sess.CWD != "" {
			p.Path = sess.CWD
			break
		}
	}
	p.DisplayName = filepath.Base(p.Path)
	return p, nil
}

// decodeName reverses the CLI encoding as far as possible. Dots and
// dashes in the original path are indistinguishable from separators.
func decodeName(name string) string {
	return strings.ReplaceAll(name, "-", "/")
}

// ListSessions returns the sessions of one project, most recently active first.
func (s *Store) ListSessions(project string) ([]SessionInfo, error) {
	dir, err := s.projectPath(project)
	if err != nil {
		return nil, err
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read project directory: %w", err)
	}

	sessions := make([]SessionInfo, 0, len(files))
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, logSuffix) {
			continue
		}
		info, err := scanSession(filepath.Join(dir, name), strings.TrimSuffix(name, logSuffix))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// Removed between ReadDir and open.
				continue
			}
			return nil, err
		}
		sessions = append(sessions, info)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastActivity.After(sessions[j].LastActivity)
	})
	return sessions, nil
}

// LoadMessages returns the conversational entries of a session in log order.
func (s *Store) LoadMessages(project, sessionID string) ([]Message, error) {
	path, err := s.sessionPath(project, sessionID)
	if err != nil {
		return nil, err
	}

	messages := make([]Message, 0)
	err = readEntries(path, func(e *entry) {
		if e.Message == nil || e.Message.Role == "" {
			return
		}
		messages = append(messages, Message{
			Type:      e.Type,
			Role:      e.Message.Role,
			Content:   string(e.Message.Content),
			Timestamp: parseTimestamp(e.Timestamp),
		})
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// AppendSummary records a title for a session. The latest summary entry
// in a log wins.
func (s *Store) AppendSummary(project, sessionID, summary string) error {
	path, err := s.sessionPath(project, sessionID)
	if err != nil {
		return err
	}
	return appendLine(path, summaryEntry{
		SessionID: sessionID,
		Type:      "summary",
		Summary:   summary,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// DeleteSession removes a session log.
func (s *Store) DeleteSession(project, sessionID string) error {
	path, err := s.sessionPath(project, sessionID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete session log: %w", err)
	}
	return nil
}

// FindSession returns the project holding a session log.
func (s *Store) FindSession(sessionID string) (string, error) {
	if err := checkName(sessionID); err != nil {
		return "", err
	}
	matches, err := filepath.Glob(filepath.Join(s.root, "*", sessionID+logSuffix))
	if err != nil {
		return "", fmt.Errorf("glob sessions: %w", err)
	}
	if len(matches) == 0 {
		return "", ErrNotFound
	}
	return filepath.Base(filepath.Dir(matches[0])), nil
}

// ResolveProject maps a project path to the directory holding sessionID.
// The encoded path is tried first; otherwise every project is searched.
func (s *Store) ResolveProject(projectPath, sessionID string) (string, error) {
	if projectPath != "" {
		name := ProjectDir(projectPath)
		if path, err := s.sessionPath(name, sessionID); err == nil {
			if _, err := os.Stat(path); err == nil {
				return name, nil
			}
		}
	}
	return s.FindSession(sessionID)
}

func (s *Store) projectPath(project string) (string, error) {
	if err := checkName(project); err != nil {
		return "", err
	}
	return filepath.Join(s.root, project), nil
}

func (s *Store) sessionPath(project, sessionID string) (string, error) {
	dir, err := s.projectPath(project)
	if err != nil {
		return "", err
	}
	if err := checkName(sessionID); err != nil {
		return "", err
	}
	return filepath.Join(dir, sessionID+logSuffix), nil
}

func checkName(name string) error {
	// Glob metacharacters are refused so FindSession matches one file only.
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\*?[`) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}
