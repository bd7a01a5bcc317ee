// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package summary

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/wingedpig/claudeui/internal/claude"
	"github.com/wingedpig/claudeui/internal/events"
	"github.com/wingedpig/claudeui/internal/projects"
)

// Service titles stored sessions.
type Service struct {
	gen      *Generator
	store    *projects.Store
	registry *claude.Registry
	bus      events.EventBus
}

// NewService creates a summary service. bus may be nil.
func NewService(gen *Generator, store *projects.Store, registry *claude.Registry, bus events.EventBus) *Service {
	return &Service{
		gen:      gen,
		store:    store,
		registry: registry,
		bus:      bus,
	}
}

// Generator returns the title generator.
func (s *Service) Generator() *Generator {
	return s.gen
}

// SummarizeSession generates and stores a title for a finished session.
// Sessions the user renamed are left alone.
func (s *Service) SummarizeSession(ctx context.Context, projectPath, sessionID string) error {
	if s.registry.IsManuallyEdited(sessionID) {
		log.Printf("summary [%s]: manually edited, skipping", sessionID)
		return nil
	}

	project, err := s.store.ResolveProject(projectPath, sessionID)
	if err != nil {
		return fmt.Errorf("locate session %s: %w", sessionID, err)
	}
	stored, err := s.store.LoadMessages(project, sessionID)
	if err != nil {
		return fmt.Errorf("load session %s: %w", sessionID, err)
	}

	messages := make([]Message, 0, len(stored))
	for _, m := range stored {
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}
	title := s.gen.Generate(ctx, messages)

	// The user may have renamed it while the provider was thinking.
	if s.registry.IsManuallyEdited(sessionID) {
		return nil
	}
	if err := s.store.AppendSummary(project, sessionID, title); err != nil {
		return fmt.Errorf("store summary for %s: %w", sessionID, err)
	}

	log.Printf("summary [%s]: %q", sessionID, title)
	s.publish(sessionID, project, title, false)
	return nil
}

// Rename stores a user-chosen title and stops automatic titling for the
// session until the lock is cleared.
func (s *Service) Rename(project, sessionID, title string) error {
	if title == "" {
		return errors.New("summary must not be empty")
	}
	if err := s.store.AppendSummary(project, sessionID, title); err != nil {
		return err
	}
	s.registry.MarkAsManuallyEdited(sessionID)
	s.publish(sessionID, project, title, true)
	return nil
}

// Unlock re-enables automatic titling for a session.
func (s *Service) Unlock(sessionID string) {
	s.registry.ClearManualEditFlag(sessionID)
}

func (s *Service) publish(sessionID, project, title string, manual bool) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(context.Background(), events.Event{
		Type:    events.EventSessionSummarized,
		Session: sessionID,
		Payload: map[string]interface{}{
			"project": project,
			"summary": title,
			"manual":  manual,
		},
	})
	if err != nil && !errors.Is(err, events.ErrBusClosed) {
		log.Printf("summary: publish: %v", err)
	}
}
