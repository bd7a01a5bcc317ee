// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package summary turns a finished conversation into a short imperative
// title, asking an LLM when one is configured and falling back to a local
// keyword heuristic otherwise.
package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wingedpig/claudeui/internal/protocol"
)

// DefaultTitle is used when a conversation has nothing to summarise.
const DefaultTitle = "New Session"

// caveatMarker tags system messages the CLI injects around local commands.
const caveatMarker = "Caveat:"

const (
	fallbackWords   = 5
	fallbackMaxLen  = 50
	transcriptLimit = 10
	messageLimit    = 500
)

var (
	errEmptyReply   = errors.New("empty reply")
	errReplyTooLong = errors.New("reply too long")
)

// Message is one conversation entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UnmarshalJSON accepts content as a string or as the CLI's array of
// content blocks.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    string           `json:"role"`
		Content protocol.Content `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Role = raw.Role
	m.Content = string(raw.Content)
	return nil
}

// Provider is an LLM that can complete a single prompt.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Generator produces session titles. A nil provider means heuristic only.
type Generator struct {
	provider Provider
	timeout  time.Duration
	maxWords int
}

// NewGenerator creates a generator. provider may be nil.
func NewGenerator(provider Provider, timeout time.Duration, maxWords int) *Generator {
	if maxWords <= 0 {
		maxWords = fallbackWords
	}
	return &Generator{
		provider: provider,
		timeout:  timeout,
		maxWords: maxWords,
	}
}

// ProviderName returns the configured provider, or "" when none is set.
func (g *Generator) ProviderName() string {
	if g.provider == nil {
		return ""
	}
	return g.provider.Name()
}

// Generate returns a title for messages. It never fails: provider errors
// fall back to the local heuristic.
func (g *Generator) Generate(ctx context.Context, messages []Message) string {
	filtered := Filter(messages)
	if len(filtered) == 0 {
		return DefaultTitle
	}

	fallback := Fallback(filtered)
	if g.provider == nil {
		return fallback
	}

	title, err := g.ask(ctx, filtered)
	if err != nil {
		log.Printf("summary: %s: %v, using fallback", g.provider.Name(), err)
		return fallback
	}
	return title
}

func (g *Generator) ask(ctx context.Context, messages []Message) (title string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	system := fmt.Sprintf("You title coding assistant conversations. Reply with one short title of at most %d words "+
		"in imperative mood, such as \"Fix login error\" or \"Add dark mode toggle\". Reply with the title only.", g.maxWords)

	reply, err := g.provider.Complete(ctx, system, transcript(messages))
	if err != nil {
		return "", err
	}
	return g.clean(reply)
}

// clean normalises a model reply and rejects anything that is not a title.
func (g *Generator) clean(reply string) (string, error) {
	reply = strings.TrimSpace(reply)
	if i := strings.IndexByte(reply, '\n'); i >= 0 {
		reply = reply[:i]
	}
	reply = strings.Trim(reply, " \t\"'`*")
	reply = strings.TrimSuffix(reply, ".")
	reply = strings.TrimSpace(reply)

	if reply == "" {
		return "", errEmptyReply
	}
	if len(strings.Fields(reply)) > g.maxWords {
		return "", fmt.Errorf("%w: %q", errReplyTooLong, reply)
	}
	return reply, nil
}

// transcript renders the start of a conversation for the prompt.
func transcript(messages []Message) string {
	if len(messages) > transcriptLimit {
		messages = messages[:transcriptLimit]
	}
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(truncate(m.Content, messageLimit))
		b.WriteString("\n")
	}
	return b.String()
}

// Filter keeps entries with both a role and content, dropping injected
// system caveats.
func Filter(messages []Message) []Message {
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "" || strings.TrimSpace(m.Content) == "" {
			continue
		}
		if m.Role == "system" && strings.Contains(m.Content, caveatMarker) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// intents are checked in order against the lower-cased first user message.
var intents = []struct {
	all   []string
	any   []string
	title string
}{
	{all: []string{"fix", "error"}, title: "Fix error"},
	{all: []string{"fix", "bug"}, title: "Fix bug"},
	{any: []string{"add", "create"}, title: "Add new feature"},
	{any: []string{"update", "change"}, title: "Update code"},
	{any: []string{"refactor"}, title: "Refactor code"},
	{any: []string{"test"}, title: "Add tests"},
	{any: []string{"debug"}, title: "Debug issue"},
	{any: []string{"implement"}, title: "Implement feature"},
}

// Fallback derives a title from the first user message without an LLM.
func Fallback(messages []Message) string {
	var first string
	for _, m := range messages {
		if m.Role == "user" {
			first = m.Content
			break
		}
	}
	if strings.TrimSpace(first) == "" {
		return DefaultTitle
	}

	lower := strings.ToLower(first)
	for _, in := range intents {
		if matchAll(lower, in.all) && matchAny(lower, in.any) {
			return in.title
		}
	}

	words := strings.Fields(first)
	if len(words) > fallbackWords {
		words = words[:fallbackWords]
	}
	return truncate(strings.Join(words, " "), fallbackMaxLen)
}

func matchAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func matchAny(s string, subs []string) bool {
	if len(subs) == 0 {
		return true
	}
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
