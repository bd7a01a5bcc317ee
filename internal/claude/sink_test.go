// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package claude

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// recordingSink captures messages and mirrors them onto a channel.
type recordingSink struct {
	mu   sync.Mutex
	msgs []interface{}
	ch   chan interface{}
	// onSend runs before the message is recorded.
	onSend func(msg interface{})
}

func newRecordingSink() *recordingSink {
	return &recordingSink{ch: make(chan interface{}, 256)}
}

func (s *recordingSink) Send(msg interface{}) error {
	if s.onSend != nil {
		s.onSend(msg)
	}
	s.mu.Lock()
	s.msgs = append(s.msgs, msg)
	s.mu.Unlock()
	s.ch <- msg
	return nil
}

func (s *recordingSink) messages() []interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]interface{}(nil), s.msgs...)
}

func (s *recordingSink) types() []string {
	var out []string
	for _, m := range s.messages() {
		out = append(out, messageType(m))
	}
	return out
}

func messageType(msg interface{}) string {
	data, _ := json.Marshal(msg)
	var head struct {
		Type string `json:"type"`
	}
	json.Unmarshal(data, &head)
	return head.Type
}

// waitFor returns the first message of the given type, failing after a timeout.
func (s *recordingSink) waitFor(t *testing.T, msgType string) interface{} {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case m := <-s.ch:
			if messageType(m) == msgType {
				return m
			}
		case <-deadline:
			t.Fatalf("timeout waiting for %s; got %v", msgType, s.types())
			return nil
		}
	}
}
