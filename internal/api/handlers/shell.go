// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/wingedpig/claudeui/internal/hub"
	"github.com/wingedpig/claudeui/internal/protocol"
	"github.com/wingedpig/claudeui/internal/terminal"
)

// outputDrainWait bounds how long an exited shell's remaining output may
// delay the exit message.
const outputDrainWait = time.Second

// ShellHandler serves the interactive shell WebSocket.
type ShellHandler struct {
	mgr *terminal.Manager
}

// NewShellHandler creates a shell handler.
func NewShellHandler(mgr *terminal.Manager) *ShellHandler {
	return &ShellHandler{mgr: mgr}
}

// ListSessions returns the live shell sessions.
func (h *ShellHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.mgr.List())
}

// WebSocket runs one shell for the lifetime of the connection.
func (h *ShellHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("shell: upgrade failed: %v", err)
		return
	}
	client := hub.NewClient(conn)
	defer client.Close()

	s, err := h.mgr.Create()
	if err != nil {
		log.Printf("shell: %v", err)
		client.Send(protocol.NewShellError(err.Error()))
		return
	}
	defer h.kill(s.ID)

	if err := client.Send(protocol.NewShellSessionID(s.ID)); err != nil {
		return
	}

	stop := client.KeepAlive()
	defer stop()

	outputDone := make(chan struct{})
	go func() {
		defer close(outputDone)
		forwardOutput(s, client)
	}()

	go func() {
		<-s.Done()
		select {
		case <-outputDone:
		case <-time.After(outputDrainWait):
		}
		code, sig := s.Wait()
		client.Send(protocol.NewShellExit(code, sig))
		client.Close()
		h.kill(s.ID)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("shell [%s]: read error: %v", s.ID, err)
			}
			return
		}

		var msg protocol.ShellClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("shell [%s]: invalid message: %v", s.ID, err)
			continue
		}

		switch msg.Type {
		case protocol.TypeShellInput:
			err = h.mgr.Write(s.ID, []byte(msg.Data))
		case protocol.TypeShellResize:
			err = h.mgr.Resize(s.ID, msg.Cols, msg.Rows)
		default:
			log.Printf("shell [%s]: ignoring message type %q", s.ID, msg.Type)
			continue
		}
		if err != nil {
			log.Printf("shell [%s]: %s: %v", s.ID, msg.Type, err)
		}
	}
}

func (h *ShellHandler) kill(id string) {
	if err := h.mgr.Kill(id); err != nil {
		log.Printf("shell [%s]: kill: %v", id, err)
	}
}

// forwardOutput copies pty output to the client until the pty closes. A
// multi-byte character split across reads is held back until complete.
func forwardOutput(s *terminal.Session, client *hub.Client) {
	buf := make([]byte, 4096)
	var carry []byte
	for {
		n, err := s.Read(buf)
		if n > 0 {
			chunk := append(carry, buf[:n]...)
			var out string
			out, carry = splitUTF8(chunk)
			if len(out) > 0 {
				if client.Send(protocol.NewShellOutput(out)) != nil {
					return
				}
			}
		}
		if err != nil {
			return
		}
	}
}

// splitUTF8 returns the longest prefix of b that does not end inside a
// multi-byte character, and the incomplete remainder. Invalid bytes are
// dropped from the prefix.
func splitUTF8(b []byte) (string, []byte) {
	cut := len(b)
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				cut = i
			}
			break
		}
	}
	rest := append([]byte(nil), b[cut:]...)
	return strings.ToValidUTF8(string(b[:cut]), ""), rest
}
