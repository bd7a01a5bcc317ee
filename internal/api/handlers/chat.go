// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/wingedpig/claudeui/internal/claude"
	"github.com/wingedpig/claudeui/internal/hub"
	"github.com/wingedpig/claudeui/internal/protocol"
)

// ChatHandler serves the chat WebSocket that drives CLI commands.
type ChatHandler struct {
	spawner *claude.Spawner
	hub     *hub.Hub
}

// NewChatHandler creates a chat handler.
func NewChatHandler(spawner *claude.Spawner, h *hub.Hub) *ChatHandler {
	return &ChatHandler{spawner: spawner, hub: h}
}

// WebSocket handles one chat connection. The socket is a hub member until
// it closes. Running commands outlive the socket; their remaining output
// is discarded.
func (h *ChatHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("chat: upgrade failed: %v", err)
		return
	}
	client := hub.NewClient(conn)
	h.hub.Add(client)
	log.Printf("chat: client connected from %s (%d connected)", r.RemoteAddr, h.hub.Len())
	defer func() {
		h.hub.Remove(client)
		client.Close()
		log.Printf("chat: client disconnected (%d connected)", h.hub.Len())
	}()

	stop := client.KeepAlive()
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("chat: read error: %v", err)
			}
			return
		}

		var msg protocol.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			client.Send(protocol.NewClaudeError("invalid message: "+err.Error(), ""))
			continue
		}
		h.dispatch(client, msg)
	}
}

func (h *ChatHandler) dispatch(client *hub.Client, msg protocol.ClientMessage) {
	switch msg.Type {
	case protocol.TypeClaudeCommand:
		// Failures reach the client as claude-error through the sink.
		if _, err := h.spawner.Spawn(msg.Command, claude.OptionsFromCommand(msg.Options), client); err != nil {
			log.Printf("chat: spawn: %v", err)
		}

	case protocol.TypeAbortSession:
		ok := h.spawner.Abort(msg.SessionID)
		log.Printf("chat: abort %s: %v", msg.SessionID, ok)
		client.Send(protocol.NewSessionAborted(msg.SessionID, ok))

	default:
		log.Printf("chat: ignoring message type %q", msg.Type)
	}
}
