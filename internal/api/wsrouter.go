// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"log"
	"net/http"

	"github.com/wingedpig/claudeui/internal/api/middleware"
)

// UpgradeRouter dispatches WebSocket upgrade requests by exact path and
// passes every other request to the REST router. An upgrade request for an
// unknown path gets no HTTP response: its connection is closed.
type UpgradeRouter struct {
	routes map[string]http.Handler
	next   http.Handler
}

// NewUpgradeRouter creates a router that falls through to next.
func NewUpgradeRouter(next http.Handler) *UpgradeRouter {
	return &UpgradeRouter{
		routes: make(map[string]http.Handler),
		next:   next,
	}
}

// Handle registers the WebSocket handler for path.
func (u *UpgradeRouter) Handle(path string, h http.HandlerFunc) {
	u.routes[path] = middleware.Logging(middleware.Recovery(h))
}

func (u *UpgradeRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsUpgrade(r) {
		u.next.ServeHTTP(w, r)
		return
	}
	h, ok := u.routes[r.URL.Path]
	if !ok {
		reject(w, r)
		return
	}
	h.ServeHTTP(w, r)
}

func reject(w http.ResponseWriter, r *http.Request) {
	log.Printf("http: closing upgrade request for unknown path %s", r.URL.Path)
	hj, ok := w.(http.Hijacker)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		log.Printf("http: hijack %s: %v", r.URL.Path, err)
		return
	}
	conn.Close()
}
