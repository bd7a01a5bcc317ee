// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config handles HJSON configuration loading for claudeui.
package config

import (
	"time"
)

// Config is the root configuration structure for claudeui.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Claude   ClaudeConfig   `json:"claude"`
	Shell    ShellConfig    `json:"shell"`
	Projects ProjectsConfig `json:"projects"`
	Summary  SummaryConfig  `json:"summary"`
	Events   EventsConfig   `json:"events"`
	Logging  LoggingConfig  `json:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int    `json:"port"`
	Host         string `json:"host"`
	TLSCert      string `json:"tls_cert"`      // Path to TLS certificate file
	TLSKey       string `json:"tls_key"`       // Path to TLS private key file
	TLSTailscale bool   `json:"tls_tailscale"` // Fetch certificates from the local Tailscale daemon
}

// ClaudeConfig holds settings for the assistant CLI subprocesses.
type ClaudeConfig struct {
	Binary      string `json:"binary"`
	Model       string `json:"model"`
	IdleTimeout string `json:"idle_timeout"` // "0" or empty disables the watchdog
}

// ShellConfig holds settings for PTY shell sessions.
type ShellConfig struct {
	Command string `json:"command"`
	Cols    int    `json:"cols"`
	Rows    int    `json:"rows"`
	Term    string `json:"term"`
}

// ProjectsConfig locates the CLI's project storage.
type ProjectsConfig struct {
	Dir      string `json:"dir"`
	Debounce string `json:"debounce"`
}

// SummaryConfig controls session title generation.
type SummaryConfig struct {
	Provider string `json:"provider"` // "openai", "anthropic" or "none"
	Model    string `json:"model"`
	BaseURL  string `json:"base_url"` // API endpoint override
	Timeout  string `json:"timeout"`
	MaxWords int    `json:"max_words"`

	// Populated from the environment, never from the file.
	OpenAIKey    string `json:"-"`
	AnthropicKey string `json:"-"`
}

// EventsConfig configures the event bus.
type EventsConfig struct {
	History EventHistoryConfig `json:"history"`
}

// EventHistoryConfig bounds event retention.
type EventHistoryConfig struct {
	MaxEvents int    `json:"max_events"`
	MaxAge    string `json:"max_age"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Debug bool `json:"debug"`
}

// ParseDuration parses a duration string, returning default on error.
func ParseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// IdleTimeoutDuration returns the CLI watchdog duration, zero when disabled.
func (c *ClaudeConfig) IdleTimeoutDuration() time.Duration {
	return ParseDuration(c.IdleTimeout, 0)
}

// ActiveProvider reports which LLM provider should be used, taking
// available credentials into account. Returns "" for heuristic-only.
func (c *SummaryConfig) ActiveProvider() string {
	switch c.Provider {
	case "none":
		return ""
	case "anthropic":
		if c.AnthropicKey != "" {
			return "anthropic"
		}
		return ""
	default:
		if c.OpenAIKey != "" {
			return "openai"
		}
		return ""
	}
}
