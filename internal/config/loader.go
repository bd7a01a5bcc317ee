// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hjson/hjson-go/v4"
)

// Loader handles configuration file loading.
type Loader struct {
	getenv func(string) string
}

// NewLoader creates a new config loader reading overrides from the process environment.
func NewLoader() *Loader {
	return &Loader{getenv: os.Getenv}
}

// NewLoaderWithEnv creates a loader with a custom environment lookup.
func NewLoaderWithEnv(getenv func(string) string) *Loader {
	return &Loader{getenv: getenv}
}

// Load reads and parses the configuration from the given path.
func (l *Loader) Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return l.parse(data)
}

func (l *Loader) parse(data []byte) (*Config, error) {
	// Parse HJSON to intermediate map
	var raw map[string]interface{}
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse hjson: %w", err)
	}

	// Convert to JSON and unmarshal to struct (for type safety)
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert to json: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config with environment overrides and default values applied.
// An empty path yields the default configuration.
func (l *Loader) LoadWithDefaults(ctx context.Context, path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		var err error
		cfg, err = l.Load(ctx, path)
		if err != nil {
			return nil, err
		}
	}

	l.applyEnv(cfg)
	applyDefaults(cfg, l.getenv("HOME"))
	return cfg, nil
}

// FindConfig searches for a config file in the current directory.
// It looks for claudeui.hjson first, then claudeui.json.
func (l *Loader) FindConfig() (string, error) {
	candidates := []string{
		"claudeui.hjson",
		"claudeui.json",
	}

	for _, name := range candidates {
		path := filepath.Join(".", name)
		if _, err := os.Stat(path); err == nil {
			abs, err := filepath.Abs(path)
			if err != nil {
				return path, nil
			}
			return abs, nil
		}
	}

	return "", fmt.Errorf("config file not found (looked for claudeui.hjson, claudeui.json)")
}

// applyEnv copies recognised environment variables over file values.
func (l *Loader) applyEnv(cfg *Config) {
	if port := l.getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = n
		}
	}
	if shell := l.getenv("SHELL"); shell != "" && cfg.Shell.Command == "" {
		cfg.Shell.Command = shell
	}
	cfg.Summary.OpenAIKey = l.getenv("OPENAI_API_KEY")
	cfg.Summary.AnthropicKey = l.getenv("ANTHROPIC_API_KEY")
}

// applyDefaults sets default values for missing config fields.
func applyDefaults(cfg *Config, home string) {
	// Server defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3001
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}

	// Claude defaults
	if cfg.Claude.Binary == "" {
		cfg.Claude.Binary = "claude"
	}
	if cfg.Claude.Model == "" {
		cfg.Claude.Model = "sonnet"
	}

	// Shell defaults
	if cfg.Shell.Command == "" {
		cfg.Shell.Command = "/bin/sh"
	}
	if cfg.Shell.Cols == 0 {
		cfg.Shell.Cols = 80
	}
	if cfg.Shell.Rows == 0 {
		cfg.Shell.Rows = 30
	}
	if cfg.Shell.Term == "" {
		cfg.Shell.Term = "xterm-color"
	}

	// Projects defaults
	if cfg.Projects.Dir == "" {
		cfg.Projects.Dir = filepath.Join(home, ".claude", "projects")
	}
	cfg.Projects.Dir = expandHome(cfg.Projects.Dir, home)
	if cfg.Projects.Debounce == "" {
		cfg.Projects.Debounce = "300ms"
	}

	// Summary defaults
	if cfg.Summary.Provider == "" {
		cfg.Summary.Provider = "openai"
	}
	if cfg.Summary.Model == "" {
		switch cfg.Summary.Provider {
		case "anthropic":
			cfg.Summary.Model = "claude-3-5-haiku-latest"
		default:
			cfg.Summary.Model = "gpt-4o-mini"
		}
	}
	if cfg.Summary.Timeout == "" {
		cfg.Summary.Timeout = "15s"
	}
	if cfg.Summary.MaxWords == 0 {
		cfg.Summary.MaxWords = 5
	}

	// Events defaults
	if cfg.Events.History.MaxEvents == 0 {
		cfg.Events.History.MaxEvents = 1000
	}
	if cfg.Events.History.MaxAge == "" {
		cfg.Events.History.MaxAge = "1h"
	}
}

// expandHome replaces a leading ~ with the given home directory.
func expandHome(path, home string) string {
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
