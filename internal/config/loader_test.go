// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoader_Load_HJSONFeatures(t *testing.T) {
	configContent := `{
		// This is a comment
		server: {
			port: 8080,
			host: 0.0.0.0,
		}

		# Hash comment
		claude: {
			binary: /usr/local/bin/claude
			model: opus
			idle_timeout: 30m
		}

		shell: {
			command: /bin/zsh
			cols: 120
		}
	}`

	cfg := loadFromString(t, configContent)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "/usr/local/bin/claude", cfg.Claude.Binary)
	assert.Equal(t, "opus", cfg.Claude.Model)
	assert.Equal(t, 30*time.Minute, cfg.Claude.IdleTimeoutDuration())
	assert.Equal(t, "/bin/zsh", cfg.Shell.Command)
	assert.Equal(t, 120, cfg.Shell.Cols)
}

func TestLoader_Load_InvalidHJSON(t *testing.T) {
	loader := NewLoader()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "claudeui.hjson")
	require.NoError(t, os.WriteFile(path, []byte(`{ server: { port: `), 0644))

	_, err := loader.Load(context.Background(), path)
	assert.Error(t, err)
}

func TestLoader_Load_FileNotFound(t *testing.T) {
	loader := NewLoader()
	_, err := loader.Load(context.Background(), "/nonexistent/claudeui.hjson")
	assert.Error(t, err)
}

func TestLoader_LoadWithDefaults_NoFile(t *testing.T) {
	loader := NewLoaderWithEnv(envMap(map[string]string{"HOME": "/home/alice"}))

	cfg, err := loader.LoadWithDefaults(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "claude", cfg.Claude.Binary)
	assert.Equal(t, "sonnet", cfg.Claude.Model)
	assert.Equal(t, time.Duration(0), cfg.Claude.IdleTimeoutDuration())
	assert.Equal(t, "/bin/sh", cfg.Shell.Command)
	assert.Equal(t, 80, cfg.Shell.Cols)
	assert.Equal(t, 30, cfg.Shell.Rows)
	assert.Equal(t, "xterm-color", cfg.Shell.Term)
	assert.Equal(t, "/home/alice/.claude/projects", cfg.Projects.Dir)
	assert.Equal(t, "300ms", cfg.Projects.Debounce)
	assert.Equal(t, 5, cfg.Summary.MaxWords)
	assert.Equal(t, 1000, cfg.Events.History.MaxEvents)

	assert.NoError(t, NewValidator().Validate(cfg))
}

func TestLoader_LoadWithDefaults_Environment(t *testing.T) {
	loader := NewLoaderWithEnv(envMap(map[string]string{
		"HOME":           "/home/bob",
		"PORT":           "4000",
		"SHELL":          "/bin/bash",
		"OPENAI_API_KEY": "sk-test",
	}))

	cfg, err := loader.LoadWithDefaults(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "/bin/bash", cfg.Shell.Command)
	assert.Equal(t, "sk-test", cfg.Summary.OpenAIKey)
	assert.Equal(t, "openai", cfg.Summary.ActiveProvider())
}

func TestLoader_LoadWithDefaults_FileShellWinsOverEnv(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "claudeui.hjson")
	require.NoError(t, os.WriteFile(path, []byte(`{ shell: { command: /bin/fish }, projects: { dir: "~/sessions" } }`), 0644))

	loader := NewLoaderWithEnv(envMap(map[string]string{"HOME": "/home/carol", "SHELL": "/bin/bash"}))
	cfg, err := loader.LoadWithDefaults(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "/bin/fish", cfg.Shell.Command)
	assert.Equal(t, "/home/carol/sessions", cfg.Projects.Dir)
}

func TestLoader_LoadWithDefaults_BadPortIgnored(t *testing.T) {
	loader := NewLoaderWithEnv(envMap(map[string]string{"PORT": "not-a-port"}))
	cfg, err := loader.LoadWithDefaults(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 3001, cfg.Server.Port)
}

func TestSummaryConfig_ActiveProvider(t *testing.T) {
	tests := []struct {
		name string
		cfg  SummaryConfig
		want string
	}{
		{"openai without key", SummaryConfig{Provider: "openai"}, ""},
		{"openai with key", SummaryConfig{Provider: "openai", OpenAIKey: "k"}, "openai"},
		{"default provider uses openai key", SummaryConfig{OpenAIKey: "k"}, "openai"},
		{"anthropic with key", SummaryConfig{Provider: "anthropic", AnthropicKey: "k"}, "anthropic"},
		{"anthropic without key", SummaryConfig{Provider: "anthropic", OpenAIKey: "k"}, ""},
		{"none", SummaryConfig{Provider: "none", OpenAIKey: "k"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.ActiveProvider())
		})
	}
}

func TestLoader_FindConfig(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldWd)

	require.NoError(t, os.Chdir(tmpDir))

	loader := NewLoader()
	_, err = loader.FindConfig()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "claudeui.json"), []byte(`{}`), 0644))
	path, err := loader.FindConfig()
	require.NoError(t, err)
	assert.Equal(t, "claudeui.json", filepath.Base(path))

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "claudeui.hjson"), []byte(`{}`), 0644))
	path, err = loader.FindConfig()
	require.NoError(t, err)
	assert.Equal(t, "claudeui.hjson", filepath.Base(path))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, time.Second, ParseDuration("", time.Second))
	assert.Equal(t, time.Second, ParseDuration("bogus", time.Second))
	assert.Equal(t, 5*time.Minute, ParseDuration("5m", time.Second))
}

// loadFromString writes content to a temp file and loads it.
func loadFromString(t *testing.T, content string) *Config {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "claudeui.hjson")

	err := os.WriteFile(configPath, []byte(content), 0644)
	require.NoError(t, err)

	loader := NewLoader()
	cfg, err := loader.Load(context.Background(), configPath)
	require.NoError(t, err)

	return cfg
}
