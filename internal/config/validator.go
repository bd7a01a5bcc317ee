// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validator validates configuration against schema rules.
type Validator struct{}

// NewValidator creates a new config validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidationError contains multiple validation failures.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single field validation error.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, "; ")
}

// IsEmpty returns true if there are no validation errors.
func (e *ValidationError) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Add adds a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Validate checks configuration validity. Defaults are expected to be applied.
func (v *Validator) Validate(cfg *Config) error {
	errs := &ValidationError{}

	v.validateServer(cfg, errs)
	v.validateClaude(cfg, errs)
	v.validateShell(cfg, errs)
	v.validateSummary(cfg, errs)
	v.validateDurations(cfg, errs)

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

func (v *Validator) validateServer(cfg *Config, errs *ValidationError) {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs.Add("server.port", fmt.Sprintf("must be between 1 and 65535, got %d", cfg.Server.Port))
	}
	if (cfg.Server.TLSCert == "") != (cfg.Server.TLSKey == "") {
		errs.Add("server.tls_cert", "tls_cert and tls_key must be set together")
	}
	if cfg.Server.TLSTailscale && cfg.Server.TLSCert != "" {
		errs.Add("server.tls_tailscale", "cannot be combined with tls_cert")
	}
}

func (v *Validator) validateClaude(cfg *Config, errs *ValidationError) {
	if strings.TrimSpace(cfg.Claude.Binary) == "" {
		errs.Add("claude.binary", "is required")
	}
}

func (v *Validator) validateShell(cfg *Config, errs *ValidationError) {
	if cfg.Shell.Cols < 0 || cfg.Shell.Cols > 1000 {
		errs.Add("shell.cols", "must be between 1 and 1000")
	}
	if cfg.Shell.Rows < 0 || cfg.Shell.Rows > 1000 {
		errs.Add("shell.rows", "must be between 1 and 1000")
	}
}

func (v *Validator) validateSummary(cfg *Config, errs *ValidationError) {
	switch cfg.Summary.Provider {
	case "", "openai", "anthropic", "none":
	default:
		errs.Add("summary.provider", fmt.Sprintf("unknown provider %q (want openai, anthropic or none)", cfg.Summary.Provider))
	}
	if cfg.Summary.MaxWords < 0 {
		errs.Add("summary.max_words", "must not be negative")
	}
}

func (v *Validator) validateDurations(cfg *Config, errs *ValidationError) {
	checks := []struct {
		field string
		value string
	}{
		{"claude.idle_timeout", cfg.Claude.IdleTimeout},
		{"projects.debounce", cfg.Projects.Debounce},
		{"summary.timeout", cfg.Summary.Timeout},
		{"events.history.max_age", cfg.Events.History.MaxAge},
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		d, err := time.ParseDuration(c.value)
		if err != nil {
			errs.Add(c.field, fmt.Sprintf("invalid duration %q", c.value))
			continue
		}
		if d < 0 {
			errs.Add(c.field, "must not be negative")
		}
	}
}
