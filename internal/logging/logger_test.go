// Caremap - Healthcare Professional Locator and Territorial Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/caremap

package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected default format 'json', got '%s'", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamps enabled by default")
	}
}

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("dataset", "regions").Msg("loaded")

	out := buf.String()
	if !strings.Contains(out, `"message":"loaded"`) {
		t.Errorf("expected message field, got: %s", out)
	}
	if !strings.Contains(out, `"dataset":"regions"`) {
		t.Errorf("expected dataset field, got: %s", out)
	}
}

func TestInitLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	defer Init(DefaultConfig())

	Info().Msg("hidden")
	Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info entry should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn entry missing: %s", out)
	}
}

func TestErr(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	defer Init(DefaultConfig())

	Err(errors.New("boom")).Msg("failed")

	if !strings.Contains(buf.String(), `"error":"boom"`) {
		t.Errorf("expected error field, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCtxAddsIDs(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	defer Init(DefaultConfig())

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr-1")
	ctx = ContextWithSessionID(ctx, "sess-1")

	Ctx(ctx).Info().Msg("with ids")

	out := buf.String()
	for _, want := range []string{`"request_id":"req-1"`, `"correlation_id":"corr-1"`, `"session_id":"sess-1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestContextAccessorsEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if RequestIDFromContext(ctx) != "" {
		t.Error("expected empty request id")
	}
	if CorrelationIDFromContext(ctx) != "" {
		t.Error("expected empty correlation id")
	}
	if SessionIDFromContext(ctx) != "" {
		t.Error("expected empty session id")
	}
}

func TestGenerateIDs(t *testing.T) {
	t.Parallel()

	if got := len(GenerateCorrelationID()); got != 8 {
		t.Errorf("correlation id length = %d, want 8", got)
	}
	if GenerateRequestID() == GenerateRequestID() {
		t.Error("request ids should be unique")
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	defer Init(DefaultConfig())

	logger := WithComponent("routing")
	logger.Info().Msg("ready")

	if !strings.Contains(buf.String(), `"component":"routing"`) {
		t.Errorf("expected component field, got: %s", buf.String())
	}
}
