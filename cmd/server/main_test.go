package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/p-n-ai/pai-content/internal/admin"
	"github.com/p-n-ai/pai-content/internal/platform/config"
	"github.com/p-n-ai/pai-content/internal/store"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger := newLogger(config.LogConfig{Level: "warn", Format: "text"})
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !logger.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn should be enabled at warn level")
	}
}

func TestNewAIRouter(t *testing.T) {
	tests := []struct {
		name     string
		fallback bool
		apiKey   string
		wantNil  bool
	}{
		{"no key", true, "", true},
		{"fallback off", false, "key", true},
		{"configured", true, "key", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{AI: config.AIConfig{
				LessonFallback: tt.fallback,
				Google:         config.GoogleConfig{APIKey: tt.apiKey, Model: "gemini-2.5-flash"},
			}}
			router := newAIRouter(cfg)
			if (router == nil) != tt.wantNil {
				t.Fatalf("newAIRouter() = %v, wantNil %v", router, tt.wantNil)
			}
			if router != nil && !router.HasProvider() {
				t.Error("router has no provider")
			}
		})
	}
}

func TestNewEventLogger_NonPostgres(t *testing.T) {
	events := newEventLogger(context.Background(), store.NewMemoryStore())
	if _, ok := events.(admin.NopEventLogger); !ok {
		t.Errorf("newEventLogger() = %T, want NopEventLogger", events)
	}
}
