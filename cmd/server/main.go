package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-content/internal/admin"
	"github.com/p-n-ai/pai-content/internal/ai"
	"github.com/p-n-ai/pai-content/internal/api"
	"github.com/p-n-ai/pai-content/internal/content"
	"github.com/p-n-ai/pai-content/internal/curriculum"
	"github.com/p-n-ai/pai-content/internal/platform/config"
	"github.com/p-n-ai/pai-content/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg.Log))

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open content store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	catalog, err := curriculum.NewCatalog(cfg.CurriculumPath)
	if err != nil {
		slog.Error("failed to load curriculum", "error", err)
		os.Exit(1)
	}

	events := newEventLogger(ctx, st)
	router := newAIRouter(cfg)

	srv := &http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: api.New(api.Config{
			Store:   st,
			Catalog: catalog,
			Lessons: content.NewService(content.ServiceConfig{Store: st, AIRouter: router}),
			Events:  events,
		}).Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "backend", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// newLogger builds the process logger from LEARN_LOG_LEVEL and LEARN_LOG_FORMAT.
func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// newEventLogger records audit events in Postgres when content is stored
// there, and discards them otherwise.
func newEventLogger(ctx context.Context, st store.Store) admin.EventLogger {
	ps, ok := st.(*store.PostgresStore)
	if !ok {
		return admin.NopEventLogger{}
	}
	events, err := admin.NewPostgresEventLogger(ctx, ps.DB())
	if err != nil {
		slog.Warn("content events disabled", "error", err)
		return admin.NopEventLogger{}
	}
	return events
}

// newAIRouter returns nil when lesson generation is not configured.
func newAIRouter(cfg *config.Config) *ai.Router {
	if !cfg.HasAIProvider() {
		slog.Info("AI lesson fallback disabled")
		return nil
	}
	router := ai.NewRouter()
	router.Register("google", ai.NewGoogleProvider(cfg.AI.Google.APIKey, ai.WithGoogleModel(cfg.AI.Google.Model)))
	slog.Info("AI lesson fallback enabled", "provider", "google", "model", cfg.AI.Google.Model)
	return router
}
