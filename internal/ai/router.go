package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Router tries registered providers in registration order until one answers.
type Router struct {
	providers map[string]Provider
	fallback  []string
	mu        sync.RWMutex
}

// NewRouter creates a new AI router.
func NewRouter() *Router {
	return &Router{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the end of the fallback chain.
func (r *Router) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; !exists {
		r.fallback = append(r.fallback, name)
	}
	r.providers[name] = provider
}

// Complete routes a request to the first provider that succeeds.
func (r *Router) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.fallback) == 0 {
		return CompletionResponse{}, fmt.Errorf("no AI provider registered")
	}

	var lastErr error
	for _, name := range r.fallback {
		resp, err := r.providers[name].Complete(ctx, req)
		if err != nil {
			slog.Warn("AI provider failed, trying next",
				"provider", name,
				"task", req.Task.String(),
				"error", err,
			)
			lastErr = err
			continue
		}

		slog.Debug("AI request completed",
			"provider", name,
			"task", req.Task.String(),
			"model", resp.Model,
			"tokens", resp.TotalTokens(),
		)
		return resp, nil
	}

	return CompletionResponse{}, fmt.Errorf("all AI providers failed: %w", lastErr)
}

// HasProvider returns true if at least one provider is registered.
func (r *Router) HasProvider() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers) > 0
}

// HealthCheck succeeds when at least one provider answers its health check.
func (r *Router) HealthCheck(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.fallback) == 0 {
		return fmt.Errorf("no AI provider registered")
	}

	var lastErr error
	for _, name := range r.fallback {
		if err := r.providers[name].HealthCheck(ctx); err != nil {
			lastErr = fmt.Errorf("%s: %w", name, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("no healthy AI provider: %w", lastErr)
}
