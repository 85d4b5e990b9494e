package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/p-n-ai/pai-content/internal/platform/database"
)

// Event types written by the content manager.
const (
	EventContentSaved   = "content_saved"
	EventContentCleared = "content_cleared"
)

const dbTimeout = 5 * time.Second

// Event is an audit record of a content change.
type Event struct {
	Key       string
	EventType string
	Data      map[string]any
	CreatedAt time.Time
}

// EventLogger defines event logging behavior.
type EventLogger interface {
	LogEvent(event Event) error
}

// NopEventLogger ignores all events.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(Event) error {
	return nil
}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{
		events: []Event{},
	}
}

func (l *MemoryEventLogger) LogEvent(event Event) error {
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// PostgresEventLogger inserts events into the content_events table.
type PostgresEventLogger struct {
	db *database.DB
}

// NewPostgresEventLogger creates the content_events table when missing.
func NewPostgresEventLogger(ctx context.Context, db *database.DB) (*PostgresEventLogger, error) {
	if db == nil || db.Pool == nil {
		return nil, fmt.Errorf("event logger pool is nil")
	}
	if _, err := db.Pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS content_events (
		id          BIGSERIAL PRIMARY KEY,
		content_key TEXT NOT NULL,
		event_type  TEXT NOT NULL,
		data        JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return nil, fmt.Errorf("create content_events table: %w", err)
	}
	return &PostgresEventLogger{db: db}, nil
}

func (l *PostgresEventLogger) LogEvent(event Event) error {
	if l == nil || l.db == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if event.Key == "" {
		return fmt.Errorf("content key is required")
	}

	payload := event.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if _, err := l.db.Pool.Exec(ctx,
		`INSERT INTO content_events (content_key, event_type, data, created_at)
		 VALUES ($1, $2, $3::jsonb, $4)`,
		event.Key,
		event.EventType,
		string(data),
		createdAt,
	); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	slog.Debug("event logged", "type", event.EventType, "key", event.Key)
	return nil
}
