// Package api exposes the content manager and lesson delivery over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/p-n-ai/pai-content/internal/admin"
	"github.com/p-n-ai/pai-content/internal/content"
	"github.com/p-n-ai/pai-content/internal/curriculum"
	"github.com/p-n-ai/pai-content/internal/lesson"
	"github.com/p-n-ai/pai-content/internal/store"
)

const (
	maxJSONBody   = 1 << 20
	maxUploadBody = 10 << 20
	readyTimeout  = 2 * time.Second
)

var errUnknownChapter = errors.New("chapter not found")

// Config holds dependencies for the HTTP server.
type Config struct {
	Store   store.Store
	Catalog *curriculum.Catalog
	Lessons *content.Service // optional; built from Store when nil
	Events  admin.EventLogger
}

// Server routes admin and lesson requests.
type Server struct {
	store   store.Store
	catalog *curriculum.Catalog
	lessons *content.Service
	events  admin.EventLogger
}

// New creates a Server.
func New(cfg Config) *Server {
	lessons := cfg.Lessons
	if lessons == nil {
		lessons = content.NewService(content.ServiceConfig{Store: cfg.Store})
	}
	events := cfg.Events
	if events == nil {
		events = admin.NopEventLogger{}
	}
	return &Server{
		store:   cfg.Store,
		catalog: cfg.Catalog,
		lessons: lessons,
		events:  events,
	}
}

// Handler returns the HTTP router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /api/curriculum/subjects", s.handleListSubjects)
	mux.HandleFunc("GET /api/curriculum/chapters", s.handleListChapters)

	mux.HandleFunc("GET /api/admin/chapters/{chapter}/content/{tab}", s.handleGetForm)
	mux.HandleFunc("POST /api/admin/chapters/{chapter}/content/pdf", s.handleSavePDF)
	mux.HandleFunc("POST /api/admin/chapters/{chapter}/content/video", s.handleSaveVideo)
	mux.HandleFunc("POST /api/admin/chapters/{chapter}/content/mcq", s.handleSaveMCQ)
	mux.HandleFunc("POST /api/admin/mcq/preview", s.handlePreviewMCQ)
	mux.HandleFunc("DELETE /api/admin/chapters/{chapter}/content/{tab}", s.handleClear)

	mux.HandleFunc("GET /api/lessons/{chapter}", s.handleGetLesson)
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		slog.Warn("readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	resp := map[string]string{"status": "ready"}
	// An unhealthy AI provider does not fail readiness.
	if s.lessons.AIEnabled() {
		resp["ai"] = "ok"
		if err := s.lessons.HealthCheck(ctx); err != nil {
			slog.Warn("AI provider unhealthy", "error", err)
			resp["ai"] = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	coords := coordsFromQuery(r, "")
	if err := requireClass(coords); err != nil {
		s.writeError(w, err)
		return
	}
	subjects := s.catalog.Subjects(coords.Board, coords.ClassLevel, coords.Stream)
	if subjects == nil {
		subjects = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"subjects": subjects})
}

func (s *Server) handleListChapters(w http.ResponseWriter, r *http.Request) {
	coords := coordsFromQuery(r, "")
	if err := requireCoords(coords, false); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chapters": s.catalog.Chapters(coords)})
}

// session resolves the chapter and opens an admin session on it.
func (s *Server) session(coords lesson.Coordinates) (*admin.Session, error) {
	if err := requireCoords(coords, true); err != nil {
		return nil, err
	}
	chapter, ok := s.catalog.Chapter(coords)
	if !ok {
		return nil, errUnknownChapter
	}
	return admin.NewSession(s.store, s.events, coords, chapter)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ve *lesson.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, errUnknownChapter), errors.Is(err, content.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &lesson.ValidationError{Field: "body", Message: "Invalid JSON body"}
	}
	return nil
}

func coordsFromQuery(r *http.Request, chapterID string) lesson.Coordinates {
	q := r.URL.Query()
	return lesson.Coordinates{
		Board:      lesson.Board(q.Get("board")),
		ClassLevel: lesson.ClassLevel(q.Get("class")),
		Stream:     lesson.Stream(q.Get("stream")),
		Subject:    q.Get("subject"),
		ChapterID:  chapterID,
	}
}

func requireClass(c lesson.Coordinates) error {
	switch {
	case strings.TrimSpace(string(c.Board)) == "":
		return &lesson.ValidationError{Field: "board", Message: "board is required"}
	case strings.TrimSpace(string(c.ClassLevel)) == "":
		return &lesson.ValidationError{Field: "class", Message: "class is required"}
	}
	return nil
}

func requireCoords(c lesson.Coordinates, chapter bool) error {
	if err := requireClass(c); err != nil {
		return err
	}
	switch {
	case strings.TrimSpace(c.Subject) == "":
		return &lesson.ValidationError{Field: "subject", Message: "subject is required"}
	case chapter && strings.TrimSpace(c.ChapterID) == "":
		return &lesson.ValidationError{Field: "chapter", Message: "chapter is required"}
	}
	return nil
}
