// Package content serves chapter lessons to learners. Admin-saved records
// take precedence; notes for chapters nobody has curated yet can be drafted
// by the AI gateway.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/p-n-ai/pai-content/internal/ai"
	"github.com/p-n-ai/pai-content/internal/lesson"
	"github.com/p-n-ai/pai-content/internal/store"
)

const defaultMaxTokens = 2048

// ErrNotFound is returned when no saved or generated content exists.
var ErrNotFound = errors.New("content not found")

// ServiceConfig holds dependencies for the lesson service.
type ServiceConfig struct {
	Store     store.Store
	AIRouter  *ai.Router // optional; nil disables generated notes
	MaxTokens int        // completion budget for generated notes (default 2048)
}

// Service resolves the lesson shown for a chapter.
type Service struct {
	store     store.Store
	aiRouter  *ai.Router
	maxTokens int
}

// Lesson is a record together with its origin.
type Lesson struct {
	Record    lesson.Record `json:"record"`
	Generated bool          `json:"generated"`
}

// NewService creates a lesson service.
func NewService(cfg ServiceConfig) *Service {
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	return &Service{
		store:     cfg.Store,
		aiRouter:  cfg.AIRouter,
		maxTokens: maxTokens,
	}
}

// Lesson returns the saved record of type t for the chapter. When nothing is
// saved and t is a notes type, AI-drafted notes are returned instead. Drafted
// notes are never written back to the store.
func (s *Service) Lesson(ctx context.Context, coords lesson.Coordinates, chapter lesson.Chapter, t lesson.ContentType) (Lesson, error) {
	if !t.Valid() {
		return Lesson{}, fmt.Errorf("unknown content type %q", t)
	}

	key := coords.Key(t)
	text, ok, err := s.store.Get(key)
	if err != nil {
		return Lesson{}, fmt.Errorf("load %s: %w", key, err)
	}
	if ok {
		if r, ok := lesson.Decode(text); ok {
			return Lesson{Record: r}, nil
		}
		slog.Warn("ignoring malformed saved content", "key", key)
	}

	if !t.IsPDF() || !s.AIEnabled() {
		return Lesson{}, ErrNotFound
	}
	return s.generate(ctx, coords, chapter)
}

// HealthCheck reports whether drafted notes can be served. It is nil when no
// AI router is configured.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.aiRouter == nil {
		return nil
	}
	return s.aiRouter.HealthCheck(ctx)
}

// AIEnabled reports whether notes can be drafted for unsaved chapters.
func (s *Service) AIEnabled() bool {
	return s.aiRouter != nil && s.aiRouter.HasProvider()
}

func (s *Service) generate(ctx context.Context, coords lesson.Coordinates, chapter lesson.Chapter) (Lesson, error) {
	resp, err := s.aiRouter.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: notesPrompt},
			{Role: "user", Content: describeChapter(coords, chapter)},
		},
		MaxTokens: s.maxTokens,
		Task:      ai.TaskLessonNotes,
	})
	if err != nil {
		return Lesson{}, fmt.Errorf("generate notes for %s: %w", chapter.ID, err)
	}

	notes := strings.TrimSpace(resp.Content)
	if notes == "" {
		return Lesson{}, fmt.Errorf("generate notes for %s: empty response", chapter.ID)
	}

	r, err := lesson.NewPDFRecord(chapter, coords.Subject, lesson.NotesSimple, notes)
	if err != nil {
		return Lesson{}, err
	}

	slog.Info("generated lesson notes",
		"chapter", chapter.ID,
		"model", resp.Model,
		"tokens", resp.TotalTokens(),
	)
	return Lesson{Record: r, Generated: true}, nil
}

const notesPrompt = `You write concise study notes for school students.

Rules:
- Cover the key ideas, definitions and formulas of the chapter.
- Use short sections with headings and bullet points.
- Include one worked example where the chapter has calculations.
- Plain Markdown only. No preamble.`

func describeChapter(coords lesson.Coordinates, chapter lesson.Chapter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Board: %s\nClass: %s\n", coords.Board, coords.ClassLevel)
	if coords.ClassLevel.HasStream() && coords.Stream != "" {
		fmt.Fprintf(&b, "Stream: %s\n", coords.Stream)
	}
	fmt.Fprintf(&b, "Subject: %s\nChapter: %s", coords.Subject, chapter.Title)
	return b.String()
}
