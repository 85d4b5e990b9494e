package admin

import (
	"fmt"
	"log/slog"

	"github.com/p-n-ai/pai-content/internal/lesson"
	"github.com/p-n-ai/pai-content/internal/store"
)

// Session is one admin's editing session for a chapter. Each tab reloads its
// own saved record on entry and saves independently; tabs share no state.
type Session struct {
	FormState

	coords  lesson.Coordinates
	chapter lesson.Chapter
	store   store.Store
	events  EventLogger
}

// NewSession opens the manager for a chapter on the PDF tab, restoring any
// saved PDF content. A nil events logger discards events.
func NewSession(s store.Store, events EventLogger, coords lesson.Coordinates, chapter lesson.Chapter) (*Session, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if events == nil {
		events = NopEventLogger{}
	}
	sess := &Session{
		FormState: NewFormState(),
		coords:    coords,
		chapter:   chapter,
		store:     s,
		events:    events,
	}
	if err := sess.load(TabPDF); err != nil {
		return nil, err
	}
	return sess, nil
}

// Coordinates returns the chapter coordinates being edited.
func (s *Session) Coordinates() lesson.Coordinates {
	return s.coords
}

// SwitchTab activates tab and restores its saved record, if any. On error the
// active tab is unchanged.
func (s *Session) SwitchTab(tab Tab) error {
	if err := s.load(tab); err != nil {
		return err
	}
	s.Active = tab
	return nil
}

func (s *Session) load(tab Tab) error {
	switch tab {
	case TabPDF:
		for _, t := range lesson.PDFTypes {
			r, ok, err := s.read(t)
			if err != nil {
				return err
			}
			if ok {
				s.PDF = s.PDF.restore(r)
				return nil
			}
		}
	case TabVideo:
		r, ok, err := s.read(lesson.VideoLink)
		if err != nil {
			return err
		}
		if ok {
			s.Video = s.Video.restore(r)
		}
	case TabMCQ:
		r, ok, err := s.read(lesson.MCQSimple)
		if err != nil {
			return err
		}
		if ok {
			s.MCQ = s.MCQ.restore(r)
		}
	default:
		return fmt.Errorf("unknown tab %q", tab)
	}
	return nil
}

// read fetches and decodes the record for t. Undecodable data counts as
// nothing saved.
func (s *Session) read(t lesson.ContentType) (lesson.Record, bool, error) {
	key := s.coords.Key(t)
	text, ok, err := s.store.Get(key)
	if err != nil {
		return lesson.Record{}, false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return lesson.Record{}, false, nil
	}
	r, ok := lesson.Decode(text)
	if !ok {
		slog.Warn("ignoring malformed saved content", "key", key)
		return lesson.Record{}, false, nil
	}
	return r, true, nil
}

// SavePDF validates the PDF form and writes it under the selected type.
func (s *Session) SavePDF() (lesson.Record, error) {
	r, err := lesson.NewPDFRecord(s.chapter, s.coords.Subject, s.PDF.Type, s.PDF.URL)
	if err != nil {
		return lesson.Record{}, err
	}
	return r, s.write(r, nil)
}

// SaveVideo validates the playlist and writes the non-empty links.
func (s *Session) SaveVideo() (lesson.Record, error) {
	r, err := lesson.NewVideoRecord(s.chapter, s.coords.Subject, s.Video.Links[:])
	if err != nil {
		return lesson.Record{}, err
	}
	return r, s.write(r, map[string]any{"links": len(r.VideoLinks)})
}

// SaveMCQ parses the pasted sheet and writes the question set. The report
// lists rows that were skipped or graded leniently.
func (s *Session) SaveMCQ() (lesson.Record, lesson.SheetReport, error) {
	r, report, err := lesson.NewMCQRecord(s.chapter, s.coords.Subject, s.MCQ.Raw)
	if err != nil {
		return lesson.Record{}, report, err
	}
	for _, w := range report.Warnings {
		slog.Warn("mcq sheet row", "chapter", s.chapter.ID, "row", w.Row, "reason", w.Reason)
	}
	return r, report, s.write(r, map[string]any{
		"questions": len(r.Questions),
		"warnings":  len(report.Warnings),
	})
}

func (s *Session) write(r lesson.Record, data map[string]any) error {
	text, err := lesson.Encode(r)
	if err != nil {
		return err
	}
	key := s.coords.Key(r.Type)
	if err := s.store.Set(key, text); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	slog.Info("content saved", "key", key, "type", r.Type, "id", r.ID)

	if data == nil {
		data = map[string]any{}
	}
	data["id"] = r.ID
	data["type"] = string(r.Type)
	if err := s.events.LogEvent(Event{Key: key, EventType: EventContentSaved, Data: data}); err != nil {
		slog.Error("failed to log content event", "key", key, "error", err)
	}
	return nil
}

// Clear deletes the saved content of tab and resets its form.
func (s *Session) Clear(tab Tab) error {
	var types []lesson.ContentType
	switch tab {
	case TabPDF:
		types = lesson.PDFTypes
		s.PDF = NewPDFForm()
	case TabVideo:
		types = []lesson.ContentType{lesson.VideoLink}
		s.Video = VideoForm{}
	case TabMCQ:
		types = []lesson.ContentType{lesson.MCQSimple}
		s.MCQ = MCQForm{}
	default:
		return fmt.Errorf("unknown tab %q", tab)
	}

	for _, t := range types {
		key := s.coords.Key(t)
		if err := s.store.Delete(key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
		if err := s.events.LogEvent(Event{Key: key, EventType: EventContentCleared}); err != nil {
			slog.Error("failed to log content event", "key", key, "error", err)
		}
	}
	slog.Info("content cleared", "chapter", s.chapter.ID, "tab", tab)
	return nil
}
