package api

import (
	"mime"
	"net/http"

	"github.com/p-n-ai/pai-content/internal/admin"
	"github.com/p-n-ai/pai-content/internal/lesson"
	"github.com/p-n-ai/pai-content/internal/spreadsheet"
)

type formResponse struct {
	Tab     admin.Tab           `json:"tab"`
	Form    any                 `json:"form"`
	Preview *lesson.SheetReport `json:"preview,omitempty"`
}

type saveResponse struct {
	Key      string              `json:"key"`
	Record   lesson.Record       `json:"record"`
	Warnings []lesson.RowWarning `json:"warnings,omitempty"`
}

type pdfRequest struct {
	lesson.Coordinates
	Type lesson.ContentType `json:"type"`
	URL  string             `json:"url"`
}

type videoRequest struct {
	lesson.Coordinates
	Links []string `json:"links"`
}

type mcqRequest struct {
	lesson.Coordinates
	Raw string `json:"raw"`
}

func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	tab, err := admin.ParseTab(r.PathValue("tab"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	sess, err := s.session(coordsFromQuery(r, r.PathValue("chapter")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.SwitchTab(tab); err != nil {
		s.writeError(w, err)
		return
	}

	resp := formResponse{Tab: tab}
	switch tab {
	case admin.TabPDF:
		resp.Form = sess.PDF
	case admin.TabVideo:
		resp.Form = sess.Video
	case admin.TabMCQ:
		resp.Form = sess.MCQ
		if sess.MCQ.Raw != "" {
			report := sess.MCQ.Preview()
			resp.Preview = &report
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSavePDF(w http.ResponseWriter, r *http.Request) {
	var req pdfRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	req.ChapterID = r.PathValue("chapter")

	sess, err := s.session(req.Coordinates)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.Type != "" {
		if !req.Type.IsPDF() {
			s.writeError(w, &lesson.ValidationError{Field: "type", Message: "Choose a notes or PDF content type"})
			return
		}
		sess.PDF = sess.PDF.SelectType(req.Type)
	}
	sess.PDF = sess.PDF.SetURL(req.URL)

	rec, err := sess.SavePDF()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{Key: req.Key(rec.Type), Record: rec})
}

func (s *Server) handleSaveVideo(w http.ResponseWriter, r *http.Request) {
	var req videoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	req.ChapterID = r.PathValue("chapter")
	if len(req.Links) > lesson.MaxVideoLinks {
		s.writeError(w, &lesson.ValidationError{Field: "links", Message: "A playlist holds at most 10 links"})
		return
	}

	sess, err := s.session(req.Coordinates)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess.Video = sess.Video.SetLinks(req.Links)

	rec, err := sess.SaveVideo()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{Key: req.Key(rec.Type), Record: rec})
}

// handleSaveMCQ accepts pasted text as JSON or an .xlsx upload as multipart
// form data (fields board, class, stream, subject, sheet and file).
func (s *Server) handleSaveMCQ(w http.ResponseWriter, r *http.Request) {
	var req mcqRequest
	if isMultipart(r) {
		if err := s.readUpload(w, r, &req); err != nil {
			s.writeError(w, err)
			return
		}
	} else if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	req.ChapterID = r.PathValue("chapter")

	sess, err := s.session(req.Coordinates)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess.MCQ = sess.MCQ.SetRaw(req.Raw)

	rec, report, err := sess.SaveMCQ()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{Key: req.Key(rec.Type), Record: rec, Warnings: report.Warnings})
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, req *mcqRequest) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		return &lesson.ValidationError{Field: "file", Message: "Invalid upload"}
	}
	req.Coordinates = lesson.Coordinates{
		Board:      lesson.Board(r.FormValue("board")),
		ClassLevel: lesson.ClassLevel(r.FormValue("class")),
		Stream:     lesson.Stream(r.FormValue("stream")),
		Subject:    r.FormValue("subject"),
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return &lesson.ValidationError{Field: "file", Message: "Attach an .xlsx file"}
	}
	defer file.Close()

	raw, err := spreadsheet.ReadTSV(file, r.FormValue("sheet"))
	if err != nil {
		return &lesson.ValidationError{Field: "file", Message: "Could not read spreadsheet: " + err.Error()}
	}
	req.Raw = raw
	return nil
}

func (s *Server) handlePreviewMCQ(w http.ResponseWriter, r *http.Request) {
	var req mcqRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, admin.MCQForm{}.SetRaw(req.Raw).Preview())
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	tab, err := admin.ParseTab(r.PathValue("tab"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	sess, err := s.session(coordsFromQuery(r, r.PathValue("chapter")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.Clear(tab); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	coords := coordsFromQuery(r, r.PathValue("chapter"))
	if err := requireCoords(coords, true); err != nil {
		s.writeError(w, err)
		return
	}
	t := lesson.ContentType(r.URL.Query().Get("type"))
	if !t.Valid() {
		s.writeError(w, &lesson.ValidationError{Field: "type", Message: "Unknown content type"})
		return
	}
	chapter, ok := s.catalog.Chapter(coords)
	if !ok {
		s.writeError(w, errUnknownChapter)
		return
	}

	l, err := s.lessons.Lesson(r.Context(), coords, chapter, t)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}
