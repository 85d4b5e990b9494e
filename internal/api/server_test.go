package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-content/internal/admin"
	"github.com/p-n-ai/pai-content/internal/ai"
	"github.com/p-n-ai/pai-content/internal/api"
	"github.com/p-n-ai/pai-content/internal/content"
	"github.com/p-n-ai/pai-content/internal/curriculum"
	"github.com/p-n-ai/pai-content/internal/lesson"
	"github.com/p-n-ai/pai-content/internal/store"
)

const chapterQuery = "board=CBSE&class=12&stream=Science&subject=Physics"

type testEnv struct {
	handler http.Handler
	store   *store.MemoryStore
	events  *admin.MemoryEventLogger
}

func newTestEnv(t *testing.T, router *ai.Router) testEnv {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "class-12-science.yaml"), []byte(`
board: CBSE
class: "12"
stream: Science
subjects:
  - name: Physics
    chapters:
      - id: p-1
        title: "Electric Charges and Fields"
      - id: p-2
        title: "Electrostatic Potential"
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	catalog, err := curriculum.NewCatalog(dir)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	s := store.NewMemoryStore()
	events := admin.NewMemoryEventLogger()
	srv := api.New(api.Config{
		Store:   s,
		Catalog: catalog,
		Lessons: content.NewService(content.ServiceConfig{Store: s, AIRouter: router}),
		Events:  events,
	})
	return testEnv{handler: srv.Handler(), store: s, events: events}
}

func (e testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func coordsBody(extra map[string]any) map[string]any {
	body := map[string]any{"board": "CBSE", "class": "12", "stream": "Science", "subject": "Physics"}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

type errorStore struct{ *store.MemoryStore }

func (errorStore) HealthCheck(context.Context) error { return errors.New("down") }
func (errorStore) Set(string, string) error          { return errors.New("disk full") }

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"healthz returns 200", "/healthz", http.StatusOK, `{"status":"ok"}`},
		{"readyz returns 200", "/readyz", http.StatusOK, `{"status":"ready"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestReadyz_StoreDown(t *testing.T) {
	srv := api.New(api.Config{Store: errorStore{store.NewMemoryStore()}})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestSavePDF_ThenGetForm(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/admin/chapters/p-1/content/pdf",
		coordsBody(map[string]any{"type": "NOTES_PREMIUM", "url": "https://drive.example/p1"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, body = %s", rec.Code, rec.Body.String())
	}
	saved := decode[struct {
		Key    string        `json:"key"`
		Record lesson.Record `json:"record"`
	}](t, rec)
	if saved.Key != "nst_custom_lesson_CBSE-12-Science-Physics-p%2D1-NOTES_PREMIUM" {
		t.Errorf("key = %q", saved.Key)
	}
	if saved.Record.Title != "Electric Charges and Fields" || saved.Record.Subtitle != "Text Notes" {
		t.Errorf("record = %+v", saved.Record)
	}

	rec = env.do(t, http.MethodGet, "/api/admin/chapters/p-1/content/pdf?"+chapterQuery, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	form := decode[struct {
		Tab  admin.Tab     `json:"tab"`
		Form admin.PDFForm `json:"form"`
	}](t, rec)
	if form.Tab != admin.TabPDF || form.Form.Type != lesson.NotesPremium || form.Form.URL != "https://drive.example/p1" {
		t.Errorf("form = %+v", form)
	}
	if len(env.events.Events()) != 1 {
		t.Errorf("events = %d, want 1", len(env.events.Events()))
	}
}

func TestSaveVideo(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/admin/chapters/p-2/content/video",
		coordsBody(map[string]any{"links": []string{"", "https://youtu.be/a", "https://youtu.be/b"}}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/admin/chapters/p-2/content/VIDEO?"+chapterQuery, nil)
	form := decode[struct {
		Form admin.VideoForm `json:"form"`
	}](t, rec)
	if form.Form.Links[0] != "https://youtu.be/a" || form.Form.Links[1] != "https://youtu.be/b" || form.Form.Filled() != 2 {
		t.Errorf("links = %v", form.Form.Links)
	}
}

func TestSaveMCQ_JSON(t *testing.T) {
	env := newTestEnv(t, nil)

	raw := "Q1\tA\tB\tC\tD\tC\tWhy\nQ2\ta\tb\tc\td\tx"
	rec := env.do(t, http.MethodPost, "/api/admin/chapters/p-1/content/mcq", coordsBody(map[string]any{"raw": raw}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decode[struct {
		Record   lesson.Record       `json:"record"`
		Warnings []lesson.RowWarning `json:"warnings"`
	}](t, rec)
	if len(resp.Record.Questions) != 2 || resp.Record.Questions[0].CorrectIndex != 2 {
		t.Errorf("questions = %+v", resp.Record.Questions)
	}
	if len(resp.Warnings) != 1 || resp.Warnings[0].Row != 2 {
		t.Errorf("warnings = %+v", resp.Warnings)
	}

	rec = env.do(t, http.MethodGet, "/api/admin/chapters/p-1/content/mcq?"+chapterQuery, nil)
	form := decode[struct {
		Form    admin.MCQForm      `json:"form"`
		Preview lesson.SheetReport `json:"preview"`
	}](t, rec)
	if form.Form.Raw != raw || len(form.Preview.Questions) != 2 {
		t.Errorf("form = %+v", form)
	}
}

func TestSaveMCQ_Upload(t *testing.T) {
	env := newTestEnv(t, nil)

	f := excelize.NewFile()
	f.SetSheetRow("Sheet1", "A1", &[]any{"Question", "A", "B", "C", "D", "Answer"})
	f.SetSheetRow("Sheet1", "A2", &[]any{"Charge unit?", "Coulomb", "Volt", "Ohm", "Tesla", "A"})
	xlsx, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range map[string]string{"board": "CBSE", "class": "12", "stream": "Science", "subject": "Physics"} {
		mw.WriteField(k, v)
	}
	part, _ := mw.CreateFormFile("file", "questions.xlsx")
	part.Write(xlsx.Bytes())
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/chapters/p-1/content/mcq", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decode[struct {
		Record lesson.Record `json:"record"`
	}](t, rec)
	if len(resp.Record.Questions) != 1 || resp.Record.Questions[0].Options[0] != "Coulomb" {
		t.Errorf("questions = %+v", resp.Record.Questions)
	}
}

func TestValidationErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	tenLinks := make([]string, 11)
	for i := range tenLinks {
		tenLinks[i] = "https://youtu.be/x"
	}

	tests := []struct {
		name      string
		path      string
		body      map[string]any
		wantField string
	}{
		{"empty url", "/api/admin/chapters/p-1/content/pdf", coordsBody(map[string]any{"url": " "}), "url"},
		{"video type on pdf tab", "/api/admin/chapters/p-1/content/pdf", coordsBody(map[string]any{"type": "VIDEO_LINK", "url": "u"}), "type"},
		{"empty playlist", "/api/admin/chapters/p-1/content/video", coordsBody(map[string]any{"links": []string{"", " "}}), "links"},
		{"too many links", "/api/admin/chapters/p-1/content/video", coordsBody(map[string]any{"links": tenLinks}), "links"},
		{"empty sheet", "/api/admin/chapters/p-1/content/mcq", coordsBody(map[string]any{"raw": ""}), "raw"},
		{"unparseable sheet", "/api/admin/chapters/p-1/content/mcq", coordsBody(map[string]any{"raw": "a,b,c"}), "raw"},
		{"missing subject", "/api/admin/chapters/p-1/content/pdf", map[string]any{"board": "CBSE", "class": "12", "url": "u"}, "subject"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, tt.path, tt.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422; body = %s", rec.Code, rec.Body.String())
			}
			got := decode[map[string]string](t, rec)
			if got["field"] != tt.wantField || got["error"] == "" {
				t.Errorf("body = %v, want field %q", got, tt.wantField)
			}
		})
	}
	if env.store.Len() != 0 {
		t.Errorf("store has %d keys after rejected saves, want 0", env.store.Len())
	}
}

func TestUnknownChapterAndTab(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/admin/chapters/p-99/content/pdf", coordsBody(map[string]any{"url": "u"}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown chapter status = %d, want 404", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/admin/chapters/p-1/content/audio?"+chapterQuery, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown tab status = %d, want 404", rec.Code)
	}
}

func TestStoreFailure(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "c.yaml"), []byte("board: CBSE\nclass: \"10\"\nsubjects:\n  - name: Science\n    chapters:\n      - id: ch-1\n        title: T\n"), 0o644)
	catalog, err := curriculum.NewCatalog(dir)
	if err != nil {
		t.Fatal(err)
	}
	srv := api.New(api.Config{Store: errorStore{store.NewMemoryStore()}, Catalog: catalog})

	body, _ := json.Marshal(map[string]string{"board": "CBSE", "class": "10", "subject": "Science", "url": "u"})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/chapters/ch-1/content/pdf", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestClear(t *testing.T) {
	env := newTestEnv(t, nil)

	env.do(t, http.MethodPost, "/api/admin/chapters/p-1/content/pdf", coordsBody(map[string]any{"url": "https://x"}))
	if env.store.Len() != 1 {
		t.Fatalf("store has %d keys, want 1", env.store.Len())
	}

	rec := env.do(t, http.MethodDelete, "/api/admin/chapters/p-1/content/pdf?"+chapterQuery, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if env.store.Len() != 0 {
		t.Errorf("store has %d keys after clear, want 0", env.store.Len())
	}
}

func TestPreviewMCQ(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/admin/mcq/preview", map[string]string{"raw": "Q\ta\tb\tc\td\tD\nshort\trow"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	report := decode[lesson.SheetReport](t, rec)
	if len(report.Questions) != 1 || report.Questions[0].CorrectIndex != 3 || len(report.Warnings) != 1 {
		t.Errorf("report = %+v", report)
	}
	if env.store.Len() != 0 {
		t.Error("preview must not write")
	}
}

func TestListChapters(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/curriculum/chapters?"+chapterQuery, nil)
	got := decode[struct {
		Chapters []lesson.Chapter `json:"chapters"`
	}](t, rec)
	if len(got.Chapters) != 2 || got.Chapters[1].ID != "p-2" {
		t.Errorf("chapters = %+v", got.Chapters)
	}
}

func TestGetLesson(t *testing.T) {
	router := ai.NewRouter()
	router.Register("mock", ai.NewMockProvider("# Coulomb's law"))
	env := newTestEnv(t, router)

	q := url.Values{}
	for k, v := range map[string]string{"board": "CBSE", "class": "12", "stream": "Science", "subject": "Physics"} {
		q.Set(k, v)
	}

	q.Set("type", "NOTES_SIMPLE")
	rec := env.do(t, http.MethodGet, "/api/lessons/p-1?"+q.Encode(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	got := decode[content.Lesson](t, rec)
	if !got.Generated || got.Record.Content != "# Coulomb's law" {
		t.Errorf("lesson = %+v", got)
	}

	q.Set("type", "VIDEO_LINK")
	rec = env.do(t, http.MethodGet, "/api/lessons/p-1?"+q.Encode(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing video status = %d, want 404", rec.Code)
	}

	q.Set("type", "AUDIO")
	rec = env.do(t, http.MethodGet, "/api/lessons/p-1?"+q.Encode(), nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad type status = %d, want 422", rec.Code)
	}
}

func TestReadyz_ReportsAIProvider(t *testing.T) {
	down := ai.NewMockProvider("")
	down.Err = errors.New("unreachable")

	tests := []struct {
		name     string
		provider ai.Provider
		wantAI   string
	}{
		{"healthy provider", ai.NewMockProvider("ok"), "ok"},
		{"provider down", down, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := ai.NewRouter()
			router.Register("mock", tt.provider)
			env := newTestEnv(t, router)

			rec := env.do(t, http.MethodGet, "/readyz", nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			got := decode[map[string]string](t, rec)
			if got["status"] != "ready" || got["ai"] != tt.wantAI {
				t.Errorf("body = %v, want ai %q", got, tt.wantAI)
			}
		})
	}
}

func TestListSubjects(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/curriculum/subjects?board=CBSE&class=12&stream=Science", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[struct {
		Subjects []string `json:"subjects"`
	}](t, rec)
	if len(got.Subjects) != 1 || got.Subjects[0] != "Physics" {
		t.Errorf("subjects = %v, want [Physics]", got.Subjects)
	}

	rec = env.do(t, http.MethodGet, "/api/curriculum/subjects?board=CBSE&class=12&stream=Commerce", nil)
	if got := decode[struct {
		Subjects []string `json:"subjects"`
	}](t, rec); got.Subjects == nil || len(got.Subjects) != 0 {
		t.Errorf("unknown stream subjects = %v, want []", got.Subjects)
	}

	rec = env.do(t, http.MethodGet, "/api/curriculum/subjects?board=CBSE", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing class status = %d, want 422", rec.Code)
	}
}
