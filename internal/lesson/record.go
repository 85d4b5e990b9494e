package lesson

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

// MaxVideoLinks is the number of link slots in a playlist.
const MaxVideoLinks = 10

// Question is one multiple-choice question.
type Question struct {
	Question     string    `json:"question"`
	Options      [4]string `json:"options"`
	CorrectIndex int       `json:"correctAnswer"`
	Explanation  string    `json:"explanation"`
}

// Record is the content saved for one chapter and content type. Type selects
// which of the variant fields are meaningful:
//
//   - PDF family: Content holds the document URL.
//   - VIDEO_LINK: VideoLinks holds the playlist, Content its first entry.
//   - MCQ_SIMPLE: Questions and RawText hold the parsed and pasted sheet,
//     Content the JSON encoding of Questions.
type Record struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle"`
	Content     string      `json:"content"`
	Type        ContentType `json:"type"`
	VideoLinks  []string    `json:"videoLinks,omitempty"`
	Questions   []Question  `json:"mcqData,omitempty"`
	RawText     string      `json:"mcqRaw,omitempty"`
	CreatedAt   time.Time   `json:"dateCreated"`
	SubjectName string      `json:"subjectName"`
}

// Clock and ID sources, replaced in tests.
var (
	now   = func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }
	newID = func() string {
		id, err := uuid.NewV7()
		if err != nil {
			return uuid.NewString()
		}
		return id.String()
	}
)

func newRecord(t ContentType, chapter Chapter, subjectName string) Record {
	return Record{
		ID:          newID(),
		Title:       chapter.Title,
		Subtitle:    t.Subtitle(),
		Type:        t,
		CreatedAt:   now(),
		SubjectName: subjectName,
	}
}

// NewPDFRecord builds a notes/PDF record pointing at url.
func NewPDFRecord(chapter Chapter, subjectName string, t ContentType, url string) (Record, error) {
	if !t.IsPDF() {
		return Record{}, errBadPDFType
	}
	if strings.TrimSpace(url) == "" {
		return Record{}, errEmptyURL
	}
	r := newRecord(t, chapter, subjectName)
	r.Content = url
	return r, nil
}

// NewVideoRecord builds a playlist from the non-blank entries of links.
func NewVideoRecord(chapter Chapter, subjectName string, links []string) (Record, error) {
	valid := nonBlank(links)
	if len(valid) == 0 {
		return Record{}, errNoVideoLinks
	}
	if len(valid) > MaxVideoLinks {
		return Record{}, errTooManyLinks
	}
	r := newRecord(VideoLink, chapter, subjectName)
	r.VideoLinks = valid
	r.Content = valid[0]
	return r, nil
}

// NewMCQRecord parses raw as a tab-separated sheet and builds an MCQ set that
// keeps raw verbatim for later editing.
func NewMCQRecord(chapter Chapter, subjectName, raw string) (Record, SheetReport, error) {
	if strings.TrimSpace(raw) == "" {
		return Record{}, SheetReport{}, errEmptySheet
	}
	report := ParseSheetReport(raw)
	if len(report.Questions) == 0 {
		return Record{}, report, errNoSheetRows
	}
	content, err := json.Marshal(report.Questions)
	if err != nil {
		return Record{}, report, fmt.Errorf("encoding questions: %w", err)
	}
	r := newRecord(MCQSimple, chapter, subjectName)
	r.Questions = report.Questions
	r.RawText = raw
	r.Content = string(content)
	return r, report, nil
}

// Encode serializes r to JSON. Fields derived from the type (subtitle, video
// primary link, MCQ content) are recomputed so stored records are consistent.
func Encode(r Record) (string, error) {
	if !r.Type.Valid() {
		return "", fmt.Errorf("unknown content type %q", r.Type)
	}
	r.Subtitle = r.Type.Subtitle()

	switch r.Type {
	case VideoLink:
		if len(r.VideoLinks) == 0 {
			return "", fmt.Errorf("video record %s has no links", r.ID)
		}
		r.Content = r.VideoLinks[0]
	case MCQSimple:
		if len(r.Questions) == 0 {
			return "", fmt.Errorf("mcq record %s has no questions", r.ID)
		}
		content, err := json.Marshal(r.Questions)
		if err != nil {
			return "", fmt.Errorf("encoding questions: %w", err)
		}
		r.Content = string(content)
	}

	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encoding record: %w", err)
	}
	if err := validateRecord(data); err != nil {
		return "", fmt.Errorf("encoding record %s: %w", r.ID, err)
	}
	return string(data), nil
}

// validateRecord checks encoded data against the schema Decode enforces, so
// nothing is stored that would later read back as "nothing saved".
func validateRecord(data []byte) error {
	result, err := recordSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid record: %s", strings.Join(msgs, "; "))
}

// Decode parses a stored record. Anything malformed reports false so callers
// can fall back to "nothing saved yet".
func Decode(text string) (Record, bool) {
	if strings.TrimSpace(text) == "" {
		return Record{}, false
	}
	if validateRecord([]byte(text)) != nil {
		return Record{}, false
	}
	var r Record
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return Record{}, false
	}
	return r, true
}

func nonBlank(links []string) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
