// Package lesson defines chapter content records, their storage keys and the
// MCQ sheet format used by the admin content manager.
package lesson

// Board is an examination board (e.g. CBSE, BSEB).
type Board string

// ClassLevel is a school class such as "9" or "12".
type ClassLevel string

// Stream is an academic specialization. It only applies to classes 11 and 12.
type Stream string

const (
	StreamScience  Stream = "Science"
	StreamCommerce Stream = "Commerce"
	StreamArts     Stream = "Arts"
)

// HasStream reports whether the class level is split into streams.
func (c ClassLevel) HasStream() bool {
	return c == "11" || c == "12"
}

// ContentType tags the kind of content attached to a chapter.
type ContentType string

const (
	NotesSimple  ContentType = "NOTES_SIMPLE"
	NotesPremium ContentType = "NOTES_PREMIUM"
	PDFNotes     ContentType = "PDF_NOTES"
	VideoLink    ContentType = "VIDEO_LINK"
	MCQSimple    ContentType = "MCQ_SIMPLE"
)

// PDFTypes lists the PDF-family types in the order a form probes them when
// restoring a saved record.
var PDFTypes = []ContentType{PDFNotes, NotesPremium, NotesSimple}

// IsPDF reports whether t belongs to the PDF/notes family.
func (t ContentType) IsPDF() bool {
	return t == NotesSimple || t == NotesPremium || t == PDFNotes
}

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	return t.IsPDF() || t == VideoLink || t == MCQSimple
}

// Subtitle returns the display label stored with records of this type.
func (t ContentType) Subtitle() string {
	switch t {
	case PDFNotes:
		return "Visual PDF"
	case NotesSimple, NotesPremium:
		return "Text Notes"
	case VideoLink:
		return "Video Playlist"
	case MCQSimple:
		return "Practice MCQs"
	default:
		return ""
	}
}

// Chapter is a curriculum unit under a subject.
type Chapter struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// Coordinates locate a chapter in the curriculum.
type Coordinates struct {
	Board      Board      `json:"board"`
	ClassLevel ClassLevel `json:"class"`
	Stream     Stream     `json:"stream,omitempty"`
	Subject    string     `json:"subject"`
	ChapterID  string     `json:"chapter"`
}

// Key returns the storage key for content of type t at these coordinates.
func (c Coordinates) Key(t ContentType) string {
	return BuildKey(c, t)
}
