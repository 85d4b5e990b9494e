// Package admin implements the chapter content manager: three independent
// form tabs (PDF, video playlist, MCQ sheet) that restore their last saved
// record and validate before writing a new one.
package admin

import (
	"fmt"
	"strings"

	"github.com/p-n-ai/pai-content/internal/lesson"
)

// Tab selects one of the content forms.
type Tab string

const (
	TabPDF   Tab = "PDF"
	TabVideo Tab = "VIDEO"
	TabMCQ   Tab = "MCQ"
)

// ParseTab accepts a tab name in any case.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(strings.ToUpper(strings.TrimSpace(s))); t {
	case TabPDF, TabVideo, TabMCQ:
		return t, nil
	default:
		return "", fmt.Errorf("unknown tab %q", s)
	}
}

// PDFForm is the state of the PDF / notes tab.
type PDFForm struct {
	Type lesson.ContentType `json:"type"`
	URL  string             `json:"url"`
}

// NewPDFForm returns the empty PDF form. PDF_NOTES is preselected.
func NewPDFForm() PDFForm {
	return PDFForm{Type: lesson.PDFNotes}
}

// SelectType switches the notes variant. Non-PDF types are ignored.
func (f PDFForm) SelectType(t lesson.ContentType) PDFForm {
	if t.IsPDF() {
		f.Type = t
	}
	return f
}

// SetURL replaces the document URL.
func (f PDFForm) SetURL(url string) PDFForm {
	f.URL = url
	return f
}

func (f PDFForm) restore(r lesson.Record) PDFForm {
	return PDFForm{Type: r.Type, URL: r.Content}
}

// VideoForm is the state of the playlist tab: a fixed number of link slots.
type VideoForm struct {
	Links [lesson.MaxVideoLinks]string `json:"links"`
}

// SetLink writes slot i. Out-of-range slots are ignored.
func (f VideoForm) SetLink(i int, url string) VideoForm {
	if i >= 0 && i < len(f.Links) {
		f.Links[i] = url
	}
	return f
}

// ClearLink empties slot i.
func (f VideoForm) ClearLink(i int) VideoForm {
	return f.SetLink(i, "")
}

// SetLinks fills slots in order from links, clearing the rest. Links beyond
// the last slot are dropped.
func (f VideoForm) SetLinks(links []string) VideoForm {
	var next VideoForm
	copy(next.Links[:], links)
	return next
}

// Filled counts the non-empty slots.
func (f VideoForm) Filled() int {
	n := 0
	for _, l := range f.Links {
		if l != "" {
			n++
		}
	}
	return n
}

func (f VideoForm) restore(r lesson.Record) VideoForm {
	return f.SetLinks(r.VideoLinks)
}

// MCQForm is the state of the MCQ tab: the pasted sheet text.
type MCQForm struct {
	Raw string `json:"raw"`
}

// SetRaw replaces the pasted text.
func (f MCQForm) SetRaw(raw string) MCQForm {
	f.Raw = raw
	return f
}

// Preview parses the pasted text without saving.
func (f MCQForm) Preview() lesson.SheetReport {
	return lesson.ParseSheetReport(f.Raw)
}

func (f MCQForm) restore(r lesson.Record) MCQForm {
	if r.RawText == "" {
		return f
	}
	return MCQForm{Raw: r.RawText}
}

// FormState is the serializable state of all three tabs.
type FormState struct {
	Active Tab       `json:"active"`
	PDF    PDFForm   `json:"pdf"`
	Video  VideoForm `json:"video"`
	MCQ    MCQForm   `json:"mcq"`
}

// NewFormState returns the initial state: PDF tab active, all forms empty.
func NewFormState() FormState {
	return FormState{Active: TabPDF, PDF: NewPDFForm()}
}
