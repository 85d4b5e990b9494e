package lesson

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// minSheetColumns is question, four options and the answer letter. The
// explanation column is optional.
const minSheetColumns = 6

var answerLetters = [4]string{"A", "B", "C", "D"}

// RowWarning describes a sheet row that was dropped or graded leniently.
// Row is 1-based.
type RowWarning struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// SheetReport is the result of parsing a pasted sheet.
type SheetReport struct {
	Questions []Question   `json:"questions"`
	Warnings  []RowWarning `json:"warnings,omitempty"`
}

// ParseSheet converts tab-separated rows into questions. Each row reads
//
//	Question, Option A, Option B, Option C, Option D, Answer (A-D)[, Explanation]
//
// Rows with fewer than six columns are skipped. An answer letter outside A-D
// grades option A as correct.
func ParseSheet(raw string) []Question {
	return ParseSheetReport(raw).Questions
}

// ParseSheetReport is ParseSheet plus a warning for every skipped row and
// every unrecognised answer letter.
func ParseSheetReport(raw string) SheetReport {
	var report SheetReport
	upper := cases.Upper(language.Und)

	// Row numbers count from the first line of raw, including leading blank
	// lines, so they match what was pasted.
	offset := strings.Count(raw[:len(raw)-len(strings.TrimLeftFunc(raw, unicode.IsSpace))], "\n")
	rows := strings.Split(strings.TrimSpace(raw), "\n")
	for i, row := range rows {
		line := offset + i + 1
		row = strings.TrimSuffix(row, "\r")
		cols := strings.Split(row, "\t")
		if len(cols) < minSheetColumns {
			if strings.TrimSpace(row) != "" {
				report.Warnings = append(report.Warnings, RowWarning{
					Row:    line,
					Reason: fmt.Sprintf("expected at least %d columns, got %d", minSheetColumns, len(cols)),
				})
			}
			continue
		}

		q := Question{
			Question: cols[0],
			Options:  [4]string{cols[1], cols[2], cols[3], cols[4]},
		}
		if len(cols) > minSheetColumns {
			q.Explanation = cols[6]
		}

		letter := upper.String(strings.TrimSpace(cols[5]))
		idx := answerIndex(letter)
		if idx < 0 {
			report.Warnings = append(report.Warnings, RowWarning{
				Row:    line,
				Reason: fmt.Sprintf("answer %q is not one of A, B, C, D; option A marked correct", cols[5]),
			})
			idx = 0
		}
		q.CorrectIndex = idx

		report.Questions = append(report.Questions, q)
	}
	return report
}

func answerIndex(letter string) int {
	for i, l := range answerLetters {
		if l == letter {
			return i
		}
	}
	return -1
}
