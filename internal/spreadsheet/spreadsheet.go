// Package spreadsheet converts uploaded .xlsx question sheets into the
// tab-separated text the MCQ form accepts from a clipboard paste.
package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var cellCleaner = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// ReadTSV reads sheet from the workbook in r and renders it as tab-separated
// rows, the same text a copy of the sheet's used range would paste. An empty
// sheet name selects the first sheet. A header row whose first cell is
// "Question" is dropped.
func ReadTSV(r io.Reader, sheet string) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return "", fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	// GetRows drops trailing empty cells. A copied range keeps them, so rows
	// are padded back to the used width.
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	lines := make([]string, 0, len(rows))
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		cells := make([]string, width)
		for j, c := range row {
			cells[j] = cellCleaner.Replace(c)
		}
		line := strings.Join(cells, "\t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func isHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "question")
}
