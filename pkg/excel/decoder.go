package excel

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// headerKeywords marks a first row as a header row when any of its cells
// contains one of these fragments (case-insensitive).
var headerKeywords = []string{
	"gmail", "email", "password", "pass",
	"recovery", "provider", "price",
	"new_password", "new pass", "status",
}

// Sheet is a decoded spreadsheet. When Headered is true, Headers holds the
// lower-cased first row and Rows holds the remaining rows; otherwise every
// sheet row, the first included, appears in Rows positionally.
type Sheet struct {
	Headered bool
	Headers  []string
	Rows     []Row
}

// Row is a single data row. Ordinal is the 1-based row number within the
// sheet, retained for provenance and error reporting.
type Row struct {
	Ordinal int
	Cells   []string
}

// Cell returns the i-th cell or "" when the row is shorter.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[i])
}

// Column returns the index of the first header containing any of the given
// fragments, or -1. Matching is case-insensitive substring matching; callers
// pass fragments already lower-cased.
func (s *Sheet) Column(fragments ...string) int {
	if !s.Headered {
		return -1
	}
	for i, h := range s.Headers {
		for _, frag := range fragments {
			if strings.Contains(h, frag) {
				return i
			}
		}
	}
	return -1
}

// Decode parses spreadsheet bytes into a Sheet. Files whose extension is not
// .xlsx or .xls are rejected with ErrUnsupportedFormat before any parsing.
func Decode(data []byte, filename string) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
	default:
		return nil, errors.Wrap(ErrUnsupportedFormat, filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("workbook has no sheets")
	}
	raw, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	sheet := &Sheet{}
	if len(raw) == 0 {
		return sheet, nil
	}

	if isHeaderRow(raw[0]) {
		sheet.Headered = true
		sheet.Headers = make([]string, len(raw[0]))
		for i, h := range raw[0] {
			sheet.Headers[i] = strings.ToLower(strings.TrimSpace(h))
		}
		for i, cells := range raw[1:] {
			sheet.Rows = append(sheet.Rows, Row{Ordinal: i + 2, Cells: cells})
		}
		return sheet, nil
	}

	for i, cells := range raw {
		sheet.Rows = append(sheet.Rows, Row{Ordinal: i + 1, Cells: cells})
	}
	return sheet, nil
}

func isHeaderRow(cells []string) bool {
	for _, cell := range cells {
		lowered := strings.ToLower(strings.TrimSpace(cell))
		for _, kw := range headerKeywords {
			if strings.Contains(lowered, kw) {
				return true
			}
		}
	}
	return false
}
