package excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// DataSource supplies the rows and layout for a single-sheet export.
type DataSource interface {
	SheetName() string
	Headers() []string
	ColumnWidths() []float64
	Rows(ctx context.Context) ([][]interface{}, error)
}

type sliceDataSource struct {
	sheetName string
	headers   []string
	widths    []float64
	rows      [][]interface{}
}

// NewSliceDataSource wraps in-memory rows as a DataSource.
func NewSliceDataSource(sheetName string, headers []string, widths []float64, rows [][]interface{}) DataSource {
	return &sliceDataSource{
		sheetName: sheetName,
		headers:   headers,
		widths:    widths,
		rows:      rows,
	}
}

func (d *sliceDataSource) SheetName() string      { return d.sheetName }
func (d *sliceDataSource) Headers() []string      { return d.headers }
func (d *sliceDataSource) ColumnWidths() []float64 { return d.widths }

func (d *sliceDataSource) Rows(_ context.Context) ([][]interface{}, error) {
	return d.rows, nil
}

// StyleOptions controls the header row styling of exported sheets.
type StyleOptions struct {
	HeaderFillColor string
	HeaderFontColor string
	HeaderBold      bool
}

// DefaultStyleOptions matches the house export look: bold white text on a
// dark blue fill.
func DefaultStyleOptions() *StyleOptions {
	return &StyleOptions{
		HeaderFillColor: "184D8D",
		HeaderFontColor: "FFFFFF",
		HeaderBold:      true,
	}
}

// ExcelExporter renders a DataSource into xlsx bytes.
type ExcelExporter struct {
	style *StyleOptions
}

func NewExcelExporter(style *StyleOptions) *ExcelExporter {
	if style == nil {
		style = DefaultStyleOptions()
	}
	return &ExcelExporter{style: style}
}

func (e *ExcelExporter) Export(ctx context.Context, ds DataSource) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	sheet := ds.SheetName()
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return nil, fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	headers := ds.Headers()
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	if len(headers) > 0 {
		styleID, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{
				Bold:  e.style.HeaderBold,
				Color: e.style.HeaderFontColor,
			},
			Fill: excelize.Fill{
				Type:    "pattern",
				Color:   []string{e.style.HeaderFillColor},
				Pattern: 1,
			},
			Alignment: &excelize.Alignment{
				Horizontal: "center",
				Vertical:   "center",
			},
			Border: []excelize.Border{
				{Type: "left", Color: "000000", Style: 1},
				{Type: "right", Color: "000000", Style: 1},
				{Type: "top", Color: "000000", Style: 1},
				{Type: "bottom", Color: "000000", Style: 1},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build header style: %w", err)
		}
		lastCell, err := excelize.CoordinatesToCellName(len(headers), 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve header range: %w", err)
		}
		if err := f.SetCellStyle(sheet, "A1", lastCell, styleID); err != nil {
			return nil, fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, width := range ds.ColumnWidths() {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve column name: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	rows, err := ds.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve row cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
