// Package export renders batch lists as downloadable spreadsheets.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"batchdesk/internal/core"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	Filename    = "batch_report.xlsx"
	SheetName   = "Sheet1"
)

// Header is the first row of the export. The id column is never exported.
var Header = []string{"Batch Name", "Category", "Price", "Date", "Class"}

// ToSpreadsheet writes batches into a single-sheet xlsx workbook, one row per
// batch in the given order. Prices are numeric cells, dates are YYYY-MM-DD text.
func ToSpreadsheet(batches []core.Batch) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return nil, fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", last, style); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, b := range batches {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		row := []any{b.Name, b.Category, b.Price.Rupees(), b.Date.String(), b.ClassGrade}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(SheetName, "A", "A", 28); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
