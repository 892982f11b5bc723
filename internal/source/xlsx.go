package source

import (
	"fmt"
	"io"

	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads the named worksheet, or the active one when sheet is empty,
// with the same header-row layout as ReadCSV.
func ReadXLSX(r io.Reader, sheet string) ([]map[string]any, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: sheet %q not found", ErrInvalidWorkbook, sheet)
	}

	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	if len(grid) == 0 {
		return nil, ErrEmptyFile
	}

	header := grid[0]
	rows := make([]map[string]any, 0, len(grid)-1)
	for i, cells := range grid[1:] {
		rec := toRecord(header, cells)
		rec[core.LineKey] = i + 2
		rows = append(rows, rec)
	}
	return rows, nil
}
