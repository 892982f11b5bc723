package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/stockimport/internal/core"
)

// ReadCSV reads a header row followed by data rows. Each data row becomes a
// map from header to cell; cells beyond the header are ignored and missing
// cells are absent from the map. Each row also carries its source line under
// core.LineKey, since blank lines and multi-line cells shift row positions.
func ReadCSV(r io.Reader) ([]map[string]any, error) {
	cr := csv.NewReader(cleanText(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidCSV, err)
	}

	var rows []map[string]any
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}
		rec := toRecord(header, record)
		line, _ := cr.FieldPos(0)
		rec[core.LineKey] = line
		rows = append(rows, rec)
	}
	return rows, nil
}

// toRecord pairs cells with their headers. Blank headers are skipped and
// the first column wins when a header repeats.
func toRecord(header, cells []string) map[string]any {
	rec := make(map[string]any, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" || i >= len(cells) {
			continue
		}
		if _, seen := rec[h]; seen {
			continue
		}
		rec[h] = cells[i]
	}
	return rec
}
