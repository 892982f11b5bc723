package core

// FirstDataLine is the source line number of the first data row.
// Line 1 is the header.
const FirstDataLine = 2

// LineKey is the reserved raw-record key under which row sources store the
// record's line in the file. Records without it are numbered by position.
const LineKey = "#line"

// NormalizeRow converts one raw keyed record into a CandidateRow.
// Unrecognized keys are ignored. Keys are matched case-insensitively; when two
// raw keys map to the same field the non-blank value wins.
func NormalizeRow(raw map[string]any, line int) CandidateRow {
	vals := collectValues(raw)

	return CandidateRow{
		Line:               line,
		Name:               vals["name"],
		SKU:                vals["sku"],
		Category:           vals["category"],
		Location:           vals["location"],
		PickingBinLocation: vals["pickingBinLocation"],

		PickingBinQuantity:  ToInt(vals["pickingBinQuantity"]),
		OverstockQuantity:   ToInt(vals["overstockQuantity"]),
		ReorderLevel:        ToInt(vals["reorderLevel"]),
		PickingReorderLevel: ToInt(vals["pickingReorderLevel"]),
		CommittedStock:      ToInt(vals["committedStock"]),
		IncomingStock:       ToInt(vals["incomingStock"]),
		AutoReorderQuantity: ToInt(vals["autoReorderQuantity"]),

		UnitCost:    ToDecimal(vals["unitCost"]),
		RetailPrice: ToDecimal(vals["retailPrice"]),

		Description: vals["description"],
		ImageURL:    vals["imageUrl"],
		VendorID:    vals["vendorId"],
		BarcodeURL:  vals["barcodeUrl"],

		AutoReorderEnabled: ToBool(vals["autoReorderEnabled"]),
	}
}

// NormalizeBatch normalizes every raw record and drops those whose recognized
// values are all blank. Rows take their line from LineKey when present and
// from the raw position otherwise, so a dropped row still consumes its line.
func NormalizeBatch(raw []map[string]any) []CandidateRow {
	rows := make([]CandidateRow, 0, len(raw))
	for i, rec := range raw {
		if isBlankRecord(rec) {
			continue
		}
		line := i + FirstDataLine
		if n, ok := rec[LineKey].(int); ok && n > 0 {
			line = n
		}
		rows = append(rows, NormalizeRow(rec, line))
	}
	return rows
}

// collectValues returns cleaned string values keyed by canonical field key.
func collectValues(raw map[string]any) map[string]string {
	vals := make(map[string]string, len(ImportFields))
	for k, v := range raw {
		spec, ok := LookupField(k)
		if !ok {
			continue
		}
		s := CellString(v)
		if s == "" && vals[spec.Key] != "" {
			continue
		}
		vals[spec.Key] = s
	}
	return vals
}

func isBlankRecord(raw map[string]any) bool {
	for _, v := range collectValues(raw) {
		if v != "" {
			return false
		}
	}
	return true
}
