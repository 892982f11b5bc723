package core

// SKUIndex is a snapshot of existing SKUs, lower-cased.
type SKUIndex map[string]struct{}

// NewSKUIndex builds an index from the SKUs currently in inventory.
func NewSKUIndex(skus []string) SKUIndex {
	idx := make(SKUIndex, len(skus))
	for _, sku := range skus {
		if k := skuKey(sku); k != "" {
			idx[k] = struct{}{}
		}
	}
	return idx
}

// Has reports whether the SKU exists, compared case-insensitively.
func (idx SKUIndex) Has(sku string) bool {
	k := skuKey(sku)
	if k == "" {
		return false
	}
	_, ok := idx[k]
	return ok
}

// DetectDuplicates flags rows whose SKU is already in the index and returns a
// descriptor for every flagged row. Rows repeating the same existing SKU each
// get their own descriptor. SKUs repeated only within the batch are not
// duplicates here; the second create fails at commit.
func DetectDuplicates(rows []CandidateRow, idx SKUIndex) []Duplicate {
	var dups []Duplicate
	for i := range rows {
		rows[i].IsDuplicate = idx.Has(rows[i].SKU)
		if !rows[i].IsDuplicate {
			continue
		}
		dups = append(dups, Duplicate{
			Line:        rows[i].Line,
			SKU:         rows[i].SKU,
			CSVQuantity: rows[i].Quantity(),
			ItemName:    rows[i].Name,
		})
	}
	return dups
}
