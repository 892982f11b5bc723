package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldType represents the expected data type for an import column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInteger
	FieldDecimal
	FieldBool
)

// FieldSpec describes one recognized import column.
type FieldSpec struct {
	Key      string    // Column header as it appears in the template
	Type     FieldType // Expected data type
	Required bool      // Value must be present (non-blank, or non-zero for prices)
}

// ImportFields lists the recognized columns in template order.
var ImportFields = []FieldSpec{
	{Key: "name", Type: FieldText, Required: true},
	{Key: "sku", Type: FieldText, Required: true},
	{Key: "category", Type: FieldText, Required: true},
	{Key: "location", Type: FieldText, Required: true},
	{Key: "pickingBinLocation", Type: FieldText, Required: true},
	{Key: "pickingBinQuantity", Type: FieldInteger},
	{Key: "overstockQuantity", Type: FieldInteger},
	{Key: "reorderLevel", Type: FieldInteger},
	{Key: "pickingReorderLevel", Type: FieldInteger},
	{Key: "unitCost", Type: FieldDecimal, Required: true},
	{Key: "retailPrice", Type: FieldDecimal, Required: true},
	{Key: "description", Type: FieldText},
	{Key: "committedStock", Type: FieldInteger},
	{Key: "incomingStock", Type: FieldInteger},
	{Key: "imageUrl", Type: FieldText},
	{Key: "vendorId", Type: FieldText},
	{Key: "barcodeUrl", Type: FieldText},
	{Key: "autoReorderEnabled", Type: FieldBool},
	{Key: "autoReorderQuantity", Type: FieldInteger},
}

// fieldIndex maps lower-cased header names to their spec.
var fieldIndex = func() map[string]FieldSpec {
	idx := make(map[string]FieldSpec, len(ImportFields))
	for _, spec := range ImportFields {
		idx[strings.ToLower(spec.Key)] = spec
	}
	return idx
}()

// TemplateHeader returns the header row for a blank import template.
func TemplateHeader() []string {
	header := make([]string, len(ImportFields))
	for i, spec := range ImportFields {
		header[i] = spec.Key
	}
	return header
}

// LookupField returns the FieldSpec for a header name, matched case-insensitively.
func LookupField(header string) (FieldSpec, bool) {
	spec, ok := fieldIndex[strings.ToLower(CleanCell(header))]
	return spec, ok
}

// fieldValue returns a row's typed value for a recognized key.
func fieldValue(r CandidateRow, key string) any {
	switch key {
	case "name":
		return r.Name
	case "sku":
		return r.SKU
	case "category":
		return r.Category
	case "location":
		return r.Location
	case "pickingBinLocation":
		return r.PickingBinLocation
	case "pickingBinQuantity":
		return r.PickingBinQuantity
	case "overstockQuantity":
		return r.OverstockQuantity
	case "reorderLevel":
		return r.ReorderLevel
	case "pickingReorderLevel":
		return r.PickingReorderLevel
	case "unitCost":
		return r.UnitCost
	case "retailPrice":
		return r.RetailPrice
	case "description":
		return r.Description
	case "committedStock":
		return r.CommittedStock
	case "incomingStock":
		return r.IncomingStock
	case "imageUrl":
		return r.ImageURL
	case "vendorId":
		return r.VendorID
	case "barcodeUrl":
		return r.BarcodeURL
	case "autoReorderEnabled":
		return r.AutoReorderEnabled
	case "autoReorderQuantity":
		return r.AutoReorderQuantity
	default:
		panic(fmt.Sprintf("core: unknown import field %q", key))
	}
}

// isBlank reports whether a typed field value counts as absent.
// Prices of zero count as absent, as does any zero numeric for a required column.
func isBlank(v any) bool {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) == ""
	case int:
		return val == 0
	case decimal.Decimal:
		return val.IsZero()
	default:
		return false
	}
}

// isNegative reports whether a numeric field value is below zero.
func isNegative(v any) bool {
	switch val := v.(type) {
	case int:
		return val < 0
	case decimal.Decimal:
		return val.IsNegative()
	default:
		return false
	}
}
