package core

// convert.go coerces loosely-typed cell values into row fields.
//
// Imports arrive from spreadsheets and hand-edited CSV files, so values carry
// Excel formula wrappers, currency symbols, thousands separators and the
// accounting "(123)" negative form. Every function here is total: input that
// cannot be read as a number becomes zero instead of an error.

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// numericRegex validates that a string is a plain number after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// CellString coerces a raw cell value to a cleaned string. nil becomes "".
func CellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return CleanCell(val)
	case []byte:
		return CleanCell(string(val))
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case fmt.Stringer:
		return CleanCell(val.String())
	default:
		return CleanCell(fmt.Sprint(val))
	}
}

// cleanNumeric strips currency symbols and thousands separators and turns
// accounting negatives into a leading minus. Reports false if what remains
// is not a number.
func cleanNumeric(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if negative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return "", false
	}
	return s, true
}

// ToDecimal parses a money value. Invalid or empty input yields zero.
func ToDecimal(s string) decimal.Decimal {
	cleaned, ok := cleanNumeric(s)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var (
	maxIntDecimal = decimal.NewFromInt(int64(math.MaxInt))
	minIntDecimal = decimal.NewFromInt(int64(math.MinInt))
)

// ToInt parses a count. Fractions are truncated toward zero and values
// beyond the int range saturate, so validation can reject them as out of
// range. Invalid or empty input yields zero.
func ToInt(s string) int {
	cleaned, ok := cleanNumeric(s)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(cleaned)
	if err == nil {
		return n
	}
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(cleaned, "-") {
			return math.MinInt
		}
		return math.MaxInt
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}
	d = d.Truncate(0)
	switch {
	case d.GreaterThan(maxIntDecimal):
		return math.MaxInt
	case d.LessThan(minIntDecimal):
		return math.MinInt
	}
	return int(d.IntPart())
}

// ToBool is true only for "true", compared case-insensitively.
func ToBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}
