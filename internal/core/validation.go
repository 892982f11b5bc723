package core

// validation.go checks candidate rows immediately before they are written.
//
// Validation runs at commit time, after both gates, so it sees the final
// reference set: categories created during resolution and locations the user
// confirmed. All failing checks for a row are combined into one reason.

import (
	"fmt"
	"math"
	"strings"
)

// MaxCount is the largest stock count the store holds (a 32-bit INTEGER
// column). It bounds every count field and the derived quantity.
const MaxCount = math.MaxInt32

// ValidateCandidate checks one row against the required-field, non-negative
// and reference rules.
func ValidateCandidate(row CandidateRow, refs ReferenceSet) ValidationOutcome {
	var missing, negative, tooLarge, problems []string

	for _, spec := range ImportFields {
		v := fieldValue(row, spec.Key)
		if spec.Required && isBlank(v) {
			missing = append(missing, spec.Key)
			continue
		}
		if isNegative(v) {
			negative = append(negative, spec.Key)
		}
		if n, ok := v.(int); ok && n > MaxCount {
			tooLarge = append(tooLarge, spec.Key)
		}
	}

	if len(missing) > 0 {
		problems = append(problems, "missing required fields: "+strings.Join(missing, ", "))
	}
	if len(negative) > 0 {
		problems = append(problems, "negative values not allowed: "+strings.Join(negative, ", "))
	}
	if len(tooLarge) > 0 {
		problems = append(problems, fmt.Sprintf("values exceed the stock limit of %d: %s", MaxCount, strings.Join(tooLarge, ", ")))
	} else if row.PickingBinQuantity >= 0 && row.OverstockQuantity >= 0 && row.Quantity() > MaxCount {
		problems = append(problems, fmt.Sprintf("total quantity exceeds the stock limit of %d", MaxCount))
	}

	if row.Category != "" {
		if _, ok := refs.CategoryFor(row.Category); !ok {
			problems = append(problems, fmt.Sprintf("unknown category %q", row.Category))
		}
	}
	if row.Location != "" && !refs.HasLocation(row.Location) {
		problems = append(problems, fmt.Sprintf("unknown location %q", row.Location))
	}
	if row.PickingBinLocation != "" && row.PickingBinLocation != row.Location &&
		!refs.HasLocation(row.PickingBinLocation) {
		problems = append(problems, fmt.Sprintf("unknown picking bin location %q", row.PickingBinLocation))
	}

	if len(problems) == 0 {
		return ValidationOutcome{Valid: true}
	}
	return ValidationOutcome{Reason: strings.Join(problems, "; ")}
}
