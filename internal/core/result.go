package core

import "fmt"

// Result summarizes a committed import.
type Result struct {
	ImportID      string   `json:"importId"`
	SuccessCount  int      `json:"successCount"`
	ErrorCount    int      `json:"errorCount"`
	ErrorMessages []string `json:"errorMessages"`

	Created           int `json:"created"`
	Merged            int `json:"merged"`
	Skipped           int `json:"skipped"`
	Invalid           int `json:"invalid"`
	WriteFailures     int `json:"writeFailures"`
	ReferenceFailures int `json:"referenceFailures"`

	Outcomes []RowOutcome `json:"outcomes"`
}

// NoValidData reports the "nothing happened" case.
func (r Result) NoValidData() bool {
	return r.SuccessCount == 0 && r.ErrorCount == 0
}

// Headline is the one-line summary shown to the user. With more than one
// error only the count is shown; the full list goes to the diagnostic log.
func (r Result) Headline() string {
	switch {
	case r.NoValidData():
		return "No valid data found in the import"
	case r.ErrorCount == 0:
		return fmt.Sprintf("Imported %d %s", r.SuccessCount, plural(r.SuccessCount, "item", "items"))
	case r.ErrorCount == 1:
		return r.ErrorMessages[0]
	default:
		return fmt.Sprintf("%d rows could not be imported; see the diagnostic log for details", r.ErrorCount)
	}
}

// Aggregate folds row outcomes and standalone reference failures into a
// Result. Reference failures are reported first since they happened first.
func Aggregate(outcomes []RowOutcome, refFailures []RowOutcome) Result {
	all := make([]RowOutcome, 0, len(refFailures)+len(outcomes))
	all = append(all, refFailures...)
	all = append(all, outcomes...)

	r := Result{
		ErrorMessages: []string{},
		Outcomes:      all,
	}
	for _, o := range all {
		switch o.Tag {
		case OutcomeCreated:
			r.Created++
		case OutcomeMerged:
			r.Merged++
		case OutcomeSkippedDuplicate:
			r.Skipped++
		case OutcomeInvalid:
			r.Invalid++
		case OutcomeWriteFailure:
			r.WriteFailures++
		case OutcomeReferenceFailure:
			r.ReferenceFailures++
		}

		if o.Succeeded() {
			r.SuccessCount++
			continue
		}
		r.ErrorCount++
		r.ErrorMessages = append(r.ErrorMessages, o.Message)
	}
	return r
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
