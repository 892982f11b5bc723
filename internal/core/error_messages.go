package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Users quote the code to support staff for faster diagnosis.
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Empty import: the file had no data rows
//	IMP002 - Cancelled: the user declined a confirmation
//	IMP003 - Wrong step: a decision was sent that the import is not waiting for
//	IMP004 - Invalid policy: duplicate policy must be skip or merge
//	IMP005 - Missing tenant: the request did not name a tenant
//
// # Row Errors (ROW001-ROW099)
//
//	ROW001 - Missing required fields
//	ROW002 - Negative quantities or prices
//	ROW003 - Unknown category or location
//	ROW004 - Duplicate SKU skipped
//	ROW005 - Count above the stock limit
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key          DB005 - Connection reset
//	DB002 - Unique constraint      DB006 - Timeout
//	DB003 - Foreign key            DB007 - Deadlock
//	DB004 - Connection refused
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large       FILE004 - No file
//	FILE002 - Invalid CSV          FILE005 - Empty file
//	FILE003 - Encoding error       FILE006 - Unsupported file type
//	FILE007 - Unreadable workbook
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - Import expired or unknown
//	UPL002 - System busy
//	UPL003 - Request cancelled
//	UPL004 - Request timeout
//
// # Item Errors (ITM001-ITM099)
//
//	ITM001 - Item not found
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check application logs for the original
// technical error when users report ERR000.
//
// Patterns are matched case-insensitively using strings.Contains. The first
// matching pattern wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Import flow
	{"empty import", UserMessage{"No valid data found in the import", "Add at least one row below the header and try again", "IMP001"}},
	{"cancelled by user", UserMessage{"Import was cancelled", "Start a new import when ready", "IMP002"}},
	{"not awaiting this decision", UserMessage{"This import is not waiting for that decision", "Reload the import to see its current step", "IMP003"}},
	{"invalid duplicate policy", UserMessage{"Unknown duplicate handling option", "Choose either skip or merge", "IMP004"}},
	{"missing tenant", UserMessage{"No tenant was given for this request", "Sign in again and retry", "IMP005"}},

	// Rows
	{"missing required fields", UserMessage{"Required fields are empty", "Fill in name, sku, category, locations and prices", "ROW001"}},
	{"negative values not allowed", UserMessage{"Quantities and prices cannot be negative", "Correct the negative values in your file", "ROW002"}},
	{"unknown category", UserMessage{"The row refers to an unknown category", "Check the category name or create it first", "ROW003"}},
	{"unknown location", UserMessage{"The row refers to an unknown location", "Confirm new locations when asked", "ROW003"}},
	{"stock limit", UserMessage{"A quantity is larger than inventory can hold", "Check the counts in your file for typos", "ROW005"}},
	{"already exists and was skipped", UserMessage{"The SKU already exists and was skipped", "Import again with merge to add the quantities", "ROW004"}},

	// Database constraints
	{"duplicate key", UserMessage{"A record with this key already exists", "Check for duplicate SKUs in your file", "DB001"}},
	{"unique constraint", UserMessage{"This value must be unique but already exists", "Check for duplicate entries in your file", "DB002"}},
	{"violates unique", UserMessage{"A duplicate value was found", "Review your data for duplicate key values", "DB002"}},
	{"foreign key constraint", UserMessage{"Referenced record does not exist", "Ensure categories exist before importing items", "DB003"}},
	{"violates foreign key", UserMessage{"Referenced record does not exist", "Ensure categories exist before importing items", "DB003"}},

	// Database connectivity
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB004"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB005"}},
	{"timeout", UserMessage{"Operation timed out", "Try importing a smaller file or try again later", "DB006"}},
	{"deadlock", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB007"}},

	// Files
	{"file too large", UserMessage{"File exceeds the maximum size limit", "Split the file into smaller chunks", "FILE001"}},
	{"invalid csv", UserMessage{"File is not a valid CSV", "Ensure file is comma-separated with consistent columns", "FILE002"}},
	{"encoding error", UserMessage{"File contains invalid characters", "Save file as UTF-8 encoding", "FILE003"}},
	{"no file provided", UserMessage{"No file was selected", "Please select a CSV or Excel file to import", "FILE004"}},
	{"empty file", UserMessage{"The uploaded file is empty", "Please upload a file with a header and data rows", "FILE005"}},
	{"unsupported file type", UserMessage{"This file type is not supported", "Upload a .csv or .xlsx file", "FILE006"}},
	{"invalid workbook", UserMessage{"The spreadsheet could not be read", "Re-save the file as .xlsx and try again", "FILE007"}},

	// Import sessions
	{"import not found", UserMessage{"Import not found", "The import may have expired. Please start a new import", "UPL001"}},
	{"too many imports", UserMessage{"System is busy processing other imports", "Please wait a moment and try again", "UPL002"}},
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "UPL003"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Try importing a smaller file or check your connection", "UPL004"}},

	// Items
	{"record not found", UserMessage{"No item with this SKU exists", "Check the SKU and try again", "ITM001"}},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, a generic fallback message with code ERR000 is returned.
//
// Example:
//
//	msg := MapError(fmt.Errorf("create item: %w", ErrConflict))
//	// msg.Code == "DB002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
