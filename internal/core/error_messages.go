package core

// error_messages.go maps technical errors to coded messages for operators.
//
// Codes are grouped by category so support can find the cause from a
// screenshot:
//
//	FILE001-FILE099  reading and parsing the uploaded file
//	VAL001-VAL099    request and mapping validation
//	IMP001-IMP099    import sessions and concurrency
//	TPL001-TPL099    mapping templates
//	DB001-DB099      persistence
//	RATE001          request rate limiting
//	ERR000           anything unrecognised; check the logs
//
// Per-row validation issues ("Invalid email format" and friends) are data,
// not errors, and never pass through here.

import (
	"fmt"
	"strings"
)

// UserMessage is what an operator sees for a failed request.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is searched in order; the first case-insensitive substring
// match wins, so specific patterns come before general ones.
var errorPatterns = []errorPattern{
	// File
	{"file too large", UserMessage{"File exceeds the maximum upload size", "Split the file into smaller files", "FILE001"}},
	{"empty file", UserMessage{"The uploaded file has no content", "Upload a CSV file with a header row", "FILE002"}},
	{"read file", UserMessage{"The uploaded file could not be read", "Upload the file again", "FILE003"}},
	{"no file provided", UserMessage{"No file was selected", "Select a CSV file to upload", "FILE004"}},
	{"not a csv", UserMessage{"Only CSV files are accepted", "Export the spreadsheet as CSV and try again", "FILE005"}},

	// Request validation
	{"invalid mapping", UserMessage{"The field mapping could not be understood", "Map the columns again and resubmit", "VAL001"}},
	{"job id is required", UserMessage{"No job opening was selected", "Choose a job opening before importing", "VAL002"}},
	{"invalid request body", UserMessage{"The request could not be understood", "Refresh the page and try again", "VAL003"}},
	{"template name is required", UserMessage{"Template name is required", "Enter a name for the template", "VAL004"}},
	{"template mapping is empty", UserMessage{"The template has no mapped fields", "Map at least one column before saving", "VAL005"}},

	// Import sessions
	{"too many concurrent imports", UserMessage{"The system is busy with other imports", "Wait a moment and try again", "IMP001"}},
	{"import not found", UserMessage{"This import session has expired", "Upload the file again to start a new import", "IMP002"}},
	{"context canceled", UserMessage{"The request was cancelled", "Try again", "IMP003"}},
	{"context deadline exceeded", UserMessage{"The request timed out", "Try a smaller file or try again later", "IMP004"}},

	// Templates
	{"template not found", UserMessage{"Mapping template not found", "It may have been deleted; refresh the list", "TPL001"}},
	{"template already exists", UserMessage{"A template with this name already exists", "Choose a different name", "TPL002"}},
	{"invalid template id", UserMessage{"Invalid template reference", "Refresh the page and try again", "TPL003"}},

	// Database
	{"duplicate key", UserMessage{"Some candidates already exist for this job", "Exclude the duplicate rows and commit again", "DB001"}},
	{"violates unique", UserMessage{"Some candidates already exist for this job", "Exclude the duplicate rows and commit again", "DB001"}},
	{"violates foreign key", UserMessage{"The job opening does not exist", "Check the job opening and try again", "DB002"}},
	{"connection refused", UserMessage{"Unable to reach the database", "Try again in a few moments", "DB003"}},
	{"connection reset", UserMessage{"The database connection was interrupted", "Try again", "DB004"}},
	{"deadlock", UserMessage{"The database was busy with conflicting work", "Try again", "DB005"}},
	{"timeout", UserMessage{"The database took too long to respond", "Try again later", "DB006"}},

	{"rate limit", UserMessage{"Too many requests", "Wait a moment before trying again", "RATE001"}},
}

// defaultMessage is the ERR000 fallback.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user message. Unknown errors map
// to ERR000; nil maps to the zero UserMessage.
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

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. It returns nil for a nil error.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
