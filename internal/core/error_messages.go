package core

// error_messages.go maps technical errors to user-facing messages with a
// code for support reference.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large            ErrFileTooLarge, "file too large"
//	FILE002 - Unsupported format        source.ErrUnsupportedFormat
//	FILE003 - Unknown encoding          "unknown encoding"
//	FILE004 - No file                   "no file provided"
//	FILE005 - Empty file                source.ErrEmptyFile
//	FILE006 - Unreadable file           "open xlsx", "open xls", "read chunk", "parse error"
//	FILE007 - Sheet not found           source.ErrSheetNotFound
//
// # Inference Errors (INF001-INF099)
//
//	INF001 - Invalid type override      inference.ErrInvalidOverride
//	INF002 - Unknown type name          "unknown semantic type"
//	INF003 - Invalid inference profile  "inference profile", "profile"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Run cancelled              context.Canceled
//	RUN002 - Run timed out              context.DeadlineExceeded
//	RUN003 - System busy                ErrTooManyRuns
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests         "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the technical error.
//
// Sentinel errors are matched with errors.Is first; the remaining patterns
// are matched case-insensitively with strings.Contains, first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vincentarsontaneli/data-processor-app/internal/inference"
	"github.com/vincentarsontaneli/data-processor-app/internal/source"
)

// ErrFileTooLarge is returned when an upload exceeds the configured size.
var ErrFileTooLarge = errors.New("file too large")

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

var (
	msgFileTooLarge = UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the file into smaller files",
		Code:    "FILE001",
	}
	msgUnsupported = UserMessage{
		Message: "File format is not supported",
		Action:  "Upload a .csv, .xls or .xlsx file",
		Code:    "FILE002",
	}
	msgEncoding = UserMessage{
		Message: "File encoding is not recognized",
		Action:  "Save the file as UTF-8 or pass a known encoding name",
		Code:    "FILE003",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select a file to upload",
		Code:    "FILE004",
	}
	msgEmptyFile = UserMessage{
		Message: "The file has no header row",
		Action:  "Upload a file with a header row and data rows",
		Code:    "FILE005",
	}
	msgUnreadable = UserMessage{
		Message: "The file could not be read",
		Action:  "Check that the file is not corrupt and matches its extension",
		Code:    "FILE006",
	}
	msgSheet = UserMessage{
		Message: "The requested worksheet does not exist",
		Action:  "Check the sheet name, or leave it empty to use the first sheet",
		Code:    "FILE007",
	}
	msgOverride = UserMessage{
		Message: "A column type override is not allowed",
		Action:  "Pick a target type the column can be converted to",
		Code:    "INF001",
	}
	msgTypeName = UserMessage{
		Message: "Unknown column type name",
		Action:  "Use one of the types listed by /api/types",
		Code:    "INF002",
	}
	msgProfile = UserMessage{
		Message: "The inference profile is invalid",
		Action:  "Use default, strict or lenient, and check the profile file",
		Code:    "INF003",
	}
	msgCancelled = UserMessage{
		Message: "Processing was cancelled",
		Action:  "Please try again",
		Code:    "RUN001",
	}
	msgTimeout = UserMessage{
		Message: "Processing timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "RUN002",
	}
	msgBusy = UserMessage{
		Message: "System is busy processing other files",
		Action:  "Please wait a moment and try again",
		Code:    "RUN003",
	}
	msgRateLimit = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
)

// sentinels are checked with errors.Is, in order.
var sentinels = []struct {
	target error
	msg    UserMessage
}{
	{ErrFileTooLarge, msgFileTooLarge},
	{source.ErrUnsupportedFormat, msgUnsupported},
	{source.ErrEmptyFile, msgEmptyFile},
	{source.ErrSheetNotFound, msgSheet},
	{inference.ErrInvalidOverride, msgOverride},
	{ErrTooManyRuns, msgBusy},
	{context.Canceled, msgCancelled},
	{context.DeadlineExceeded, msgTimeout},
}

// errorPattern maps a lower-case substring to a user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns catch errors that lost their sentinel, for example after
// crossing a process boundary. Specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{"file too large", msgFileTooLarge},
	{"request body too large", msgFileTooLarge},
	{"unsupported file format", msgUnsupported},
	{"unknown encoding", msgEncoding},
	{"no file provided", msgNoFile},
	{"file is empty", msgEmptyFile},
	{"sheet not found", msgSheet},
	{"invalid type override", msgOverride},
	{"unknown semantic type", msgTypeName},
	{"inference profile", msgProfile},
	{"profile", msgProfile},
	{"open xlsx", msgUnreadable},
	{"open xls", msgUnreadable},
	{"read chunk", msgUnreadable},
	{"parse error", msgUnreadable},
	{"too many concurrent runs", msgBusy},
	{"context canceled", msgCancelled},
	{"deadline exceeded", msgTimeout},
	{"rate limit", msgRateLimit},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If nothing matches, a generic fallback with code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinels {
		if errors.Is(err, s.target) {
			return s.msg
		}
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

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
