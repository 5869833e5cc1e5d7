package core

// error_messages.go defines user-friendly error messages with codes for
// support reference. When users encounter errors, they can quote the error
// code to support staff for faster diagnosis.
//
// Error codes are grouped by category:
//
//	NET001-NET003  network errors reaching the explorer API
//	FILE001-FILE006 file handling and parsing
//	COL001         hash column resolution
//	JOB001-JOB006  fetch job lifecycle and session management
//	RATE001        request throttling
//	ERR000         fallback when no pattern matches
//
// Patterns are matched case-insensitively with strings.Contains. The first
// matching pattern wins, so more specific patterns must come before general
// ones. When a user reports ERR000, check the application logs for the
// original technical error.

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

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. Order matters: specific before general.
var errorPatterns = []errorPattern{
	// Network errors reaching the explorer API (NET001-NET003)
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the explorer API",
			Action:  "Please try again in a few moments",
			Code:    "NET001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Connection to the explorer API was interrupted",
			Action:  "Please try again",
			Code:    "NET002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Request to the explorer API timed out",
			Action:  "Try a longer request delay or try again later",
			Code:    "NET003",
		},
	},

	// File errors (FILE001-FILE006)
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated with consistent columns",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save the file as UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file has no data rows",
			Action:  "Please upload a CSV file with at least one hash",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Please upload a .csv file",
			Code:    "FILE006",
		},
	},

	// Column resolution (COL001)
	{
		pattern: "hash column not found",
		msg: UserMessage{
			Message: "The selected hash column does not exist in the file",
			Action:  "Pick one of the columns shown in the preview",
			Code:    "COL001",
		},
	},

	// Fetch job lifecycle (JOB001-JOB006)
	{
		pattern: "job cancelled",
		msg: UserMessage{
			Message: "The fetch job was cancelled",
			Action:  "Start a new job when ready",
			Code:    "JOB001",
		},
	},
	{
		pattern: "too many concurrent jobs",
		msg: UserMessage{
			Message: "The system is busy processing other jobs",
			Action:  "Please wait a moment and try again",
			Code:    "JOB002",
		},
	},
	{
		pattern: "job not found",
		msg: UserMessage{
			Message: "Fetch job not found",
			Action:  "The job may have expired. Please start a new one",
			Code:    "JOB003",
		},
	},
	{
		pattern: "file not found",
		msg: UserMessage{
			Message: "Uploaded file not found",
			Action:  "The upload may have expired. Please upload the file again",
			Code:    "JOB004",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "JOB005",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "JOB006",
		},
	},

	// Rate limiting (RATE001)
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
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

// IsUserFacing checks if an error matches a known pattern and should be
// shown to users. Returns true if the error matches a specific pattern
// (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean
// message for users.
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

// NewUserError creates a UserError by mapping a technical error to a
// user-friendly message. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
