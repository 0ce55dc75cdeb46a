package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents an API error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	case ErrorTypeAuth, ErrorTypeNotFound, ErrorTypeParsing:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504: // Server errors
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500 // Retry all 5xx errors
	}
}

// SkipReason classifies why a single post was dropped from a page without
// aborting the page or the crawl.
type SkipReason string

const (
	SkipAccessDenied SkipReason = "access_denied"
	SkipParseFailure SkipReason = "parse_failure"
	SkipMalformed    SkipReason = "malformed"
)

// SkipError is the recoverable per-post failure returned by post resolution.
// Callers log it and move on to the next entry.
type SkipError struct {
	Reason SkipReason
	PostID string
	Err    error
}

func (e *SkipError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("post %s skipped (%s): %v", e.PostID, e.Reason, e.Err)
	}
	return fmt.Sprintf("post %s skipped (%s)", e.PostID, e.Reason)
}

func (e *SkipError) Unwrap() error {
	return e.Err
}

// ClassifySkip maps an arbitrary post-resolution error onto a SkipReason.
// Auth and not-found API errors mean the post is not visible to us; parsing
// errors mean the record or an embedded payload could not be decoded.
func ClassifySkip(err error) SkipReason {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.Type {
		case ErrorTypeAuth, ErrorTypeNotFound:
			return SkipAccessDenied
		case ErrorTypeParsing:
			return SkipParseFailure
		}
	}
	return SkipMalformed
}
