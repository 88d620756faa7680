// Package errors provides the error taxonomy shared by the idea workers and
// its mapping onto BPMN errors and Zeebe job retries.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

type ErrorCode string

const (
	ErrCodeIdeaValidationFailed ErrorCode = "IDEA_VALIDATION_FAILED"
	ErrCodeIdeaNotFound         ErrorCode = "IDEA_NOT_FOUND"
	ErrCodeIdeaSchemaInvalid    ErrorCode = "IDEA_SCHEMA_INVALID"
	ErrCodeDuplicateInterest    ErrorCode = "DUPLICATE_INTEREST"
	ErrCodeAccessDenied         ErrorCode = "ACCESS_DENIED"

	ErrCodeDatabaseInsertFailed ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeDatabaseQueryFailed  ErrorCode = "DATABASE_QUERY_FAILED"
	ErrCodeSearchQueryFailed    ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeCacheUnavailable     ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeScoringTimeout ErrorCode = "SCORING_TIMEOUT"
	ErrCodeScoringFailed  ErrorCode = "SCORING_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInvalidInput           ErrorCode = "INVALID_INPUT"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the structured error returned by worker operations.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error and returns it for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError is what gets thrown to, or failed back into, the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns the process variables set alongside the error.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewIdeaValidationFailedError carries the validator's issues as metadata.
func NewIdeaValidationFailedError(issues []string) *StandardError {
	return newError(ErrCodeIdeaValidationFailed, "Idea failed submission checks", strings.Join(issues, "; "), false).
		WithMetadata("issues", issues)
}

func NewIdeaNotFoundError(ideaID string) *StandardError {
	return newError(ErrCodeIdeaNotFound, "Idea not found", fmt.Sprintf("ideaId: %s", ideaID), false)
}

func NewIdeaSchemaInvalidError(details string) *StandardError {
	return newError(ErrCodeIdeaSchemaInvalid, "Idea fields outside allowed values", details, false)
}

func NewDuplicateInterestError(ideaID, investorID string) *StandardError {
	return newError(ErrCodeDuplicateInterest, "Interest already expressed",
		fmt.Sprintf("ideaId: %s, investorId: %s", ideaID, investorID), false)
}

func NewAccessDeniedError(details string) *StandardError {
	return newError(ErrCodeAccessDenied, "Access denied", details, false)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", err.Error(), true)
}

func NewDatabaseQueryFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeDatabaseQueryFailed, "Database query failed",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true)
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("index: %s, error: %s", index, err.Error()), true)
}

func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Cache unavailable", err.Error(), true)
}

func NewScoringTimeoutError(provider string) *StandardError {
	return newError(ErrCodeScoringTimeout, "Scoring service timeout", fmt.Sprintf("provider: %s", provider), true)
}

func NewScoringFailedError(provider string, err error) *StandardError {
	return newError(ErrCodeScoringFailed, "Scoring service error",
		fmt.Sprintf("provider: %s, error: %s", provider, err.Error()), true)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true)
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job variables", details, false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal codes to the error codes caught by boundary
// events in the idea workflows.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeIdeaValidationFailed:   "IDEA_VALIDATION_FAILED",
	ErrCodeIdeaNotFound:           "IDEA_NOT_FOUND",
	ErrCodeIdeaSchemaInvalid:      "IDEA_SCHEMA_INVALID",
	ErrCodeDuplicateInterest:      "DUPLICATE_INTEREST",
	ErrCodeAccessDenied:           "ACCESS_DENIED",
	ErrCodeDatabaseInsertFailed:   "DATABASE_INSERT_FAILED",
	ErrCodeDatabaseQueryFailed:    "DATABASE_QUERY_FAILED",
	ErrCodeSearchQueryFailed:      "SEARCH_QUERY_FAILED",
	ErrCodeCacheUnavailable:       "CACHE_UNAVAILABLE",
	ErrCodeScoringTimeout:         "SCORING_TIMEOUT",
	ErrCodeScoringFailed:          "SCORING_FAILED",
	ErrCodeNotificationSendFailed: "NOTIFICATION_SEND_FAILED",
	ErrCodeInvalidInput:           "INVALID_INPUT",
}

// GetRetryCount is the number of job retries a code is worth.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseInsertFailed,
		ErrCodeDatabaseQueryFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeCacheUnavailable,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeScoringTimeout:
		return 2

	case ErrCodeScoringFailed:
		return 1

	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, ok := BPMNErrorMapping[stdErr.Code]
	if !ok {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if issues, ok := stdErr.Metadata["issues"]; ok {
		vars["issues"] = issues
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError finds a StandardError anywhere in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "IDEA_") || code == ErrCodeDuplicateInterest:
		return "IDEA"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "SCORING"):
		return "AI"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "ACCESS"):
		return "AUTH"
	default:
		return "OTHER"
	}
}
