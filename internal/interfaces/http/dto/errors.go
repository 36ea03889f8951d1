package dto

import (
	"net/http"

	"github.com/psim/backend/internal/domain/movement"
	"github.com/psim/backend/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeServiceUnavailable is returned by the readiness probe
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed bodies and path parameters
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodePayloadTooLarge is used when the body exceeds the configured limit
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeDuplicateRequest    = "ERR_DUPLICATE_REQUEST"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
)

// Ledger rule error codes
const (
	// ErrCodeInvariantViolation is used when a movement would drive stock negative
	// or return more than was issued
	ErrCodeInvariantViolation = "ERR_INVARIANT_VIOLATION"
	// ErrCodeVoucherSequenceExhausted is used when a voucher prefix has used up its daily numbers
	ErrCodeVoucherSequenceExhausted = "ERR_VOUCHER_SEQUENCE_EXHAUSTED"
)

// Rate limiting
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:            http.StatusInternalServerError,
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,
	ErrCodeInvalidState:        http.StatusConflict,

	ErrCodeInvariantViolation:       http.StatusUnprocessableEntity,
	ErrCodeVoucherSequenceExhausted: http.StatusInternalServerError,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	shared.CodeValidation:                 ErrCodeValidation,
	shared.CodeNotFound:                   ErrCodeNotFound,
	shared.CodeAlreadyExists:              ErrCodeAlreadyExists,
	shared.CodeConcurrencyConflict:        ErrCodeConcurrencyConflict,
	shared.CodeDuplicateRequest:           ErrCodeDuplicateRequest,
	shared.CodeInvariantViolation:         ErrCodeInvariantViolation,
	shared.CodeInvalidState:               ErrCodeInvalidState,
	movement.CodeVoucherSequenceExhausted: ErrCodeVoucherSequenceExhausted,
}

// NormalizeErrorCode converts a domain error code to the ERR_ format.
// Codes already in the ERR_ format pass through, anything else becomes ERR_UNKNOWN.
func NormalizeErrorCode(code string) string {
	if normalized, ok := DomainErrorCodeMapping[code]; ok {
		return normalized
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeUnknown
}
