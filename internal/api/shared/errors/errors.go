package errors

import (
	"encoding/json"
	"strings"

	"github.com/evrlink/evrlink-mirror/internal/domain"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest        ErrorCode = "bad_request"
	ErrCodeNotFound          ErrorCode = "not_found"
	ErrCodeValidationFailed  ErrorCode = "validation_failed"
	ErrCodeUnauthorized      ErrorCode = "unauthorized"
	ErrCodeForbidden         ErrorCode = "forbidden"
	ErrCodeIncorrectPrice    ErrorCode = "incorrect_price"
	ErrCodeInvalidSecret     ErrorCode = "invalid_secret"
	ErrCodeInsufficientFunds ErrorCode = "insufficient_funds"
	ErrCodeLedgerRejected    ErrorCode = "ledger_rejected"

	// Server errors (5xx)
	ErrCodeInternalError ErrorCode = "internal_error"
	ErrCodeDatabaseError ErrorCode = "database_error"
	ErrCodeServiceError  ErrorCode = "service_error"
	ErrCodeEventNotFound ErrorCode = "event_not_found"
	ErrCodeLedgerTimeout ErrorCode = "ledger_timeout"
	ErrCodeNetworkFault  ErrorCode = "network_fault"
)

// APIError represents a structured API error that carries error code and details
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	// TxHash references the submitted transaction when the failure happened after submission
	TxHash string `json:"tx_hash,omitempty"`
	// Retryable is set when resubmitting the same request may succeed
	Retryable bool `json:"retryable,omitempty"`
}

func (e *APIError) Error() string {
	jsonErr, _ := json.Marshal(e)
	return string(jsonErr)
}

// Error constructors for common error types
func NewBadRequestError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewNotFoundError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewValidationError(details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: "Validation failed",
		Details: strings.Join(details, ", "),
	}
}

func NewUnauthorizedError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewForbiddenError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeForbidden,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewInternalError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeInternalError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewDatabaseError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeDatabaseError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewServiceError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeServiceError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

var kindCodes = map[domain.ErrorKind]struct {
	code    ErrorCode
	message string
}{
	domain.ErrorKindValidation:        {ErrCodeValidationFailed, "Validation failed"},
	domain.ErrorKindUnauthorized:      {ErrCodeForbidden, "Caller is not allowed to perform this operation"},
	domain.ErrorKindIncorrectPrice:    {ErrCodeIncorrectPrice, "Payment does not match the gift card price"},
	domain.ErrorKindInvalidSecret:     {ErrCodeInvalidSecret, "Secret does not match"},
	domain.ErrorKindNotFound:          {ErrCodeNotFound, "Not found"},
	domain.ErrorKindEventNotFound:     {ErrCodeEventNotFound, "Transaction confirmed without the expected event"},
	domain.ErrorKindLedgerTimeout:     {ErrCodeLedgerTimeout, "Transaction submitted, confirmation pending"},
	domain.ErrorKindInsufficientFunds: {ErrCodeInsufficientFunds, "Insufficient funds"},
	domain.ErrorKindNetworkFault:      {ErrCodeNetworkFault, "Ledger unreachable"},
	domain.ErrorKindLedgerRejected:    {ErrCodeLedgerRejected, "Ledger rejected the transaction"},
}

// FromDomainError converts a domain error into an APIError.
// An error that is already an APIError is returned as is.
func FromDomainError(err error) *APIError {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}

	kind := domain.KindOf(err)
	mapped, ok := kindCodes[kind]
	if !ok {
		return NewInternalError("Internal server error")
	}

	apiErr := &APIError{
		Code:      mapped.code,
		Message:   mapped.message,
		Details:   err.Error(),
		Retryable: domain.RetrySafe(err),
	}
	if txHash, ok := domain.TxHashOf(err); ok {
		apiErr.TxHash = txHash
	}
	return apiErr
}
