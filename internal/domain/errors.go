package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for missing or malformed input; nothing is submitted to the ledger
	ErrValidation = errors.New("validation error")

	// ErrUnauthorized is returned when the caller does not hold the required role
	ErrUnauthorized = errors.New("unauthorized")

	// ErrIncorrectPrice is returned when a payment does not match the gift card price
	ErrIncorrectPrice = errors.New("incorrect price")

	// ErrInvalidSecret is returned when a claim secret does not match the commitment
	ErrInvalidSecret = errors.New("invalid secret")

	// ErrNotFound is returned when a referenced background or gift card does not exist
	ErrNotFound = errors.New("not found")

	// ErrEventNotFound is returned when a confirmed receipt lacks the expected event
	ErrEventNotFound = errors.New("event not found in transaction receipt")

	// ErrLedgerTimeout is returned when confirmation is not observed within the bound.
	// The transaction status is unknown, not failed.
	ErrLedgerTimeout = errors.New("ledger confirmation timed out, status unknown")

	// ErrInsufficientFunds is returned when the sender cannot cover the payment
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNetworkFault is returned when the ledger could not be reached
	ErrNetworkFault = errors.New("network fault")

	// ErrLedgerRejected is returned for reverts that map to no other kind
	ErrLedgerRejected = errors.New("ledger rejected transaction")

	// ErrSubscriptionFailed is returned when subscription to events fails
	ErrSubscriptionFailed = errors.New("subscription failed")
)

// ErrorKind is the stable, caller-visible classification of an error
type ErrorKind string

const (
	ErrorKindValidation        ErrorKind = "ValidationError"
	ErrorKindUnauthorized      ErrorKind = "Unauthorized"
	ErrorKindIncorrectPrice    ErrorKind = "IncorrectPrice"
	ErrorKindInvalidSecret     ErrorKind = "InvalidSecret"
	ErrorKindNotFound          ErrorKind = "NotFound"
	ErrorKindEventNotFound     ErrorKind = "EventNotFound"
	ErrorKindLedgerTimeout     ErrorKind = "LedgerTimeout"
	ErrorKindInsufficientFunds ErrorKind = "InsufficientFunds"
	ErrorKindNetworkFault      ErrorKind = "NetworkFault"
	ErrorKindLedgerRejected    ErrorKind = "LedgerRejected"
	ErrorKindInternal          ErrorKind = "Internal"
)

var errorKinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrValidation, ErrorKindValidation},
	{ErrUnauthorized, ErrorKindUnauthorized},
	{ErrIncorrectPrice, ErrorKindIncorrectPrice},
	{ErrInvalidSecret, ErrorKindInvalidSecret},
	{ErrNotFound, ErrorKindNotFound},
	{ErrEventNotFound, ErrorKindEventNotFound},
	{ErrLedgerTimeout, ErrorKindLedgerTimeout},
	{ErrInsufficientFunds, ErrorKindInsufficientFunds},
	{ErrNetworkFault, ErrorKindNetworkFault},
	{ErrLedgerRejected, ErrorKindLedgerRejected},
}

// KindOf returns the stable kind of err, or ErrorKindInternal when unclassified
func KindOf(err error) ErrorKind {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ErrorKindInternal
}

// RetrySafe reports whether resubmitting the same request may succeed.
// Only transport faults qualify; ledger rejections repeat with the same input.
func RetrySafe(err error) bool {
	return errors.Is(err, ErrNetworkFault)
}

// TxError attaches the transaction reference to failures that happen after submission
type TxError struct {
	TxHash string
	Err    error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("tx %s: %v", e.TxHash, e.Err)
}

func (e *TxError) Unwrap() error {
	return e.Err
}

// NewTxError wraps err with the transaction hash
func NewTxError(txHash string, err error) error {
	return &TxError{TxHash: txHash, Err: err}
}

// TxHashOf extracts the transaction hash carried by err, if any
func TxHashOf(err error) (string, bool) {
	var txErr *TxError
	if errors.As(err, &txErr) {
		return txErr.TxHash, true
	}
	return "", false
}
