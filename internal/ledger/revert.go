package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evrlink/evrlink-mirror/internal/domain"
)

// Revert reasons raised by the marketplace contract
const (
	RevertBackgroundNotFound   = "Background does not exist"
	RevertGiftCardNotFound     = "Gift card does not exist"
	RevertImageAlreadyMinted   = "Background image already minted"
	RevertPriceNotPositive     = "Price must be greater than zero"
	RevertIncorrectPrice       = "Incorrect price"
	RevertOwnerCannotBuy       = "Owner cannot buy own gift card"
	RevertOnlyOwnerSetSecret   = "Only the owner can set the secret key"
	RevertOnlyOwnerTransfer    = "Only the owner can transfer the gift card"
	RevertNotClaimable         = "Gift card is not claimable"
	RevertInvalidSecret        = "Invalid secret"
	RevertInvalidRecipient     = "Invalid recipient"
	RevertInsufficientFunds    = "insufficient funds"
	RevertEmptySecret          = "Secret must not be empty"
	RevertEmptyImageRef        = "Image URI must not be empty"
	RevertTransferToSelf       = "Cannot transfer to current owner"
	RevertCategoryNotSpecified = "Category must not be empty"
)

var revertKinds = []struct {
	reason string
	err    error
}{
	{RevertBackgroundNotFound, domain.ErrNotFound},
	{RevertGiftCardNotFound, domain.ErrNotFound},
	{RevertImageAlreadyMinted, domain.ErrValidation},
	{RevertPriceNotPositive, domain.ErrValidation},
	{RevertIncorrectPrice, domain.ErrIncorrectPrice},
	{RevertOwnerCannotBuy, domain.ErrUnauthorized},
	{RevertOnlyOwnerSetSecret, domain.ErrUnauthorized},
	{RevertOnlyOwnerTransfer, domain.ErrUnauthorized},
	{RevertNotClaimable, domain.ErrInvalidSecret},
	{RevertInvalidSecret, domain.ErrInvalidSecret},
	{RevertInvalidRecipient, domain.ErrValidation},
	{RevertInsufficientFunds, domain.ErrInsufficientFunds},
	{RevertEmptySecret, domain.ErrValidation},
	{RevertEmptyImageRef, domain.ErrValidation},
	{RevertTransferToSelf, domain.ErrValidation},
	{RevertCategoryNotSpecified, domain.ErrValidation},
}

// RevertError is a ledger rejection with its raw reason
type RevertError struct {
	Reason string
	kind   error
}

func (e *RevertError) Error() string {
	return fmt.Sprintf("%v: %s", e.kind, e.Reason)
}

func (e *RevertError) Unwrap() error {
	return e.kind
}

// MapRevert classifies a revert reason into a stable error kind.
// Node error strings wrap the reason, so matching is by substring.
func MapRevert(reason string) error {
	for _, rk := range revertKinds {
		if strings.Contains(strings.ToLower(reason), strings.ToLower(rk.reason)) {
			return &RevertError{Reason: rk.reason, kind: rk.err}
		}
	}
	return &RevertError{Reason: reason, kind: domain.ErrLedgerRejected}
}

// RevertReason returns the raw reason carried by err, if any
func RevertReason(err error) (string, bool) {
	var re *RevertError
	if errors.As(err, &re) {
		return re.Reason, true
	}
	return "", false
}

func revert(reason string) error {
	return MapRevert(reason)
}
