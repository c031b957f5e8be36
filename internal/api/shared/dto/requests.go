package dto

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/evrlink/evrlink-mirror/internal/api/shared/constants"
	apierrors "github.com/evrlink/evrlink-mirror/internal/api/shared/errors"
	internalTypes "github.com/evrlink/evrlink-mirror/internal/types"
)

// MintBackgroundRequest represents the request body for minting a background
type MintBackgroundRequest struct {
	ImageRef string `json:"image_ref"`
	Category string `json:"category"`
	// Price is an optional decimal ether amount
	Price string `json:"price,omitempty"`
}

// Validate validates the request body
func (r *MintBackgroundRequest) Validate() error {
	if strings.TrimSpace(r.ImageRef) == "" {
		return apierrors.NewValidationError("image_ref is required")
	}
	if strings.TrimSpace(r.Category) == "" {
		return apierrors.NewValidationError("category is required")
	}
	if r.Price != "" {
		if _, err := internalTypes.ParseEther(r.Price); err != nil {
			return apierrors.NewValidationError(err.Error())
		}
	}
	return nil
}

// PriceWei returns the listing price in wei, zero when unset
func (r *MintBackgroundRequest) PriceWei() *big.Int {
	if r.Price == "" {
		return new(big.Int)
	}
	wei, _ := internalTypes.ParseEther(r.Price)
	return wei
}

// CreateGiftCardRequest represents the request body for creating a gift card
type CreateGiftCardRequest struct {
	BackgroundID uint64 `json:"background_id"`
	// Price is a decimal ether amount
	Price   string `json:"price"`
	Message string `json:"message"`
}

// Validate validates the request body
func (r *CreateGiftCardRequest) Validate() error {
	if r.BackgroundID == 0 {
		return apierrors.NewValidationError("background_id is required")
	}
	price, err := internalTypes.ParseEther(r.Price)
	if err != nil {
		return apierrors.NewValidationError(err.Error())
	}
	if price.Sign() <= 0 {
		return apierrors.NewValidationError("price must be greater than zero")
	}
	if len(r.Message) > constants.MAX_MESSAGE_LENGTH {
		return apierrors.NewValidationError(fmt.Sprintf("message must be at most %d bytes", constants.MAX_MESSAGE_LENGTH))
	}
	return nil
}

// PriceWei returns the gift card price in wei
func (r *CreateGiftCardRequest) PriceWei() *big.Int {
	wei, _ := internalTypes.ParseEther(r.Price)
	return wei
}

// BuyGiftCardRequest represents the request body for buying a gift card
type BuyGiftCardRequest struct {
	Message string `json:"message"`
	// Value is the decimal ether amount paid; it must equal the gift card price
	Value string `json:"value"`
}

// Validate validates the request body
func (r *BuyGiftCardRequest) Validate() error {
	value, err := internalTypes.ParseEther(r.Value)
	if err != nil {
		return apierrors.NewValidationError(err.Error())
	}
	if value.Sign() <= 0 {
		return apierrors.NewValidationError("value must be greater than zero")
	}
	if len(r.Message) > constants.MAX_MESSAGE_LENGTH {
		return apierrors.NewValidationError(fmt.Sprintf("message must be at most %d bytes", constants.MAX_MESSAGE_LENGTH))
	}
	return nil
}

// ValueWei returns the payment in wei
func (r *BuyGiftCardRequest) ValueWei() *big.Int {
	wei, _ := internalTypes.ParseEther(r.Value)
	return wei
}

// SecretRequest represents the request body for setting a secret or claiming a gift card
type SecretRequest struct {
	Secret string `json:"secret"`
}

// Validate validates the request body
func (r *SecretRequest) Validate() error {
	if r.Secret == "" {
		return apierrors.NewValidationError("secret is required")
	}
	return nil
}

// TransferGiftCardRequest represents the request body for transferring a gift card
type TransferGiftCardRequest struct {
	Recipient string `json:"recipient"`
}

// Validate validates the request body
func (r *TransferGiftCardRequest) Validate() error {
	if !internalTypes.IsEthereumAddress(r.Recipient) {
		return apierrors.NewValidationError(fmt.Sprintf("invalid recipient address: %s", r.Recipient))
	}
	return nil
}

// UpdateProfileRequest represents the request body for updating the caller's profile.
// Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	Username        *string `json:"username,omitempty"`
	Email           *string `json:"email,omitempty"`
	Bio             *string `json:"bio,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}

// Validate validates the request body
func (r *UpdateProfileRequest) Validate() error {
	if r.Username == nil && r.Email == nil && r.Bio == nil && r.ProfileImageURL == nil {
		return apierrors.NewValidationError("at least one profile field is required")
	}
	if r.Username != nil && len(*r.Username) > constants.MAX_USERNAME_LENGTH {
		return apierrors.NewValidationError(fmt.Sprintf("username must be at most %d bytes", constants.MAX_USERNAME_LENGTH))
	}
	if r.Email != nil && *r.Email != "" && !strings.Contains(*r.Email, "@") {
		return apierrors.NewValidationError("invalid email")
	}
	if r.Bio != nil && len(*r.Bio) > constants.MAX_BIO_LENGTH {
		return apierrors.NewValidationError(fmt.Sprintf("bio must be at most %d bytes", constants.MAX_BIO_LENGTH))
	}
	return nil
}
