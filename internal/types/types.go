package types

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/evrlink/evrlink-mirror/internal/domain"
)

var etherAmountRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// StringPtr converts a string to a pointer to a string
func StringPtr(s string) *string {
	return &s
}

// StringNilOrEmpty checks if a pointer to a string is nil or empty
func StringNilOrEmpty(s *string) bool {
	return s == nil || *s == ""
}

// SafeString returns a safe string from a pointer to a string
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// IsPositiveNumeric checks if a string is a valid positive numeric value
func IsPositiveNumeric(s string) bool {
	regex := regexp.MustCompile(`^[1-9][0-9]*$`)
	return regex.MatchString(s)
}

// IsEthereumAddress checks if a string is a valid, non-zero Ethereum address
func IsEthereumAddress(s string) bool {
	return common.IsHexAddress(s) && common.HexToAddress(s) != (common.Address{})
}

// NormalizeAddress returns the EIP-55 checksummed form of an address
func NormalizeAddress(s string) string {
	return common.HexToAddress(s).Hex()
}

// SameAddress compares two addresses case-insensitively
func SameAddress(a, b string) bool {
	return strings.EqualFold(a, b)
}

// ParseEther converts a decimal ether amount (e.g. "0.01") into wei without floating point
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if !etherAmountRegex.MatchString(s) {
		return nil, fmt.Errorf("invalid ether amount: %q", s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid ether amount: %q", s)
	}
	if -d.Exponent() > domain.ETHER_DECIMALS {
		return nil, fmt.Errorf("ether amount has more than %d decimals: %q", domain.ETHER_DECIMALS, s)
	}
	return d.Shift(domain.ETHER_DECIMALS).BigInt(), nil
}

// FormatEther renders a wei amount as a decimal ether string with trailing zeros trimmed
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -domain.ETHER_DECIMALS).String()
}

// ParseWei parses a base-10 wei amount
func ParseWei(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid wei amount: %q", s)
	}
	return v, nil
}
