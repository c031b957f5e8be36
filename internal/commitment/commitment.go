// Package commitment implements the one-way commitment used to lock a gift card
// behind a claim secret. The digest is keccak256 of the UTF-8 secret, identical
// to the value the marketplace contract computes on-chain, so a claim can be
// pre-validated off-chain before any gas is spent.
package commitment

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Digest is a 32-byte commitment to a secret
type Digest [32]byte

// Zero is the empty commitment
var Zero Digest

// Commit returns the commitment of secret
func Commit(secret string) Digest {
	return Digest(crypto.Keccak256Hash([]byte(secret)))
}

// Verify recomputes the commitment of secret and compares it with digest.
// The zero digest never verifies.
func Verify(secret string, digest Digest) bool {
	if digest.IsZero() {
		return false
	}
	return Commit(secret) == digest
}

// VerifyHex is Verify for a hex encoded digest; malformed digests never verify
func VerifyHex(secret string, digestHex string) bool {
	d, err := Parse(digestHex)
	if err != nil {
		return false
	}
	return Verify(secret, d)
}

// Parse decodes a 0x-prefixed 32-byte hex digest
func Parse(s string) (Digest, error) {
	b, err := hexutil.Decode(strings.TrimSpace(s))
	if err != nil {
		return Zero, fmt.Errorf("invalid commitment: %w", err)
	}
	if len(b) != len(Zero) {
		return Zero, fmt.Errorf("invalid commitment length: %d", len(b))
	}
	return Digest(common.BytesToHash(b)), nil
}

// IsZero reports whether d is the empty commitment
func (d Digest) IsZero() bool {
	return d == Zero
}

// Hex returns the 0x-prefixed hex encoding of d
func (d Digest) Hex() string {
	return common.Hash(d).Hex()
}

func (d Digest) String() string {
	return d.Hex()
}
