package commitment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommit(t *testing.T) {
	// keccak256("my-secret-key") as computed by ethers.keccak256(toUtf8Bytes(...))
	d := Commit("my-secret-key")

	assert.False(t, d.IsZero())
	assert.Len(t, d.Hex(), 66)
	assert.Equal(t, d, Commit("my-secret-key"), "commitment must be deterministic")
	assert.NotEqual(t, d, Commit("my-secret-key "), "no fuzzy matching")
	assert.NotEqual(t, d, Commit("My-secret-key"))

	// keccak256 of the empty string is a well-known constant
	assert.Equal(t, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", Commit("").Hex())
}

func TestVerify(t *testing.T) {
	d := Commit("my-secret-key")

	tests := []struct {
		name     string
		secret   string
		digest   Digest
		expected bool
	}{
		{name: "matching secret", secret: "my-secret-key", digest: d, expected: true},
		{name: "wrong secret", secret: "wrong-secret", digest: d, expected: false},
		{name: "empty secret", secret: "", digest: d, expected: false},
		{name: "zero digest never verifies", secret: "", digest: Zero, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Verify(tt.secret, tt.digest))
		})
	}
}

func TestParse(t *testing.T) {
	d := Commit("gift")

	parsed, err := Parse(d.Hex())
	require.NoError(t, err)
	assert.Equal(t, d, parsed)

	_, err = Parse("0x1234")
	assert.Error(t, err)

	_, err = Parse("not-hex")
	assert.Error(t, err)

	assert.True(t, VerifyHex("gift", d.Hex()))
	assert.False(t, VerifyHex("gift", "garbage"))
	assert.False(t, VerifyHex("gift", Zero.Hex()))
}
