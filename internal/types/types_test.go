package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringHelpers(t *testing.T) {
	p := StringPtr("test")
	require.NotNil(t, p)
	assert.Equal(t, "test", *p)

	assert.True(t, StringNilOrEmpty(nil))
	assert.True(t, StringNilOrEmpty(StringPtr("")))
	assert.False(t, StringNilOrEmpty(StringPtr("x")))

	assert.Equal(t, "", SafeString(nil))
	assert.Equal(t, "x", SafeString(StringPtr("x")))
}

func TestIsPositiveNumeric(t *testing.T) {
	assert.True(t, IsPositiveNumeric("1"))
	assert.True(t, IsPositiveNumeric("1234567890"))
	assert.False(t, IsPositiveNumeric("0"))
	assert.False(t, IsPositiveNumeric("01"))
	assert.False(t, IsPositiveNumeric("-1"))
	assert.False(t, IsPositiveNumeric(""))
}

func TestIsEthereumAddress(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "lowercase address", input: "0x1234567890abcdef1234567890abcdef12345678", expected: true},
		{name: "checksummed address", input: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", expected: true},
		{name: "zero address", input: "0x0000000000000000000000000000000000000000", expected: false},
		{name: "too short", input: "0x1234", expected: false},
		{name: "not hex", input: "0xzz34567890abcdef1234567890abcdef12345678", expected: false},
		{name: "empty", input: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsEthereumAddress(tt.input))
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", NormalizeAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"))
	assert.True(t, SameAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED"))
	assert.False(t, SameAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "0x0000000000000000000000000000000000000001"))
}

func TestParseEther(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "one ether", input: "1", expected: "1000000000000000000"},
		{name: "one hundredth", input: "0.01", expected: "10000000000000000"},
		{name: "small price", input: "0.0001", expected: "100000000000000"},
		{name: "smaller payment", input: "0.00005", expected: "50000000000000"},
		{name: "one wei", input: "0.000000000000000001", expected: "1"},
		{name: "surrounding spaces", input: " 2.5 ", expected: "2500000000000000000"},
		{name: "too many decimals", input: "0.0000000000000000001", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "float exponent", input: "1e18", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "trailing dot", input: "1.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wei, err := ParseEther(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, wei.String())
		})
	}
}

func TestFormatEther(t *testing.T) {
	tests := []struct {
		input    *big.Int
		expected string
	}{
		{input: nil, expected: "0"},
		{input: big.NewInt(0), expected: "0"},
		{input: big.NewInt(1), expected: "0.000000000000000001"},
		{input: big.NewInt(10000000000000000), expected: "0.01"},
		{input: new(big.Int).Mul(big.NewInt(25), big.NewInt(100000000000000000)), expected: "2.5"},
		{input: big.NewInt(-50000000000000), expected: "-0.00005"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatEther(tt.input))
		})
	}
}

func TestParseWei(t *testing.T) {
	v, err := ParseWei("123")
	require.NoError(t, err)
	assert.Equal(t, int64(123), v.Int64())

	_, err = ParseWei("-1")
	assert.Error(t, err)

	_, err = ParseWei("0.1")
	assert.Error(t, err)
}
