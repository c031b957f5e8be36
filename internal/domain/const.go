package domain

const (
	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"
	ETHEREUM_ZERO_HASH    = "0x0000000000000000000000000000000000000000000000000000000000000000"

	// ETHER_DECIMALS is the number of decimal places of the native currency
	ETHER_DECIMALS = 18
)
