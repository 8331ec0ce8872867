package ethtx

import (
	"fmt"
	"math/big"
	"strings"
)

// Chain is a known Ethereum network, identified by its EIP-155 chain id.
type Chain uint64

const (
	Mainnet Chain = 1
	Goerli  Chain = 5
	Sepolia Chain = 11155111
)

var chainNames = map[Chain]string{
	Mainnet: "mainnet",
	Goerli:  "goerli",
	Sepolia: "sepolia",
}

// ID returns the numeric chain id.
func (c Chain) ID() *big.Int {
	return new(big.Int).SetUint64(uint64(c))
}

// Known reports whether c is one of the supported networks.
func (c Chain) Known() bool {
	_, ok := chainNames[c]
	return ok
}

func (c Chain) String() string {
	if name, ok := chainNames[c]; ok {
		return name
	}
	return fmt.Sprintf("chain(%d)", uint64(c))
}

// ParseChain resolves a network name, case-insensitively.
func ParseChain(name string) (Chain, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for c, cn := range chainNames {
		if cn == n {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChain, name)
}
