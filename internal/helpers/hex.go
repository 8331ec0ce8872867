package helpers

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// HexOptions controls EncodeHex output.
type HexOptions struct {
	Prefix bool
	Upper  bool
}

// DecodeHex parses a hex string. The 0x prefix is optional, case is ignored
// and an odd number of digits is left-padded with a zero.
func DecodeHex(s string) ([]byte, error) {
	s = trimHexPrefix(strings.TrimSpace(s))
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string: %w", err)
	}
	return b, nil
}

// EncodeHex formats b as hex.
func EncodeHex(b []byte, opts HexOptions) string {
	s := hex.EncodeToString(b)
	if opts.Upper {
		s = strings.ToUpper(s)
	}
	if opts.Prefix {
		s = "0x" + s
	}
	return s
}

// ParseBigInt parses a non-negative integer given in decimal or 0x-prefixed
// hex. An empty string yields nil.
func ParseBigInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	base := 10
	digits := s
	if trimmed := trimHexPrefix(s); trimmed != s {
		base = 16
		digits = trimmed
	}
	if digits == "" {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	for _, c := range digits {
		if c == '_' || c == '+' || c == '-' {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
	}

	x, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return x, nil
}

// IsPrivateKeyValid checks if the provided string is a 32-byte hex key, with
// or without the 0x prefix.
func IsPrivateKeyValid(key string) bool {
	key = trimHexPrefix(key)
	if len(key) != 64 {
		return false
	}
	_, err := hex.DecodeString(key)
	return err == nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
