package ethtx

import (
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the size of a recoverable signature: r (32) || s (32) || v (1).
const SignatureLength = 65

// Signer produces recoverable secp256k1 signatures over a 32-byte hash.
type Signer interface {
	Sign(hash []byte, privateKey []byte) ([]byte, error)
}

// Hasher computes the digest that gets signed.
type Hasher func(data ...[]byte) []byte

// Keccak256 is the Ethereum signing digest.
func Keccak256(data ...[]byte) []byte {
	return crypto.Keccak256(data...)
}

// Secp256k1Signer signs with go-ethereum's deterministic (RFC 6979) signer.
type Secp256k1Signer struct{}

// Sign implements Signer. privateKey is the raw 32-byte scalar.
func (Secp256k1Signer) Sign(hash []byte, privateKey []byte) ([]byte, error) {
	key, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, err
	}
	return crypto.Sign(hash, key)
}
