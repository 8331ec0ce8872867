package ethtx

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cyphera/cyphera-xdk/pkg/rlp"
)

// Codec assembles and signs transactions. It holds no mutable state and is
// safe for concurrent use.
type Codec struct {
	signer Signer
	hash   Hasher
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithSigner replaces the default secp256k1 signer.
func WithSigner(s Signer) CodecOption {
	return func(c *Codec) {
		c.signer = s
	}
}

// WithHasher replaces the Keccak-256 digest.
func WithHasher(h Hasher) CodecOption {
	return func(c *Codec) {
		c.hash = h
	}
}

// NewCodec returns a Codec using Secp256k1Signer and Keccak256 unless
// overridden.
func NewCodec(opts ...CodecOption) *Codec {
	c := &Codec{
		signer: Secp256k1Signer{},
		hash:   Keccak256,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UnsignedPayload returns 0x02 || RLP([chainId, nonce, maxPriorityFeePerGas,
// maxFeePerGas, gasLimit, to, value, data, accessList]).
func (c *Codec) UnsignedPayload(tx *Transaction) ([]byte, error) {
	fields, err := tx.fields()
	if err != nil {
		return nil, err
	}
	return envelope(fields), nil
}

// SigningHash is the Keccak-256 digest of UnsignedPayload.
func (c *Codec) SigningHash(tx *Transaction) (common.Hash, error) {
	payload, err := c.UnsignedPayload(tx)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(c.hash(payload)), nil
}

// SignEnvelope signs tx and returns the typed envelope
// 0x02 || RLP([..., v, r, s]), the form accepted by eth_sendRawTransaction.
func (c *Codec) SignEnvelope(tx *Transaction, privateKey []byte) ([]byte, error) {
	fields, err := tx.fields()
	if err != nil {
		return nil, err
	}
	digest := c.hash(envelope(fields))

	sig, err := c.signer.Sign(digest, privateKey)
	if err != nil {
		return nil, err
	}
	v, r, s, err := splitSignature(sig)
	if err != nil {
		return nil, err
	}

	signed := make(rlp.List, 0, len(fields)+3)
	signed = append(signed, fields...)
	signed = append(signed, v, r, s)
	return envelope(signed), nil
}

// Sign returns the signed envelope wrapped as a single RLP string, which is
// how a typed transaction is embedded in a block body.
func (c *Codec) Sign(tx *Transaction, privateKey []byte) ([]byte, error) {
	env, err := c.SignEnvelope(tx, privateKey)
	if err != nil {
		return nil, err
	}
	return rlp.Encode(rlp.String(env)), nil
}

// UnwrapSigned strips the RLP string header added by Sign and checks the
// transaction type byte.
func UnwrapSigned(signed []byte) ([]byte, error) {
	item, err := rlp.Decode(signed)
	if err != nil {
		return nil, err
	}
	env, err := rlp.AsBytes(item)
	if err != nil {
		return nil, err
	}
	if len(env) == 0 || env[0] != DynamicFeeTxType {
		return nil, ErrUnsupportedTransactionType
	}
	if _, err := rlp.Decode(env[1:]); err != nil {
		return nil, fmt.Errorf("invalid envelope payload: %w", err)
	}
	return env, nil
}

func envelope(list rlp.List) []byte {
	return rlp.AppendEncode([]byte{DynamicFeeTxType}, list)
}

func splitSignature(sig []byte) (v, r, s rlp.String, err error) {
	if len(sig) != SignatureLength {
		return nil, nil, nil, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(sig))
	}
	if sig[64] > 1 {
		return nil, nil, nil, fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, sig[64])
	}
	v = rlp.Uint(uint64(sig[64]))
	r = rlp.BigInt(new(big.Int).SetBytes(sig[:32]))
	s = rlp.BigInt(new(big.Int).SetBytes(sig[32:64]))
	return v, r, s, nil
}

var defaultCodec = NewCodec()

// UnsignedPayload uses the default codec.
func UnsignedPayload(tx *Transaction) ([]byte, error) {
	return defaultCodec.UnsignedPayload(tx)
}

// SigningHash uses the default codec.
func SigningHash(tx *Transaction) (common.Hash, error) {
	return defaultCodec.SigningHash(tx)
}

// Sign uses the default codec.
func Sign(tx *Transaction, privateKey []byte) ([]byte, error) {
	return defaultCodec.Sign(tx, privateKey)
}

// SignEnvelope uses the default codec.
func SignEnvelope(tx *Transaction, privateKey []byte) ([]byte, error) {
	return defaultCodec.SignEnvelope(tx, privateKey)
}
