// Package ethtx builds, hashes and signs EIP-1559 (type 2) Ethereum
// transactions on top of the rlp package.
package ethtx

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cyphera/cyphera-xdk/pkg/rlp"
)

// DynamicFeeTxType is the EIP-2718 type byte of an EIP-1559 transaction.
const DynamicFeeTxType byte = 0x02

// maxBits bounds every integer field to a 256-bit word.
const maxBits = 256

// Transaction holds the fields of an unsigned transaction. A nil To means
// contract creation. GasPrice is only consulted to reject legacy transactions.
// Nil integer fields encode as zero.
type Transaction struct {
	To                   *common.Address
	Nonce                *big.Int
	GasLimit             *big.Int
	GasPrice             *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	Data                 []byte
	Chain                Chain
	Value                *big.Int
}

// IsDynamicFee reports whether both EIP-1559 fee fields are set.
func (tx *Transaction) IsDynamicFee() bool {
	return tx != nil && tx.MaxFeePerGas != nil && tx.MaxPriorityFeePerGas != nil
}

// AddressFromBytes left-pads b to a 20-byte address.
func AddressFromBytes(b []byte) (common.Address, error) {
	if len(b) > common.AddressLength {
		return common.Address{}, fmt.Errorf("%w: %d bytes", ErrInvalidAddress, len(b))
	}
	return common.BytesToAddress(b), nil
}

// fields returns the nine unsigned list elements in EIP-1559 order.
func (tx *Transaction) fields() (rlp.List, error) {
	if tx == nil {
		return nil, ErrNilTransaction
	}
	if !tx.IsDynamicFee() {
		if tx.GasPrice != nil {
			return nil, ErrUnsupportedTransactionType
		}
		return nil, ErrMissingFeeFields
	}
	if !tx.Chain.Known() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownChain, uint64(tx.Chain))
	}

	ints := []struct {
		name  string
		value *big.Int
	}{
		{"nonce", tx.Nonce},
		{"maxPriorityFeePerGas", tx.MaxPriorityFeePerGas},
		{"maxFeePerGas", tx.MaxFeePerGas},
		{"gasLimit", tx.GasLimit},
		{"value", tx.Value},
	}
	for _, f := range ints {
		if err := checkRange(f.name, f.value); err != nil {
			return nil, err
		}
	}

	var to rlp.String
	if tx.To != nil {
		to = rlp.Bytes(tx.To.Bytes())
	}

	return rlp.List{
		rlp.BigInt(tx.Chain.ID()),
		rlp.BigInt(tx.Nonce),
		rlp.BigInt(tx.MaxPriorityFeePerGas),
		rlp.BigInt(tx.MaxFeePerGas),
		rlp.BigInt(tx.GasLimit),
		to,
		rlp.BigInt(tx.Value),
		rlp.Bytes(tx.Data),
		rlp.List{},
	}, nil
}

func checkRange(name string, x *big.Int) error {
	if x == nil {
		return nil
	}
	if x.Sign() < 0 || x.BitLen() > maxBits {
		return fmt.Errorf("%w: %s", ErrValueOutOfRange, name)
	}
	return nil
}
