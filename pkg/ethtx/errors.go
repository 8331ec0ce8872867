package ethtx

import "errors"

var (
	// ErrUnsupportedTransactionType is returned when a legacy gas price is
	// given without the EIP-1559 fee fields.
	ErrUnsupportedTransactionType = errors.New("ethtx: unsupported transaction type")

	// ErrNilTransaction is returned when a nil *Transaction is encoded or
	// signed.
	ErrNilTransaction = errors.New("ethtx: nil transaction")

	// ErrMissingFeeFields is returned when neither a gas price nor the
	// EIP-1559 fee fields are set.
	ErrMissingFeeFields = errors.New("ethtx: missing EIP-1559 fee fields")

	// ErrValueOutOfRange is returned for negative integers or integers wider
	// than 256 bits.
	ErrValueOutOfRange = errors.New("ethtx: value out of range")

	// ErrInvalidSignature is returned when the signer does not produce a
	// 65-byte r||s||v signature with v in {0, 1}.
	ErrInvalidSignature = errors.New("ethtx: invalid signature")

	// ErrUnknownChain is returned for chains outside the supported set.
	ErrUnknownChain = errors.New("ethtx: unknown chain")

	// ErrInvalidAddress is returned for addresses longer than 20 bytes.
	ErrInvalidAddress = errors.New("ethtx: invalid address")
)
