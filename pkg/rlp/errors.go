package rlp

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned for truncated, overrunning, trailing or
	// non-canonical input.
	ErrMalformed = errors.New("rlp: malformed input")

	// ErrExpectedString is returned when a list appears where a string is needed.
	ErrExpectedString = errors.New("rlp: expected string")

	// ErrExpectedList is returned when a string appears where a list is needed.
	ErrExpectedList = errors.New("rlp: expected list")

	// ErrNonCanonicalInteger is returned for integers with leading zero bytes.
	ErrNonCanonicalInteger = errors.New("rlp: non-canonical integer")

	// ErrUintOverflow is returned when an integer does not fit in 64 bits.
	ErrUintOverflow = errors.New("rlp: uint64 overflow")
)

// DecodeError describes where decoding failed. It matches ErrMalformed.
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("rlp: malformed input at offset %d: %s", e.Offset, e.Reason)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformed
}

func malformed(offset int, reason string) error {
	return &DecodeError{Offset: offset, Reason: reason}
}
