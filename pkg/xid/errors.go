package xid

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLength is returned when raw bytes or a string have the wrong length.
	ErrInvalidLength = errors.New("xid: invalid length")

	// ErrDecodeValidation is returned when a 20 character string does not
	// decode strictly: a character is outside the alphabet or the padding
	// bits do not round-trip.
	ErrDecodeValidation = errors.New("xid: decode validation failure")
)

// LengthError carries the observed and expected length. It matches
// ErrInvalidLength with errors.Is.
type LengthError struct {
	Have int
	Want int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("xid: invalid length: have %d, want %d", e.Have, e.Want)
}

func (e *LengthError) Is(target error) bool {
	return target == ErrInvalidLength
}
