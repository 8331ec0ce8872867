package xid

import (
	"bytes"
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"time"
	"unicode/utf8"
)

const (
	rawLen     = 12
	encodedLen = 20
)

// ID is a 12-byte globally unique identifier. The zero value is NilID.
type ID [rawLen]byte

// NilID is the zero ID.
var NilID ID

// FromBytes wraps exactly 12 raw bytes.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != rawLen {
		return id, &LengthError{Have: len(b), Want: rawLen}
	}
	copy(id[:], b)
	return id, nil
}

// FromString parses the 20 character string form.
func FromString(s string) (ID, error) {
	if n := utf8.RuneCountInString(s); n != encodedLen {
		return NilID, &LengthError{Have: n, Want: encodedLen}
	}
	return FromUTF8([]byte(s))
}

// FromUTF8 parses the string form given as its 20 ASCII bytes.
func FromUTF8(b []byte) (ID, error) {
	var id ID
	if len(b) != encodedLen {
		return NilID, ErrDecodeValidation
	}
	if !decode(&id, b) {
		return NilID, ErrDecodeValidation
	}
	return id, nil
}

// String returns the canonical base32hex form.
func (id ID) String() string {
	var dst [encodedLen]byte
	encode(dst[:], &id)
	return string(dst[:])
}

// Bytes returns a copy of the raw 12 bytes.
func (id ID) Bytes() []byte {
	b := make([]byte, rawLen)
	copy(b, id[:])
	return b
}

// Time returns the embedded timestamp with second resolution.
func (id ID) Time() time.Time {
	return time.Unix(int64(binary.BigEndian.Uint32(id[0:4])), 0)
}

// MachineID returns the 3-byte machine identifier.
func (id ID) MachineID() []byte {
	return []byte{id[4], id[5], id[6]}
}

// Pid returns the 16-bit process identifier.
func (id ID) Pid() uint16 {
	return binary.BigEndian.Uint16(id[7:9])
}

// Counter returns the 24-bit counter widened to int32.
func (id ID) Counter() int32 {
	return int32(uint32(id[9])<<16 | uint32(id[10])<<8 | uint32(id[11]))
}

// IsZero reports whether the id is NilID.
func (id ID) IsZero() bool {
	return id == NilID
}

// Compare returns -1, 0 or 1 comparing the raw bytes.
func (id ID) Compare(other ID) int {
	return bytes.Compare(id[:], other[:])
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	dst := make([]byte, encodedLen)
	encode(dst, &id)
	return dst, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	if n := utf8.RuneCount(text); n != encodedLen {
		return &LengthError{Have: n, Want: encodedLen}
	}
	parsed, err := FromUTF8(text)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalJSON encodes the id as a JSON string, or null for NilID.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	dst := make([]byte, encodedLen+2)
	dst[0] = '"'
	encode(dst[1:encodedLen+1], &id)
	dst[encodedLen+1] = '"'
	return dst, nil
}

// UnmarshalJSON decodes a JSON string or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = NilID
		return nil
	}
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("xid: expected JSON string: %w", ErrDecodeValidation)
	}
	return id.UnmarshalText(b[1 : len(b)-1])
}

// Value implements driver.Valuer.
func (id ID) Value() (driver.Value, error) {
	if id.IsZero() {
		return nil, nil
	}
	return id.String(), nil
}

// Scan implements sql.Scanner. It accepts the string form, the string form
// as bytes, raw 12 bytes, or NULL.
func (id *ID) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*id = NilID
		return nil
	case string:
		parsed, err := FromString(v)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	case []byte:
		if len(v) == rawLen {
			copy(id[:], v)
			return nil
		}
		return id.UnmarshalText(v)
	default:
		return fmt.Errorf("xid: cannot scan %T", value)
	}
}
