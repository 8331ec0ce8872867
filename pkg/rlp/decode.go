package rlp

import (
	"math/big"
)

// Decode parses exactly one item from b. Trailing bytes, truncation, length
// prefixes that overrun their container, and every non-canonical form are
// rejected with an error matching ErrMalformed.
func Decode(b []byte) (Item, error) {
	item, n, err := decodeAt(b, 0)
	if err != nil {
		return nil, err
	}
	if n != len(b) {
		return nil, malformed(n, "trailing bytes after item")
	}
	return item, nil
}

// Split decodes the first item in b and returns the remaining bytes.
func Split(b []byte) (Item, []byte, error) {
	item, n, err := decodeAt(b, 0)
	if err != nil {
		return nil, nil, err
	}
	return item, b[n:], nil
}

// decodeAt decodes the item starting at b[off] and returns the offset just
// past it.
func decodeAt(b []byte, off int) (Item, int, error) {
	if off >= len(b) {
		return nil, off, malformed(off, "unexpected end of input")
	}

	prefix := b[off]
	switch {
	case prefix < offsetShortString:
		return String{prefix}, off + 1, nil

	case prefix <= offsetLongString:
		size := int(prefix - offsetShortString)
		start := off + 1
		if err := checkBounds(b, off, start, size); err != nil {
			return nil, off, err
		}
		if size == 1 && b[start] < offsetShortString {
			return nil, off, malformed(off, "single byte below 0x80 must not be prefixed")
		}
		return String(copyBytes(b[start : start+size])), start + size, nil

	case prefix < offsetShortList:
		size, start, err := readLongLength(b, off, prefix-offsetLongString)
		if err != nil {
			return nil, off, err
		}
		if err := checkBounds(b, off, start, size); err != nil {
			return nil, off, err
		}
		return String(copyBytes(b[start : start+size])), start + size, nil

	case prefix <= offsetLongList:
		size := int(prefix - offsetShortList)
		start := off + 1
		if err := checkBounds(b, off, start, size); err != nil {
			return nil, off, err
		}
		list, err := decodeList(b[:start+size], start)
		if err != nil {
			return nil, off, err
		}
		return list, start + size, nil

	default:
		size, start, err := readLongLength(b, off, prefix-offsetLongList)
		if err != nil {
			return nil, off, err
		}
		if err := checkBounds(b, off, start, size); err != nil {
			return nil, off, err
		}
		list, err := decodeList(b[:start+size], start)
		if err != nil {
			return nil, off, err
		}
		return list, start + size, nil
	}
}

// decodeList decodes children from b[start:] until b is exhausted. b has
// already been cut to the end of the list payload, so a child that runs past
// it is reported as truncated.
func decodeList(b []byte, start int) (List, error) {
	list := List{}
	for pos := start; pos < len(b); {
		child, next, err := decodeAt(b, pos)
		if err != nil {
			return nil, err
		}
		list = append(list, child)
		pos = next
	}
	return list, nil
}

// readLongLength reads a big-endian payload length of lenOfLen bytes that
// follows the prefix at b[off].
func readLongLength(b []byte, off int, lenOfLen byte) (int, int, error) {
	start := off + 1
	n := int(lenOfLen)
	if start+n > len(b) {
		return 0, off, malformed(off, "length of length overruns input")
	}
	if b[start] == 0 {
		return 0, off, malformed(off, "length has leading zero byte")
	}

	var size uint64
	for _, c := range b[start : start+n] {
		size = size<<8 | uint64(c)
	}
	if size <= maxShortLen {
		return 0, off, malformed(off, "long form used for short payload")
	}
	if size > uint64(len(b)) {
		return 0, off, malformed(off, "payload length overruns input")
	}
	return int(size), start + n, nil
}

func checkBounds(b []byte, off, start, size int) error {
	if size > len(b)-start {
		return malformed(off, "payload length overruns input")
	}
	return nil
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// AsBytes returns the payload of a String item.
func AsBytes(item Item) ([]byte, error) {
	s, ok := normalize(item).(String)
	if !ok {
		return nil, ErrExpectedString
	}
	return []byte(s), nil
}

// AsList returns the children of a List item. A nil item reads as the
// empty string, as in AsBytes.
func AsList(item Item) (List, error) {
	l, ok := normalize(item).(List)
	if !ok {
		return nil, ErrExpectedList
	}
	return l, nil
}

// AsBigInt interprets a String item as a canonical unsigned integer.
func AsBigInt(item Item) (*big.Int, error) {
	b, err := AsBytes(item)
	if err != nil {
		return nil, err
	}
	if len(b) > 0 && b[0] == 0 {
		return nil, ErrNonCanonicalInteger
	}
	return new(big.Int).SetBytes(b), nil
}

// AsUint64 interprets a String item as a canonical unsigned 64-bit integer.
func AsUint64(item Item) (uint64, error) {
	b, err := AsBytes(item)
	if err != nil {
		return 0, err
	}
	if len(b) > 8 {
		return 0, ErrUintOverflow
	}
	if len(b) > 0 && b[0] == 0 {
		return 0, ErrNonCanonicalInteger
	}
	var u uint64
	for _, c := range b {
		u = u<<8 | uint64(c)
	}
	return u, nil
}
