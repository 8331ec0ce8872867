// Package rlp implements Ethereum's Recursive Length Prefix encoding over an
// explicit item tree.
//
// Callers build values from two cases: String (a byte string, possibly empty)
// and List (an ordered sequence of items, possibly empty). There is no
// reflection; Encode and Decode are independent of any transaction schema.
package rlp

import (
	"bytes"
	"encoding/binary"
	"math/big"
)

// Item is either a String or a List.
type Item interface {
	isItem()
}

// String is an RLP byte string.
type String []byte

// List is an RLP list.
type List []Item

func (String) isItem() {}
func (List) isItem()   {}

// Bytes wraps b as a String.
func Bytes(b []byte) String {
	return String(b)
}

// Uint encodes u as its minimal big-endian bytes. Zero is the empty string.
func Uint(u uint64) String {
	if u == 0 {
		return String{}
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], u)
	return String(append([]byte(nil), b[8-uintLen(u):]...))
}

// BigInt encodes the magnitude of x as minimal big-endian bytes. A nil or
// zero x is the empty string. Callers reject negative values beforehand.
func BigInt(x *big.Int) String {
	if x == nil || x.Sign() == 0 {
		return String{}
	}
	return String(x.Bytes())
}

// Equal reports whether two items have the same value. A nil item equals an
// empty String.
func Equal(a, b Item) bool {
	switch av := normalize(a).(type) {
	case String:
		bv, ok := normalize(b).(String)
		return ok && bytes.Equal(av, bv)
	case List:
		bv, ok := normalize(b).(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func normalize(item Item) Item {
	if item == nil {
		return String(nil)
	}
	return item
}
