// Package xid implements globally unique, sortable 12-byte identifiers.
//
// # Layout
//
// An ID is 12 bytes, big-endian:
//
//	 0      3 4    6 7  8 9    11
//	+--------+------+----+------+
//	|  time  | mach | pid| ctr  |
//	+--------+------+----+------+
//	 uint32   3 B   u16  24 bit
//
//   - time: Unix seconds
//   - mach: first 3 bytes of an MD5 of the host identity
//   - pid:  process id truncated to 16 bits
//   - ctr:  per-generator counter, random start, wraps at 2^24
//
// # String form
//
// The string form is base32hex (alphabet 0-9a-v), lowercase, unpadded,
// always 20 characters. See encoding.go for the exact bit table.
//
// Usage
//
//	g := xid.NewGenerator(xid.DetectHostIdentity())
//	id := g.New()
//	s := id.String()           // "9m4e2mr0ui3e8a215n4g"
//	back, err := xid.FromString(s)
package xid
