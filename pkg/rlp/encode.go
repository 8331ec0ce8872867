package rlp

const (
	offsetShortString = 0x80
	offsetLongString  = 0xB7
	offsetShortList   = 0xC0
	offsetLongList    = 0xF7

	// maxShortLen is the longest payload whose length fits in the prefix byte.
	maxShortLen = 55
)

// Encode returns the canonical RLP encoding of item. A nil item encodes as
// the empty string.
func Encode(item Item) []byte {
	return AppendEncode(make([]byte, 0, encodedSize(item)), item)
}

// AppendEncode appends the encoding of item to dst.
func AppendEncode(dst []byte, item Item) []byte {
	switch v := normalize(item).(type) {
	case String:
		if len(v) == 1 && v[0] < offsetShortString {
			return append(dst, v[0])
		}
		dst = appendHeader(dst, len(v), offsetShortString, offsetLongString)
		return append(dst, v...)
	case List:
		dst = appendHeader(dst, payloadSize(v), offsetShortList, offsetLongList)
		for _, child := range v {
			dst = AppendEncode(dst, child)
		}
		return dst
	}
	return dst
}

func appendHeader(dst []byte, n int, short, long byte) []byte {
	if n <= maxShortLen {
		return append(dst, short+byte(n))
	}
	lenOfLen := uintLen(uint64(n))
	dst = append(dst, long+byte(lenOfLen))
	for i := lenOfLen - 1; i >= 0; i-- {
		dst = append(dst, byte(uint64(n)>>(8*i)))
	}
	return dst
}

func encodedSize(item Item) int {
	switch v := normalize(item).(type) {
	case String:
		if len(v) == 1 && v[0] < offsetShortString {
			return 1
		}
		return headerSize(len(v)) + len(v)
	case List:
		p := payloadSize(v)
		return headerSize(p) + p
	}
	return 0
}

func payloadSize(list List) int {
	n := 0
	for _, child := range list {
		n += encodedSize(child)
	}
	return n
}

func headerSize(n int) int {
	if n <= maxShortLen {
		return 1
	}
	return 1 + uintLen(uint64(n))
}

// uintLen is the number of bytes in the minimal big-endian form of u.
func uintLen(u uint64) int {
	n := 0
	for ; u > 0; u >>= 8 {
		n++
	}
	return n
}
