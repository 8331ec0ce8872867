package xid

// alphabet is the base32hex alphabet in lowercase.
const alphabet = "0123456789abcdefghijklmnopqrstuv"

// decodeTable maps an input character to its 5-bit value plus one. A zero
// entry marks a character outside the alphabet.
var decodeTable = [256]byte{
	'0': 1, '1': 2, '2': 3, '3': 4, '4': 5, '5': 6, '6': 7, '7': 8,
	'8': 9, '9': 10, 'a': 11, 'b': 12, 'c': 13, 'd': 14, 'e': 15, 'f': 16,
	'g': 17, 'h': 18, 'i': 19, 'j': 20, 'k': 21, 'l': 22, 'm': 23, 'n': 24,
	'o': 25, 'p': 26, 'q': 27, 'r': 28, 's': 29, 't': 30, 'u': 31, 'v': 32,
}

// The 96 input bits are cut into twenty 5-bit groups. Bytes are processed
// in groups of five (40 bits -> 8 chars); the last group holds only two
// bytes (16 bits -> 4 chars) and the final character carries 4 zero
// padding bits.
//
//	byte   |   0    |   1    |   2    |   3    |   4    |
//	bit    |76543210|76543210|76543210|76543210|76543210|
//	char   |00000111|11222223|33334444|45555566|66677777|
//
//	byte   |  10    |  11    |
//	char   |GGGGGHHH|HHIIIIIJ|
//
// Characters 8-15 repeat the first row for bytes 5-9. G, H, I and J are
// characters 16-19; J takes one data bit followed by four zero bits.

func encode(dst []byte, id *ID) {
	_ = dst[19]

	dst[19] = alphabet[(id[11]<<4)&0x1F]
	dst[18] = alphabet[(id[11]>>1)&0x1F]
	dst[17] = alphabet[(id[11]>>6)|(id[10]<<2)&0x1F]
	dst[16] = alphabet[id[10]>>3]
	dst[15] = alphabet[id[9]&0x1F]
	dst[14] = alphabet[(id[9]>>5)|(id[8]<<3)&0x1F]
	dst[13] = alphabet[(id[8]>>2)&0x1F]
	dst[12] = alphabet[id[8]>>7|(id[7]<<1)&0x1F]
	dst[11] = alphabet[(id[7]>>4)|(id[6]<<4)&0x1F]
	dst[10] = alphabet[(id[6]>>1)&0x1F]
	dst[9] = alphabet[(id[6]>>6)|(id[5]<<2)&0x1F]
	dst[8] = alphabet[id[5]>>3]
	dst[7] = alphabet[id[4]&0x1F]
	dst[6] = alphabet[id[4]>>5|(id[3]<<3)&0x1F]
	dst[5] = alphabet[(id[3]>>2)&0x1F]
	dst[4] = alphabet[id[3]>>7|(id[2]<<1)&0x1F]
	dst[3] = alphabet[(id[2]>>4)|(id[1]<<4)&0x1F]
	dst[2] = alphabet[(id[1]>>1)&0x1F]
	dst[1] = alphabet[(id[1]>>6)|(id[0]<<2)&0x1F]
	dst[0] = alphabet[id[0]>>3]
}

// decode reverses encode. It reports false when a character is outside the
// alphabet or when the decoded bytes do not encode back to src, which
// catches non-zero padding bits in the final character.
func decode(id *ID, src []byte) bool {
	if len(src) != encodedLen {
		return false
	}

	var v [encodedLen]byte
	for i, c := range src {
		d := decodeTable[c]
		if d == 0 {
			return false
		}
		v[i] = d - 1
	}

	id[11] = v[17]<<6 | v[18]<<1 | v[19]>>4
	id[10] = v[16]<<3 | v[17]>>2
	id[9] = v[14]<<5 | v[15]
	id[8] = v[12]<<7 | v[13]<<2 | v[14]>>3
	id[7] = v[11]<<4 | v[12]>>1
	id[6] = v[9]<<6 | v[10]<<1 | v[11]>>4
	id[5] = v[8]<<3 | v[9]>>2
	id[4] = v[6]<<5 | v[7]
	id[3] = v[4]<<7 | v[5]<<2 | v[6]>>3
	id[2] = v[3]<<4 | v[4]>>1
	id[1] = v[1]<<6 | v[2]<<1 | v[3]>>4
	id[0] = v[0]<<3 | v[1]>>2

	var check [encodedLen]byte
	encode(check[:], id)
	for i := range check {
		if check[i] != src[i] {
			return false
		}
	}
	return true
}
