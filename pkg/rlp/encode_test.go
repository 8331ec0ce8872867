package rlp_test

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"math/rand"
	"testing"

	gethrlp "github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/cyphera-xdk/pkg/rlp"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestEncodeVectors(t *testing.T) {
	lorem := "Lorem ipsum dolor sit amet, consectetur adipisicing elit"

	tests := []struct {
		name string
		item rlp.Item
		want string
	}{
		{name: "empty string", item: rlp.String{}, want: "80"},
		{name: "nil item", item: nil, want: "80"},
		{name: "single low byte", item: rlp.String{0x0f}, want: "0f"},
		{name: "zero byte", item: rlp.String{0x00}, want: "00"},
		{name: "single high byte", item: rlp.String{0x80}, want: "8180"},
		{name: "dog", item: rlp.String("dog"), want: "83646f67"},
		{name: "cat dog list", item: rlp.List{rlp.String("cat"), rlp.String("dog")}, want: "c88363617483646f67"},
		{name: "empty list", item: rlp.List{}, want: "c0"},
		{name: "integer zero", item: rlp.Uint(0), want: "80"},
		{name: "integer 15", item: rlp.Uint(15), want: "0f"},
		{name: "integer 1024", item: rlp.Uint(1024), want: "820400"},
		{name: "big integer zero", item: rlp.BigInt(big.NewInt(0)), want: "80"},
		{name: "nil big integer", item: rlp.BigInt(nil), want: "80"},
		{
			name: "set theoretic three",
			item: rlp.List{rlp.List{}, rlp.List{rlp.List{}}, rlp.List{rlp.List{}, rlp.List{rlp.List{}}}},
			want: "c7c0c1c0c3c0c1c0",
		},
		{
			name: "56 byte string uses long form",
			item: rlp.String(lorem),
			want: "b838" + hex.EncodeToString([]byte(lorem)),
		},
		{
			name: "55 byte string uses short form",
			item: rlp.String(bytes.Repeat([]byte{0xaa}, 55)),
			want: "b7" + hex.EncodeToString(bytes.Repeat([]byte{0xaa}, 55)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hex.EncodeToString(rlp.Encode(tt.item)))
		})
	}
}

func TestEncodeLongList(t *testing.T) {
	items := make(rlp.List, 0, 20)
	for i := 0; i < 20; i++ {
		items = append(items, rlp.String("dog"))
	}
	got := rlp.Encode(items)

	// 20 * 4 bytes of payload = 80 = 0x50
	assert.Equal(t, []byte{0xf8, 0x50}, got[:2])
	assert.Len(t, got, 82)
}

func TestEncodeMatchesGoEthereum(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 300; i++ {
		item, plain := randomItem(r, 0)

		want, err := gethrlp.EncodeToBytes(plain)
		require.NoError(t, err)
		assert.Equal(t, want, rlp.Encode(item))
	}
}

func TestIntegersMatchGoEthereum(t *testing.T) {
	values := []string{
		"0", "1", "127", "128", "255", "256", "1024", "100000000000000001",
		"115792089237316195423570985008687907853269984665640564039457584007913129639935",
	}

	for _, v := range values {
		x, ok := new(big.Int).SetString(v, 10)
		require.True(t, ok)

		want, err := gethrlp.EncodeToBytes(x)
		require.NoError(t, err)
		assert.Equal(t, want, rlp.Encode(rlp.BigInt(x)), v)

		if x.IsUint64() {
			assert.Equal(t, want, rlp.Encode(rlp.Uint(x.Uint64())), v)
		}
	}
}

func TestAppendEncode(t *testing.T) {
	dst := []byte{0xde, 0xad}
	got := rlp.AppendEncode(dst, rlp.String("dog"))
	assert.Equal(t, mustHex(t, "dead83646f67"), got)
}

func TestEqual(t *testing.T) {
	assert.True(t, rlp.Equal(rlp.String(nil), rlp.String{}))
	assert.True(t, rlp.Equal(nil, rlp.String{}))
	assert.True(t, rlp.Equal(rlp.List{rlp.String("a")}, rlp.List{rlp.String("a")}))
	assert.False(t, rlp.Equal(rlp.List{}, rlp.String{}))
	assert.False(t, rlp.Equal(rlp.List{rlp.String("a")}, rlp.List{rlp.String("b")}))
	assert.False(t, rlp.Equal(rlp.List{rlp.String("a")}, rlp.List{rlp.String("a"), rlp.String("a")}))
}

// randomItem returns an item and the equivalent value go-ethereum's
// reflection encoder understands.
func randomItem(r *rand.Rand, depth int) (rlp.Item, interface{}) {
	if depth > 3 || r.Intn(3) > 0 {
		n := r.Intn(70)
		if r.Intn(4) == 0 {
			n = r.Intn(2)
		}
		b := make([]byte, n)
		r.Read(b)
		return rlp.String(b), b
	}

	n := r.Intn(6)
	list := make(rlp.List, 0, n)
	plain := make([]interface{}, 0, n)
	for i := 0; i < n; i++ {
		item, p := randomItem(r, depth+1)
		list = append(list, item)
		plain = append(plain, p)
	}
	return list, plain
}
