package helpers_test

import (
	"math/big"
	"testing"

	"github.com/cyphera/cyphera-xdk/internal/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{name: "plain", input: "abcd", want: []byte{0xab, 0xcd}},
		{name: "prefixed", input: "0xABcd", want: []byte{0xab, 0xcd}},
		{name: "upper prefix", input: "0X01", want: []byte{0x01}},
		{name: "odd length", input: "0x123", want: []byte{0x01, 0x23}},
		{name: "empty", input: "", want: []byte{}},
		{name: "prefix only", input: "0x", want: []byte{}},
		{name: "invalid digit", input: "0xzz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := helpers.DecodeHex(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeHex(t *testing.T) {
	b := []byte{0x0a, 0xbc}
	assert.Equal(t, "0abc", helpers.EncodeHex(b, helpers.HexOptions{}))
	assert.Equal(t, "0x0abc", helpers.EncodeHex(b, helpers.HexOptions{Prefix: true}))
	assert.Equal(t, "0x0ABC", helpers.EncodeHex(b, helpers.HexOptions{Prefix: true, Upper: true}))
}

func TestParseBigInt(t *testing.T) {
	tests := []struct {
		input   string
		want    *big.Int
		wantErr bool
	}{
		{input: "", want: nil},
		{input: "88", want: big.NewInt(88)},
		{input: "0x58", want: big.NewInt(88)},
		{input: "100000000000000001", want: big.NewInt(100000000000000001)},
		{input: "-1", wantErr: true},
		{input: "1_000", wantErr: true},
		{input: "0x", wantErr: true},
		{input: "12a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := helpers.ParseBigInt(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStages(t *testing.T) {
	assert.True(t, helpers.IsValidStage("prod"))
	assert.True(t, helpers.IsValidStage("test"))
	assert.False(t, helpers.IsValidStage("staging"))
	assert.True(t, helpers.IsLocalStage("local"))
	assert.False(t, helpers.IsLocalStage("dev"))
}

func TestIsPrivateKeyValid(t *testing.T) {
	key := "00bb19aec0b23e3b0a221fe5c67cd7fe5ec05f882d7d79235b1a0640d3021a4f"
	assert.True(t, helpers.IsPrivateKeyValid(key))
	assert.True(t, helpers.IsPrivateKeyValid("0x"+key))
	assert.False(t, helpers.IsPrivateKeyValid(key[2:]))
	assert.False(t, helpers.IsPrivateKeyValid("0x"+key[:62]+"zz"))
}
