package ethrpc_test

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/cyphera/cyphera-xdk/internal/client/ethrpc"
	"github.com/cyphera/cyphera-xdk/internal/client/retry"
	"github.com/cyphera/cyphera-xdk/internal/logger"
	"github.com/cyphera/cyphera-xdk/internal/mocks"
	"github.com/cyphera/cyphera-xdk/pkg/ethtx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	logger.InitLogger("test")
}

func signedEnvelope(t *testing.T, chain ethtx.Chain) []byte {
	t.Helper()
	key, err := hex.DecodeString("00bb19aec0b23e3b0a221fe5c67cd7fe5ec05f882d7d79235b1a0640d3021a4f")
	require.NoError(t, err)

	to := common.HexToAddress("aaaaaaaaaaaaaaaaaaaabbbbbbbbbbbbbbbbbb")
	env, err := ethtx.SignEnvelope(&ethtx.Transaction{
		To:                   &to,
		Nonce:                big.NewInt(88),
		GasLimit:             big.NewInt(77),
		MaxFeePerGas:         big.NewInt(66),
		MaxPriorityFeePerGas: big.NewInt(33),
		Data:                 []byte("abcd"),
		Chain:                chain,
		Value:                big.NewInt(1),
	}, key)
	require.NoError(t, err)
	return env
}

func fastRetry() *retry.Config {
	return &retry.Config{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, Multiplier: 1, MaxElapsedTime: time.Second}
}

func TestBroadcast(t *testing.T) {
	ctx := context.Background()
	env := signedEnvelope(t, ethtx.Goerli)

	tests := []struct {
		name       string
		setupMocks func(m *mocks.MockRPCClient)
		wantErr    error
	}{
		{
			name: "accepted",
			setupMocks: func(m *mocks.MockRPCClient) {
				m.EXPECT().SendTransaction(ctx, gomock.Any()).Return(nil)
			},
		},
		{
			name: "already known",
			setupMocks: func(m *mocks.MockRPCClient) {
				m.EXPECT().SendTransaction(ctx, gomock.Any()).Return(errors.New("already known"))
			},
		},
		{
			name: "transient then accepted",
			setupMocks: func(m *mocks.MockRPCClient) {
				gomock.InOrder(
					m.EXPECT().SendTransaction(ctx, gomock.Any()).Return(errors.New("503 service unavailable")),
					m.EXPECT().SendTransaction(ctx, gomock.Any()).Return(nil),
				)
			},
		},
		{
			name: "nonce too low is not retried",
			setupMocks: func(m *mocks.MockRPCClient) {
				m.EXPECT().SendTransaction(ctx, gomock.Any()).Return(errors.New("nonce too low")).Times(1)
			},
			wantErr: ethrpc.ErrRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mocks.NewMockRPCClient(ctrl)
			tt.setupMocks(client)

			b := ethrpc.NewBroadcaster(client, ethtx.Goerli, fastRetry())
			hash, err := b.Broadcast(ctx, env)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			var tx types.Transaction
			require.NoError(t, tx.UnmarshalBinary(env))
			assert.Equal(t, tx.Hash(), hash)
		})
	}
}

func TestBroadcastRejectsWrongChain(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockRPCClient(ctrl)

	b := ethrpc.NewBroadcaster(client, ethtx.Mainnet, fastRetry())
	_, err := b.Broadcast(context.Background(), signedEnvelope(t, ethtx.Goerli))
	assert.ErrorIs(t, err, ethrpc.ErrChainMismatch)

	_, err = b.Broadcast(context.Background(), []byte{0x02, 0xc0})
	assert.ErrorIs(t, err, ethrpc.ErrRejected)
}

func TestCheckChain(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockRPCClient(ctrl)

	gomock.InOrder(
		client.EXPECT().ChainID(ctx).Return(big.NewInt(5), nil),
		client.EXPECT().ChainID(ctx).Return(big.NewInt(1), nil),
		client.EXPECT().ChainID(ctx).Return(nil, errors.New("dial tcp: refused")),
		client.EXPECT().Close(),
	)

	b := ethrpc.NewBroadcaster(client, ethtx.Goerli, retry.NoRetry())
	assert.NoError(t, b.CheckChain(ctx))
	assert.ErrorIs(t, b.CheckChain(ctx), ethrpc.ErrChainMismatch)
	assert.Error(t, b.CheckChain(ctx))
	b.Close()
}
