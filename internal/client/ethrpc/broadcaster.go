package ethrpc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cyphera/cyphera-xdk/internal/client/retry"
	"github.com/cyphera/cyphera-xdk/internal/interfaces"
	"github.com/cyphera/cyphera-xdk/internal/logger"
	"github.com/cyphera/cyphera-xdk/pkg/ethtx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrChainMismatch is returned when the node serves a different chain than
// the one the service signs for.
var ErrChainMismatch = errors.New("rpc node chain id does not match configured chain")

// ErrRejected marks envelopes that no amount of retrying will get accepted:
// undecodable input or a node error such as "nonce too low".
var ErrRejected = errors.New("transaction rejected")

// Node error messages that retrying cannot fix.
var permanentMessages = []string{
	"nonce too low",
	"insufficient funds",
	"intrinsic gas too low",
	"exceeds block gas limit",
	"invalid sender",
	"replacement transaction underpriced",
	"max fee per gas less than block base fee",
	"transaction type not supported",
}

// Broadcaster submits signed EIP-1559 envelopes through eth_sendRawTransaction.
type Broadcaster struct {
	client interfaces.RPCClient
	chain  ethtx.Chain
	retry  *retry.Config
	logger *zap.Logger
}

// Dial connects to rpcURL and checks that the node serves chain.
func Dial(ctx context.Context, rpcURL string, chain ethtx.Chain) (*Broadcaster, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to RPC node")
	}

	b := NewBroadcaster(client, chain, retry.DefaultConfig())
	if err := b.CheckChain(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return b, nil
}

// NewBroadcaster wraps an existing RPC client.
func NewBroadcaster(client interfaces.RPCClient, chain ethtx.Chain, retryConfig *retry.Config) *Broadcaster {
	return &Broadcaster{
		client: client,
		chain:  chain,
		retry:  retryConfig,
		logger: logger.Log,
	}
}

// CheckChain compares the node's chain id with the configured chain.
func (b *Broadcaster) CheckChain(ctx context.Context) error {
	id, err := b.client.ChainID(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to fetch chain id")
	}
	if id.Cmp(b.chain.ID()) != 0 {
		return errors.Wrapf(ErrChainMismatch, "node %s, configured %s (%s)", id, b.chain.ID(), b.chain)
	}
	return nil
}

// Broadcast decodes envelope and sends it, retrying transient failures. A
// node that already knows the transaction counts as success.
func (b *Broadcaster) Broadcast(ctx context.Context, envelope []byte) (common.Hash, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(envelope); err != nil {
		return common.Hash{}, fmt.Errorf("%w: failed to decode signed transaction: %w", ErrRejected, err)
	}
	if tx.Type() != types.DynamicFeeTxType {
		return common.Hash{}, ethtx.ErrUnsupportedTransactionType
	}
	if tx.ChainId().Cmp(b.chain.ID()) != 0 {
		return common.Hash{}, errors.Wrapf(ErrChainMismatch, "transaction chain %s", tx.ChainId())
	}

	err := retry.Do(ctx, b.retry, func() error {
		err := b.client.SendTransaction(ctx, tx)
		switch {
		case err == nil, isAlreadyKnown(err):
			return nil
		case isPermanent(err):
			return retry.Permanent(fmt.Errorf("%w: %w", ErrRejected, err))
		default:
			return err
		}
	}, func(err error, wait time.Duration) {
		b.logger.Warn("Retrying transaction broadcast",
			zap.String("tx_hash", tx.Hash().Hex()),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to broadcast transaction")
	}

	b.logger.Info("Broadcast transaction",
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.Uint64("nonce", tx.Nonce()),
		zap.String("chain", b.chain.String()))
	return tx.Hash(), nil
}

// Close closes the RPC connection
func (b *Broadcaster) Close() {
	b.client.Close()
}

func isAlreadyKnown(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "already known")
}

func isPermanent(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, m := range permanentMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
