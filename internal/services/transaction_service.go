package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cyphera/cyphera-xdk/internal/helpers"
	"github.com/cyphera/cyphera-xdk/internal/interfaces"
	"github.com/cyphera/cyphera-xdk/internal/logger"
	"github.com/cyphera/cyphera-xdk/pkg/ethtx"
	"github.com/cyphera/cyphera-xdk/pkg/xid"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

var (
	// ErrPublishingDisabled is returned when publishing is requested but no
	// queue is configured.
	ErrPublishingDisabled = errors.New("transaction publishing is not configured")
	// ErrBroadcastDisabled is returned when broadcasting is requested but no
	// RPC node is configured.
	ErrBroadcastDisabled = errors.New("transaction broadcasting is not configured")
	// ErrDeliveryFailed wraps publish and broadcast failures after a
	// successful signature.
	ErrDeliveryFailed = errors.New("signed transaction delivery failed")
)

// SignOptions selects the delivery steps that follow signing.
type SignOptions struct {
	Publish   bool
	Broadcast bool
}

// SignedTransaction is the result of TransactionService.Sign
type SignedTransaction struct {
	ID          xid.ID
	Chain       ethtx.Chain
	SigningHash common.Hash
	// Hash is the transaction hash, keccak256 of Envelope.
	Hash common.Hash
	// Envelope is 0x02 || rlp, as accepted by eth_sendRawTransaction.
	Envelope []byte
	// Signed is Envelope wrapped as an RLP string.
	Signed    []byte
	Published bool
	Broadcast bool
	SignedAt  time.Time
}

// TransactionService builds and signs EIP-1559 transactions with the
// process signing key, then optionally hands them to SQS or an RPC node.
type TransactionService struct {
	codec       *ethtx.Codec
	keys        interfaces.KeyProvider
	ids         *IDService
	publisher   interfaces.TransactionPublisher
	broadcaster interfaces.Broadcaster
	now         func() time.Time
}

// TransactionServiceOption configures a TransactionService.
type TransactionServiceOption func(*TransactionService)

// WithPublisher enables SignOptions.Publish.
func WithPublisher(p interfaces.TransactionPublisher) TransactionServiceOption {
	return func(s *TransactionService) {
		s.publisher = p
	}
}

// WithBroadcaster enables SignOptions.Broadcast.
func WithBroadcaster(b interfaces.Broadcaster) TransactionServiceOption {
	return func(s *TransactionService) {
		s.broadcaster = b
	}
}

// WithCodec replaces the default codec.
func WithCodec(c *ethtx.Codec) TransactionServiceOption {
	return func(s *TransactionService) {
		s.codec = c
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) TransactionServiceOption {
	return func(s *TransactionService) {
		s.now = now
	}
}

// NewTransactionService creates a new transaction service
func NewTransactionService(keys interfaces.KeyProvider, ids *IDService, opts ...TransactionServiceOption) *TransactionService {
	s := &TransactionService{
		codec: ethtx.NewCodec(),
		keys:  keys,
		ids:   ids,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Unsigned returns the unsigned typed payload.
func (s *TransactionService) Unsigned(tx *ethtx.Transaction) ([]byte, error) {
	return s.codec.UnsignedPayload(tx)
}

// Hash returns the signing hash.
func (s *TransactionService) Hash(tx *ethtx.Transaction) (common.Hash, error) {
	return s.codec.SigningHash(tx)
}

// Sign signs tx with the process key. Codec and signer errors are returned
// unchanged.
func (s *TransactionService) Sign(ctx context.Context, tx *ethtx.Transaction, opts SignOptions) (*SignedTransaction, error) {
	if opts.Publish && s.publisher == nil {
		return nil, ErrPublishingDisabled
	}
	if opts.Broadcast && s.broadcaster == nil {
		return nil, ErrBroadcastDisabled
	}

	signingHash, err := s.codec.SigningHash(tx)
	if err != nil {
		return nil, err
	}

	key, err := s.keys.PrivateKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}
	defer clear(key)

	signed, err := s.codec.Sign(tx, key)
	if err != nil {
		return nil, err
	}
	envelope, err := ethtx.UnwrapSigned(signed)
	if err != nil {
		return nil, err
	}

	result := &SignedTransaction{
		ID:          s.ids.New(),
		Chain:       tx.Chain,
		SigningHash: signingHash,
		Hash:        crypto.Keccak256Hash(envelope),
		Envelope:    envelope,
		Signed:      signed,
		SignedAt:    s.now().UTC(),
	}

	log := logger.FromContext(ctx).With(
		zap.String("tx_id", result.ID.String()),
		zap.String("tx_hash", result.Hash.Hex()),
		zap.String("chain", tx.Chain.String()),
	)
	log.Info("Signed transaction")

	if opts.Publish {
		if err := s.publisher.Publish(ctx, result.Message()); err != nil {
			log.Error("Failed to publish signed transaction", zap.Error(err))
			return nil, fmt.Errorf("%w: publish: %w", ErrDeliveryFailed, err)
		}
		result.Published = true
	}

	if opts.Broadcast {
		hash, err := s.broadcaster.Broadcast(ctx, envelope)
		if err != nil {
			log.Error("Failed to broadcast signed transaction", zap.Error(err))
			return nil, fmt.Errorf("%w: broadcast: %w", ErrDeliveryFailed, err)
		}
		if hash != result.Hash {
			log.Warn("Node returned unexpected transaction hash", zap.String("node_hash", hash.Hex()))
		}
		result.Broadcast = true
	}

	return result, nil
}

// Message converts the result into the queue payload.
func (t *SignedTransaction) Message() interfaces.SignedTransactionMessage {
	return interfaces.SignedTransactionMessage{
		ID:             t.ID.String(),
		Chain:          t.Chain.String(),
		ChainID:        uint64(t.Chain),
		Hash:           t.Hash.Hex(),
		RawTransaction: helpers.EncodeHex(t.Envelope, helpers.HexOptions{Prefix: true}),
		SignedAt:       t.SignedAt,
	}
}
