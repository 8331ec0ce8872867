// Package relay broadcasts transactions that the API published to the
// signed transaction queue.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/cyphera/cyphera-xdk/internal/client/ethrpc"
	"github.com/cyphera/cyphera-xdk/internal/helpers"
	"github.com/cyphera/cyphera-xdk/internal/interfaces"
	"github.com/cyphera/cyphera-xdk/internal/logger"
	"github.com/cyphera/cyphera-xdk/pkg/ethtx"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// errDrop marks records that are removed from the queue without success.
var errDrop = errors.New("dropped")

// Relay consumes SQS batches of SignedTransactionMessage.
type Relay struct {
	broadcaster interfaces.Broadcaster
	chain       ethtx.Chain
	maxReceives int
}

// Result is the outcome for a single record.
type Result struct {
	MessageID string `json:"message_id"`
	TxID      string `json:"tx_id,omitempty"`
	Hash      string `json:"hash,omitempty"`
	Broadcast bool   `json:"broadcast"`
	// Dropped records failed permanently and will not be redelivered.
	Dropped bool   `json:"dropped"`
	Error   string `json:"error,omitempty"`
}

func New(broadcaster interfaces.Broadcaster, chain ethtx.Chain, maxReceives int) *Relay {
	return &Relay{
		broadcaster: broadcaster,
		chain:       chain,
		maxReceives: maxReceives,
	}
}

// HandleSQSEvent broadcasts every record in the batch. Transient failures are
// reported as batch item failures so SQS redelivers only those records.
func (r *Relay) HandleSQSEvent(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	logger.Info("Relay handling SQS event", zap.Int("record_count", len(event.Records)))

	var resp events.SQSEventResponse
	broadcast, dropped := 0, 0

	for _, record := range event.Records {
		result := r.processRecord(ctx, record)
		switch {
		case result.Broadcast:
			broadcast++
		case result.Dropped:
			dropped++
		default:
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: record.MessageId,
			})
		}
	}

	logger.Info("Relay batch completed",
		zap.Int("total", len(event.Records)),
		zap.Int("broadcast", broadcast),
		zap.Int("dropped", dropped),
		zap.Int("retry", len(resp.BatchItemFailures)))

	return resp, nil
}

func (r *Relay) processRecord(ctx context.Context, record events.SQSMessage) Result {
	result := Result{MessageID: record.MessageId}
	log := logger.Log.With(zap.String("message_id", record.MessageId))

	err := r.broadcastRecord(ctx, record, &result)
	switch {
	case err == nil:
		result.Broadcast = true
		log.Info("Relayed transaction", zap.String("tx_id", result.TxID), zap.String("tx_hash", result.Hash))
	case errors.Is(err, errDrop):
		result.Dropped = true
		result.Error = err.Error()
		log.Error("Dropping queued transaction", zap.String("tx_id", result.TxID), zap.Error(err))
	default:
		result.Error = err.Error()
		log.Warn("Queued transaction will be retried", zap.String("tx_id", result.TxID), zap.Error(err))
	}
	return result
}

func (r *Relay) broadcastRecord(ctx context.Context, record events.SQSMessage, result *Result) error {
	var msg interfaces.SignedTransactionMessage
	if err := json.Unmarshal([]byte(record.Body), &msg); err != nil {
		return fmt.Errorf("%w: unmarshal message: %w", errDrop, err)
	}
	result.TxID = msg.ID
	result.Hash = msg.Hash

	if msg.ChainID != uint64(r.chain) {
		return fmt.Errorf("%w: message for chain %d, relay serves %s", errDrop, msg.ChainID, r.chain)
	}

	if n, err := strconv.Atoi(record.Attributes["ApproximateReceiveCount"]); err == nil && n > r.maxReceives {
		return fmt.Errorf("%w: received %d times", errDrop, n)
	}

	envelope, err := helpers.DecodeHex(msg.RawTransaction)
	if err != nil || len(envelope) == 0 {
		return fmt.Errorf("%w: invalid raw transaction", errDrop)
	}
	if msg.Hash != "" && crypto.Keccak256Hash(envelope).Hex() != msg.Hash {
		return fmt.Errorf("%w: hash does not match raw transaction", errDrop)
	}

	hash, err := r.broadcaster.Broadcast(ctx, envelope)
	if err != nil {
		if errors.Is(err, ethrpc.ErrRejected) || errors.Is(err, ethrpc.ErrChainMismatch) ||
			errors.Is(err, ethtx.ErrUnsupportedTransactionType) {
			return fmt.Errorf("%w: %w", errDrop, err)
		}
		return err
	}
	result.Hash = hash.Hex()
	return nil
}
