package interfaces

import (
	"context"
	"math/big"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// SecretsProvider resolves a secret from an ARN env var, falling back to a
// plain env var.
type SecretsProvider interface {
	GetSecretString(ctx context.Context, secretArnEnvVar string, fallbackEnvVar string) (string, error)
}

// KeyProvider supplies the raw secp256k1 signing key.
type KeyProvider interface {
	PrivateKey(ctx context.Context) ([]byte, error)
}

// TransactionPublisher hands signed transactions to a downstream queue.
type TransactionPublisher interface {
	Publish(ctx context.Context, msg SignedTransactionMessage) error
}

// Broadcaster submits a signed typed envelope to an Ethereum node.
type Broadcaster interface {
	Broadcast(ctx context.Context, envelope []byte) (common.Hash, error)
}

// SignedTransactionMessage is the queue payload for a signed transaction
type SignedTransactionMessage struct {
	ID             string    `json:"id"`
	Chain          string    `json:"chain"`
	ChainID        uint64    `json:"chain_id"`
	Hash           string    `json:"hash"`
	RawTransaction string    `json:"raw_transaction"`
	SignedAt       time.Time `json:"signed_at"`
}

// SQSAPI is the subset of the SQS client used for publishing.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SecretsManagerAPI is the subset of the Secrets Manager client in use.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// RPCClient is the subset of ethclient.Client used for broadcasting.
type RPCClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	Close()
}
