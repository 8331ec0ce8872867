package aws

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/cyphera/cyphera-xdk/internal/client/retry"
	"github.com/cyphera/cyphera-xdk/internal/constants"
	"github.com/cyphera/cyphera-xdk/internal/interfaces"
	"github.com/cyphera/cyphera-xdk/internal/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// TransactionPublisher sends signed transactions to an SQS queue.
type TransactionPublisher struct {
	client   interfaces.SQSAPI
	queueURL string
	retry    *retry.Config
}

// NewTransactionPublisher creates an SQS-backed publisher using the default
// AWS configuration chain.
func NewTransactionPublisher(ctx context.Context, queueURL string) (*TransactionPublisher, error) {
	if queueURL == "" {
		return nil, errors.New("queue URL is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load AWS SDK config")
	}
	return NewTransactionPublisherWithAPI(sqs.NewFromConfig(cfg), queueURL, retry.DefaultConfig()), nil
}

// NewTransactionPublisherWithAPI builds a publisher over an existing client.
func NewTransactionPublisherWithAPI(client interfaces.SQSAPI, queueURL string, retryConfig *retry.Config) *TransactionPublisher {
	return &TransactionPublisher{
		client:   client,
		queueURL: queueURL,
		retry:    retryConfig,
	}
}

// Publish sends msg as a JSON body. FIFO queues are grouped by chain and
// deduplicated on the message id.
func (p *TransactionPublisher) Publish(ctx context.Context, msg interfaces.SignedTransactionMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal signed transaction")
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			constants.TxIDAttribute: {
				StringValue: aws.String(msg.ID),
				DataType:    aws.String("String"),
			},
			constants.ChainAttribute: {
				StringValue: aws.String(msg.Chain),
				DataType:    aws.String("String"),
			},
			constants.TxHashAttribute: {
				StringValue: aws.String(msg.Hash),
				DataType:    aws.String("String"),
			},
			constants.MessageSourceAttr: {
				StringValue: aws.String(constants.ServiceName),
				DataType:    aws.String("String"),
			},
		},
	}
	if strings.HasSuffix(p.queueURL, ".fifo") {
		input.MessageGroupId = aws.String(msg.Chain)
		input.MessageDeduplicationId = aws.String(msg.ID)
	}

	var messageID string
	err = retry.Do(ctx, p.retry, func() error {
		out, err := p.client.SendMessage(ctx, input)
		if err != nil {
			return err
		}
		messageID = aws.ToString(out.MessageId)
		return nil
	}, func(err error, wait time.Duration) {
		logger.Warn("Retrying SQS send",
			zap.String("tx_id", msg.ID),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
	if err != nil {
		return errors.Wrap(err, "failed to send message to SQS")
	}

	logger.Info("Published signed transaction",
		zap.String("tx_id", msg.ID),
		zap.String("tx_hash", msg.Hash),
		zap.String("message_id", messageID))
	return nil
}
