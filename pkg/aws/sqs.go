package aws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"
)

// ErrDropMessage marks a message that can never be processed (bad JSON,
// unknown shape). The consumer deletes it instead of letting it retry.
var ErrDropMessage = errors.New("drop message")

// SQSAPI is the subset of the SQS client used by the consumer.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// MessageHandler processes one message body. Returning nil deletes the
// message; wrapping ErrDropMessage deletes it too; any other error leaves it
// on the queue until the visibility timeout expires.
type MessageHandler func(ctx context.Context, body []byte) error

// SQSConsumer long-polls a queue and dispatches each message to a handler.
type SQSConsumer struct {
	client   SQSAPI
	queueURL string
	logger   *zap.Logger
	wait     int32
	backoff  time.Duration
}

// NewSQSConsumer creates a new SQS consumer for the given queue URL
func NewSQSConsumer(cfg sdkaws.Config, queueURL string, logger *zap.Logger) *SQSConsumer {
	return NewSQSConsumerWithClient(sqs.NewFromConfig(cfg), queueURL, logger)
}

func NewSQSConsumerWithClient(client SQSAPI, queueURL string, logger *zap.Logger) *SQSConsumer {
	return &SQSConsumer{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
		wait:     20,
		backoff:  5 * time.Second,
	}
}

// Start polls until ctx is cancelled.
func (c *SQSConsumer) Start(ctx context.Context, handler MessageHandler) {
	c.logger.Info("SQS consumer started", zap.String("queue", c.queueURL))
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("SQS consumer stopped", zap.String("queue", c.queueURL))
			return
		default:
		}
		if err := c.PollOnce(ctx, handler); err != nil {
			if ctx.Err() != nil {
				continue
			}
			c.logger.Error("SQS receive error", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(c.backoff):
			}
		}
	}
}

// PollOnce receives one batch and handles every message in it.
func (c *SQSConsumer) PollOnce(ctx context.Context, handler MessageHandler) error {
	out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            sdkaws.String(c.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     c.wait,
		VisibilityTimeout:   30,
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, msg := range out.Messages {
		if msg.ReceiptHandle == nil || *msg.ReceiptHandle == "" {
			c.logger.Error("received SQS message without receipt handle")
			continue
		}
		body := ""
		if msg.Body != nil {
			body = *msg.Body
		}
		if body == "" {
			c.logger.Warn("dropping empty SQS message")
			c.delete(ctx, msg.ReceiptHandle)
			continue
		}

		err := handler(ctx, UnwrapSNS([]byte(body)))
		switch {
		case err == nil:
			c.delete(ctx, msg.ReceiptHandle)
		case errors.Is(err, ErrDropMessage):
			c.logger.Warn("dropping unprocessable SQS message", zap.Error(err))
			c.delete(ctx, msg.ReceiptHandle)
		default:
			// left for redelivery after the visibility timeout
			c.logger.Error("failed to process SQS message", zap.Error(err))
		}
	}
	return nil
}

func (c *SQSConsumer) delete(ctx context.Context, receiptHandle *string) {
	if _, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      sdkaws.String(c.queueURL),
		ReceiptHandle: receiptHandle,
	}); err != nil {
		c.logger.Error("failed to delete SQS message", zap.Error(err))
	}
}

type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// UnwrapSNS returns the inner message when body is an SNS notification
// delivered to SQS without raw message delivery, and body unchanged otherwise.
func UnwrapSNS(body []byte) []byte {
	var env snsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return body
	}
	if env.Type == "Notification" && env.Message != "" {
		return []byte(env.Message)
	}
	return body
}
