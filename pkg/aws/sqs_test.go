package aws

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSQS struct {
	messages []types.Message
	deleted  []string
	recvErr  error
}

func (f *fakeSQS) ReceiveMessage(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	if f.recvErr != nil {
		return nil, f.recvErr
	}
	return &sqs.ReceiveMessageOutput{Messages: f.messages}, nil
}

func (f *fakeSQS) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, *in.ReceiptHandle)
	return &sqs.DeleteMessageOutput{}, nil
}

func msg(handle, body string) types.Message {
	return types.Message{ReceiptHandle: sdkaws.String(handle), Body: sdkaws.String(body)}
}

func TestPollOnce_DeletesOnlyHandledOrDropped(t *testing.T) {
	fake := &fakeSQS{messages: []types.Message{
		msg("ok", `{"event_type":"a"}`),
		msg("retry", `{"event_type":"retry"}`),
		msg("drop", `not json`),
		msg("empty", ``),
	}}
	c := NewSQSConsumerWithClient(fake, "q", zap.NewNop())

	err := c.PollOnce(context.Background(), func(_ context.Context, body []byte) error {
		switch string(body) {
		case `{"event_type":"a"}`:
			return nil
		case `{"event_type":"retry"}`:
			return errors.New("downstream unavailable")
		default:
			return fmt.Errorf("%w: bad body", ErrDropMessage)
		}
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ok", "drop", "empty"}, fake.deleted)
}

func TestPollOnce_ReceiveError(t *testing.T) {
	fake := &fakeSQS{recvErr: errors.New("boom")}
	c := NewSQSConsumerWithClient(fake, "q", zap.NewNop())

	err := c.PollOnce(context.Background(), func(context.Context, []byte) error { return nil })
	assert.Error(t, err)
}

func TestUnwrapSNS(t *testing.T) {
	wrapped := `{"Type":"Notification","MessageId":"1","Message":"{\"event_type\":\"order_created\"}"}`
	assert.Equal(t, `{"event_type":"order_created"}`, string(UnwrapSNS([]byte(wrapped))))

	raw := `{"event_type":"stock_changed"}`
	assert.Equal(t, raw, string(UnwrapSNS([]byte(raw))))

	assert.Equal(t, "plain", string(UnwrapSNS([]byte("plain"))))
}
