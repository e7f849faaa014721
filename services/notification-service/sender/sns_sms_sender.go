package sender

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type SNSAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSMSSender delivers text messages straight to phone numbers through SNS.
type SNSSMSSender struct {
	client   SNSAPI
	senderID string
}

func NewSNSSMSSender(cfg sdkaws.Config, senderID string) *SNSSMSSender {
	return NewSNSSMSSenderWithClient(sns.NewFromConfig(cfg), senderID)
}

func NewSNSSMSSenderWithClient(client SNSAPI, senderID string) *SNSSMSSender {
	return &SNSSMSSender{client: client, senderID: senderID}
}

func (s *SNSSMSSender) SendSMS(ctx context.Context, to, msg string) (SendResult, error) {
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {DataType: sdkaws.String("String"), StringValue: sdkaws.String("Transactional")},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{DataType: sdkaws.String("String"), StringValue: sdkaws.String(s.senderID)}
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       sdkaws.String(to),
		Message:           sdkaws.String(msg),
		MessageAttributes: attrs,
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("sns sms failed: %w", err)
	}
	return accepted(ProviderSNS, sdkaws.ToString(out.MessageId)), nil
}
