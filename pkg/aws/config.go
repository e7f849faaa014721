package aws

import (
	"context"
	"fmt"
	"os"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// LoadAWSConfig loads the default AWS config (env, shared profile, role).
//
// Local development runs against LocalStack: when AWS_ENDPOINT or a
// service specific AWS_<SERVICE>_ENDPOINT (AWS_SQS_ENDPOINT,
// AWS_S3_ENDPOINT, AWS_DYNAMODB_ENDPOINT, ...) is set, clients created from
// the returned config are pointed at that URL instead of AWS.
func LoadAWSConfig(ctx context.Context) (sdkaws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if region := os.Getenv("AWS_REGION"); region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	if HasCustomEndpoint() && os.Getenv("AWS_ACCESS_KEY_ID") == "" {
		// LocalStack accepts any key pair
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("test", "test", ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return cfg, fmt.Errorf("failed to load aws config: %w", err)
	}

	if !HasCustomEndpoint() {
		return cfg, nil
	}

	signingRegion := cfg.Region
	cfg.EndpointResolverWithOptions = sdkaws.EndpointResolverWithOptionsFunc(
		func(service, region string, _ ...interface{}) (sdkaws.Endpoint, error) {
			url := EndpointFor(service)
			if url == "" {
				// fall through to the SDK default resolver
				return sdkaws.Endpoint{}, &sdkaws.EndpointNotFoundError{}
			}
			sr := signingRegion
			if sr == "" {
				sr = region
			}
			return sdkaws.Endpoint{
				URL:               url,
				SigningRegion:     sr,
				HostnameImmutable: true,
			}, nil
		})

	return cfg, nil
}

// EndpointFor returns the override URL for an SDK service id ("SQS", "S3",
// "DynamoDB", "SNS", ...), or "" when the real AWS endpoint should be used.
func EndpointFor(service string) string {
	key := "AWS_" + strings.ToUpper(strings.ReplaceAll(service, " ", "_")) + "_ENDPOINT"
	if v := os.Getenv(key); v != "" {
		return v
	}
	return os.Getenv("AWS_ENDPOINT")
}

// HasCustomEndpoint reports whether any endpoint override is configured.
func HasCustomEndpoint() bool {
	for _, kv := range os.Environ() {
		k, _, _ := strings.Cut(kv, "=")
		if k == "AWS_ENDPOINT" || (strings.HasPrefix(k, "AWS_") && strings.HasSuffix(k, "_ENDPOINT")) {
			return true
		}
	}
	return false
}
