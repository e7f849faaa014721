package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type SecretsAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretBundle reads JSON-object secrets such as
// {"POSTGRES_PASSWORD":"...","JWT_SECRET":"..."}. Each secret is fetched once
// per process.
type SecretBundle struct {
	api SecretsAPI

	mu      sync.Mutex
	decoded map[string]map[string]string
}

func NewSecretBundle(cfg sdkaws.Config) *SecretBundle {
	return NewSecretBundleWithClient(secretsmanager.NewFromConfig(cfg))
}

func NewSecretBundleWithClient(api SecretsAPI) *SecretBundle {
	return &SecretBundle{api: api, decoded: map[string]map[string]string{}}
}

// Values returns the decoded key/value pairs of the named secret.
func (b *SecretBundle) Values(ctx context.Context, name string) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.decoded[name]; ok {
		return v, nil
	}

	out, err := b.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: sdkaws.String(name)})
	if err != nil {
		return nil, fmt.Errorf("read secret %s: %w", name, err)
	}
	raw := sdkaws.ToString(out.SecretString)
	if raw == "" {
		return nil, fmt.Errorf("secret %s has no string value", name)
	}
	values := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("secret %s is not a JSON object: %w", name, err)
	}
	b.decoded[name] = values
	return values, nil
}

// Apply calls set for every non-empty key of the named secret.
func (b *SecretBundle) Apply(ctx context.Context, name string, set func(key, value string)) error {
	values, err := b.Values(ctx, name)
	if err != nil {
		return err
	}
	for k, v := range values {
		if v != "" {
			set(k, v)
		}
	}
	return nil
}

// OverrideFromSecret is a no-op unless enabled and secretName is set.
func OverrideFromSecret(ctx context.Context, enabled bool, secretName string, set func(key, value string)) error {
	if !enabled || secretName == "" {
		return nil
	}
	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return err
	}
	return NewSecretBundle(cfg).Apply(ctx, secretName, set)
}
