package aws

import (
	"context"
	"errors"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets struct {
	values map[string]string
	calls  int
}

func (f *fakeSecrets) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	v, ok := f.values[sdkaws.ToString(in.SecretId)]
	if !ok {
		return nil, errors.New("ResourceNotFoundException")
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: sdkaws.String(v)}, nil
}

func TestSecretBundle_ApplyCachesAndSkipsEmpty(t *testing.T) {
	api := &fakeSecrets{values: map[string]string{
		"storefront/prod": `{"JWT_SECRET":"s3cret","POSTGRES_PASSWORD":""}`,
	}}
	b := NewSecretBundleWithClient(api)

	got := map[string]string{}
	require.NoError(t, b.Apply(context.Background(), "storefront/prod", func(k, v string) { got[k] = v }))
	assert.Equal(t, map[string]string{"JWT_SECRET": "s3cret"}, got)

	_, err := b.Values(context.Background(), "storefront/prod")
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls)
}

func TestSecretBundle_Errors(t *testing.T) {
	api := &fakeSecrets{values: map[string]string{"plain": "not-json", "empty": ""}}
	b := NewSecretBundleWithClient(api)

	_, err := b.Values(context.Background(), "missing")
	assert.Error(t, err)
	_, err = b.Values(context.Background(), "plain")
	assert.ErrorContains(t, err, "not a JSON object")
	_, err = b.Values(context.Background(), "empty")
	assert.ErrorContains(t, err, "no string value")
}

func TestOverrideFromSecret_Disabled(t *testing.T) {
	called := false
	err := OverrideFromSecret(context.Background(), false, "anything", func(string, string) { called = true })
	require.NoError(t, err)
	assert.False(t, called)
}
