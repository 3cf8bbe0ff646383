package secrets_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crumbhouse/bakery-api/internal/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingFetcher struct {
	values map[string]string
	calls  int
}

func (f *countingFetcher) Fetch(_ context.Context, name string) (string, error) {
	f.calls++
	v, ok := f.values[name]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func TestVaultClient_CachesSecrets(t *testing.T) {
	fetcher := &countingFetcher{values: map[string]string{"bakery-jwt-secret": "s3cret"}}
	client := secrets.NewVaultClientWithFetcher(fetcher, &secrets.VaultConfig{CacheEnabled: true, CacheTTL: time.Minute}, zap.NewNop())

	for i := 0; i < 3; i++ {
		v, err := client.GetSecret(context.Background(), "bakery-jwt-secret")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", v)
	}
	assert.Equal(t, 1, fetcher.calls)

	client.ClearCache()
	_, err := client.GetSecret(context.Background(), "bakery-jwt-secret")
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
}

func TestVaultClient_NoCache(t *testing.T) {
	fetcher := &countingFetcher{values: map[string]string{"k": "v"}}
	client := secrets.NewVaultClientWithFetcher(fetcher, &secrets.VaultConfig{}, zap.NewNop())

	_, _ = client.GetSecret(context.Background(), "k")
	_, _ = client.GetSecret(context.Background(), "k")
	assert.Equal(t, 2, fetcher.calls)
}

func TestVaultClient_MissingSecret(t *testing.T) {
	client := secrets.NewVaultClientWithFetcher(&countingFetcher{}, &secrets.VaultConfig{CacheEnabled: true}, zap.NewNop())

	_, err := client.GetSecret(context.Background(), "missing")
	assert.Error(t, err)
}

func TestProvider_EnvOverrideWins(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	fetcher := &countingFetcher{values: map[string]string{"bakery-jwt-secret": "from-vault"}}
	provider := secrets.NewVaultProvider(
		secrets.NewVaultClientWithFetcher(fetcher, &secrets.VaultConfig{}, zap.NewNop()), zap.NewNop())

	v, err := provider.GetSecretOrEnv(context.Background(), "bakery-jwt-secret", "JWT_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)
	assert.Zero(t, fetcher.calls)

	v, err = provider.GetSecretOrEnv(context.Background(), "bakery-jwt-secret", "UNSET_BAKERY_VAR")
	require.NoError(t, err)
	assert.Equal(t, "from-vault", v)
}

func TestProvider_EnvironmentSource(t *testing.T) {
	t.Setenv("BAKERY_TEST_SECRET", "abc")
	provider, err := secrets.NewProvider(&secrets.ProviderConfig{Source: secrets.SourceAuto, Environment: "development"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, secrets.SourceEnvironment, provider.Source())

	v, err := provider.GetSecret(context.Background(), "BAKERY_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	_, err = provider.GetSecret(context.Background(), "BAKERY_TEST_SECRET_MISSING")
	assert.Error(t, err)
}
