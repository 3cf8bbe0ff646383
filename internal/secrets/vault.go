package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"go.uber.org/zap"
)

const defaultCacheTTL = 5 * time.Minute

// Fetcher reads a single secret value by name
type Fetcher interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// keyVaultFetcher reads the latest version of a secret from Azure Key Vault
type keyVaultFetcher struct {
	client *azsecrets.Client
}

func (f *keyVaultFetcher) Fetch(ctx context.Context, name string) (string, error) {
	resp, err := f.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		return "", err
	}
	if resp.Value == nil {
		return "", fmt.Errorf("secret '%s' has no value", name)
	}
	return *resp.Value, nil
}

// VaultClient fetches bakery secrets from a vault with an optional TTL cache
type VaultClient struct {
	fetcher      Fetcher
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
	now          func() time.Time

	mu    sync.Mutex
	cache map[string]cachedSecret
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

// VaultConfig holds configuration for the vault client
type VaultConfig struct {
	VaultName    string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// NewVaultClient connects to Azure Key Vault using DefaultAzureCredential
// (environment credentials, managed identity or the Azure CLI login).
func NewVaultClient(cfg *VaultConfig, logger *zap.Logger) (*VaultClient, error) {
	if cfg.VaultName == "" {
		return nil, fmt.Errorf("vault name is required")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	vaultURL := fmt.Sprintf("https://%s.vault.azure.net/", cfg.VaultName)
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	logger.Info("Azure Key Vault client initialized",
		zap.String("vault_url", vaultURL),
		zap.Bool("cache_enabled", cfg.CacheEnabled),
	)

	return NewVaultClientWithFetcher(&keyVaultFetcher{client: client}, cfg, logger), nil
}

// NewVaultClientWithFetcher builds a vault client over any secret fetcher
func NewVaultClientWithFetcher(fetcher Fetcher, cfg *VaultConfig, logger *zap.Logger) *VaultClient {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &VaultClient{
		fetcher:      fetcher,
		logger:       logger,
		cacheEnabled: cfg.CacheEnabled,
		cacheTTL:     ttl,
		now:          time.Now,
		cache:        make(map[string]cachedSecret),
	}
}

// GetSecret returns the secret value, served from cache while it is fresh
func (v *VaultClient) GetSecret(ctx context.Context, name string) (string, error) {
	if v.cacheEnabled {
		v.mu.Lock()
		cached, ok := v.cache[name]
		if ok && v.now().Before(cached.expiresAt) {
			v.mu.Unlock()
			return cached.value, nil
		}
		delete(v.cache, name)
		v.mu.Unlock()
	}

	value, err := v.fetcher.Fetch(ctx, name)
	if err != nil {
		v.logger.Error("failed to get secret from vault",
			zap.String("secret_name", name),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to get secret '%s': %w", name, err)
	}

	if v.cacheEnabled {
		v.mu.Lock()
		v.cache[name] = cachedSecret{value: value, expiresAt: v.now().Add(v.cacheTTL)}
		v.mu.Unlock()
	}
	return value, nil
}

// ClearCache drops every cached secret
func (v *VaultClient) ClearCache() {
	v.mu.Lock()
	v.cache = make(map[string]cachedSecret)
	v.mu.Unlock()
}
