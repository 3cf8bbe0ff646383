package secrets

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// SecretSource defines where secrets are loaded from
type SecretSource string

const (
	SourceEnvironment SecretSource = "environment"
	SourceVault       SecretSource = "vault"
	// SourceAuto uses the vault in staging and production, the environment elsewhere
	SourceAuto SecretSource = "auto"
)

// Provider resolves secrets from the environment or a vault
type Provider struct {
	source SecretSource
	vault  *VaultClient
	logger *zap.Logger
}

// ProviderConfig holds configuration for the secrets provider
type ProviderConfig struct {
	Source       SecretSource
	VaultName    string
	Environment  string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// NewProvider creates a secrets provider, connecting to Key Vault when the resolved source is the vault
func NewProvider(cfg *ProviderConfig, logger *zap.Logger) (*Provider, error) {
	source := resolveSource(cfg.Source, cfg.Environment)
	p := &Provider{source: source, logger: logger}

	if source == SourceVault {
		vault, err := NewVaultClient(&VaultConfig{
			VaultName:    cfg.VaultName,
			CacheEnabled: cfg.CacheEnabled,
			CacheTTL:     cfg.CacheTTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vault client: %w", err)
		}
		p.vault = vault
	}

	logger.Info("secrets provider initialized",
		zap.String("source", string(source)),
		zap.String("environment", cfg.Environment),
	)
	return p, nil
}

// NewVaultProvider wraps an existing vault client
func NewVaultProvider(vault *VaultClient, logger *zap.Logger) *Provider {
	return &Provider{source: SourceVault, vault: vault, logger: logger}
}

func resolveSource(source SecretSource, environment string) SecretSource {
	if source != SourceAuto {
		return source
	}
	switch environment {
	case "staging", "production":
		return SourceVault
	default:
		return SourceEnvironment
	}
}

// GetSecret reads name from the configured source.
// For the environment source name is the variable name.
func (p *Provider) GetSecret(ctx context.Context, name string) (string, error) {
	switch p.source {
	case SourceEnvironment:
		value := os.Getenv(name)
		if value == "" {
			return "", fmt.Errorf("environment variable '%s' not set", name)
		}
		return value, nil
	case SourceVault:
		if p.vault == nil {
			return "", fmt.Errorf("vault client not initialized")
		}
		return p.vault.GetSecret(ctx, name)
	default:
		return "", fmt.Errorf("unknown secret source: %s", p.source)
	}
}

// GetSecretOrEnv prefers an explicitly set environment variable over the configured source
func (p *Provider) GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error) {
	if value := os.Getenv(envName); value != "" {
		p.logger.Debug("using environment override for secret", zap.String("env_name", envName))
		return value, nil
	}
	return p.GetSecret(ctx, secretName)
}

// Source returns the resolved secret source
func (p *Provider) Source() SecretSource {
	return p.source
}
