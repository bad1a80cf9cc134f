package secrets

import (
	"context"
	"errors"
	"fmt"

	vaultapi "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

var (
	// ErrSecretNotFound is returned when the secret does not exist or
	// was deleted.
	ErrSecretNotFound = errors.New("secret not found")
)

const (
	defaultVaultMount       = "secret"
	defaultVaultUsernameKey = "username"
	defaultVaultPasswordKey = "password"
)

// VaultProvider reads credentials from a KV v2 secret.
type VaultProvider struct {
	client      *vaultapi.Client
	mount       string
	path        string
	usernameKey string
	passwordKey string
	log         *zap.Logger
}

// NewVaultProvider creates a vault client for the given config.
func NewVaultProvider(cfg VaultConfig, log *zap.Logger) (*VaultProvider, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: vault secret path is required", ErrMissingCredentials)
	}

	apiConfig := vaultapi.DefaultConfig()
	if cfg.Address != "" {
		apiConfig.Address = cfg.Address
	}
	if cfg.Timeout > 0 {
		apiConfig.Timeout = cfg.Timeout
	}

	client, err := vaultapi.NewClient(apiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}

	return &VaultProvider{
		client:      client,
		mount:       withDefault(cfg.Mount, defaultVaultMount),
		path:        cfg.Path,
		usernameKey: withDefault(cfg.UsernameKey, defaultVaultUsernameKey),
		passwordKey: withDefault(cfg.PasswordKey, defaultVaultPasswordKey),
		log:         log.Named("vault"),
	}, nil
}

func (p *VaultProvider) Credentials(ctx context.Context) (Credentials, error) {
	fullPath := fmt.Sprintf("%s/data/%s", p.mount, p.path)

	secret, err := p.client.Logical().ReadWithContext(ctx, fullPath)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read secret %q: %w", fullPath, err)
	}

	if secret == nil || secret.Data == nil {
		return Credentials{}, fmt.Errorf("%w: %s", ErrSecretNotFound, fullPath)
	}

	// KV v2 wraps the fields in "data", deleted versions carry null
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return Credentials{}, fmt.Errorf("%w: %s", ErrSecretNotFound, fullPath)
	}

	p.log.Debug("read upstream credentials", zap.String("path", fullPath))

	return Credentials{
		Username: stringField(data, p.usernameKey),
		Password: stringField(data, p.passwordKey),
	}, nil
}

func stringField(data map[string]interface{}, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
