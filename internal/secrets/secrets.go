// Package secrets resolves the upstream basic auth credentials at
// runtime from static config, a dotenv file or vault.
package secrets

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrUnknownProvider is returned for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown credentials provider")

	// ErrMissingCredentials is returned when a provider yields no
	// username.
	ErrMissingCredentials = errors.New("missing credentials")
)

// ProviderType names a credentials source.
type ProviderType string

const (
	ProviderStatic ProviderType = "static"
	ProviderFile   ProviderType = "file"
	ProviderVault  ProviderType = "vault"
)

// Credentials are the basic auth credentials for the upstream.
type Credentials struct {
	Username string
	Password string
}

// BasicAuth returns the value of the Authorization header.
func (c Credentials) BasicAuth() string {
	token := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
	return "Basic " + token
}

// Provider resolves credentials.
type Provider interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// NewProvider creates the provider selected by cfg.Provider.
func NewProvider(cfg Config, log *zap.Logger) (Provider, error) {
	if log == nil {
		log = zap.NewNop()
	}

	switch cfg.Provider {
	case ProviderStatic, "":
		return NewStaticProvider(cfg.Username, cfg.Password), nil
	case ProviderFile:
		return NewFileProvider(cfg.File), nil
	case ProviderVault:
		return NewVaultProvider(cfg.Vault, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// Resolve reads the credentials and rejects an empty username.
func Resolve(ctx context.Context, provider Provider) (Credentials, error) {
	creds, err := provider.Credentials(ctx)
	if err != nil {
		return Credentials{}, err
	}

	if creds.Username == "" {
		return Credentials{}, ErrMissingCredentials
	}

	return creds, nil
}

// StaticProvider returns fixed credentials.
type StaticProvider struct {
	creds Credentials
}

// NewStaticProvider creates a provider for fixed credentials.
func NewStaticProvider(username, password string) *StaticProvider {
	return &StaticProvider{
		creds: Credentials{Username: username, Password: password},
	}
}

func (p *StaticProvider) Credentials(context.Context) (Credentials, error) {
	return p.creds, nil
}
