package secrets

import "time"

type Config struct {
	// Provider selects the credentials source.
	Provider ProviderType `conf:"provider"`

	// Username and Password are used by the static provider.
	Username string `conf:"username"`
	Password string `conf:"password"`

	// File is the dotenv file read by the file provider.
	File string `conf:"file"`

	// Vault configures the vault provider.
	Vault VaultConfig `conf:"vault"`
}

type VaultConfig struct {
	// Address of the vault server. Falls back to VAULT_ADDR.
	Address string `conf:"address"`

	// Token used to authenticate. Falls back to VAULT_TOKEN.
	Token string `conf:"token"`

	// Mount is the KV v2 secrets engine mount.
	Mount string `conf:"mount"`

	// Path of the secret below the mount.
	Path string `conf:"path"`

	// UsernameKey and PasswordKey name the fields of the secret.
	UsernameKey string `conf:"username_key"`
	PasswordKey string `conf:"password_key"`

	// Timeout bounds a single vault request.
	Timeout time.Duration `conf:"timeout"`
}
