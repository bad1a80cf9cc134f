package secrets

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	fileUsernameKey = "USERNAME"
	filePasswordKey = "PASSWORD"
)

// FileProvider reads USERNAME and PASSWORD from a dotenv file each
// time Credentials is called.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider for the dotenv file at path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) Credentials(context.Context) (Credentials, error) {
	if p.path == "" {
		return Credentials{}, fmt.Errorf("%w: no credentials file configured", ErrMissingCredentials)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(p.path), dotenv.Parser()); err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials file %q: %w", p.path, err)
	}

	return Credentials{
		Username: k.String(fileUsernameKey),
		Password: k.String(filePasswordKey),
	}, nil
}
