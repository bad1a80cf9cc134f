package standalone

import "github.com/lambda-feedback/restproxy/internal/server"

type Config struct {
	// HttpConfig represents the configuration for the proxy server.
	HttpConfig server.HttpConfig `conf:",squash"`
}
