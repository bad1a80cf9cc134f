package increment

import "github.com/lambda-feedback/restproxy/internal/server"

type Config struct {
	// HttpConfig represents the configuration for the HTTP server.
	HttpConfig server.HttpConfig `conf:",squash"`

	// Username is the basic auth user.
	Username string `conf:"username"`

	// Password is the plain text basic auth password. It is hashed
	// on startup and ignored when PasswordHash is set.
	Password string `conf:"password"`

	// PasswordHash is a bcrypt hash of the basic auth password.
	PasswordHash string `conf:"password_hash"`
}
