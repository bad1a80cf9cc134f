// Package requestid carries a per-request correlation id through
// contexts and http headers.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the http header the request id travels in.
const Header = "X-Request-Id"

type contextKey int

var idKey = contextKey(0)

// New generates a fresh request id.
func New() string {
	return uuid.NewString()
}

// ContextWithID returns a copy of ctx carrying the request id.
func ContextWithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey, id)
}

// FromContext returns the request id stored in ctx, if any.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(idKey).(string)
	return id, ok && id != ""
}
