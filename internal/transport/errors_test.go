package transport_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lambda-feedback/restproxy/internal/transport"
)

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("dispatch: %w", &transport.Error{
		Reason:    transport.ReasonConnection,
		Operation: transport.OperationPatch,
		URL:       "http://upstream",
		Cause:     cause,
	})

	transportErr, ok := transport.AsError(err)

	assert.True(t, ok)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, transport.ReasonConnection, transportErr.Reason)
	assert.False(t, transportErr.IsTimeout())
	assert.Contains(t, err.Error(), "[connection] patch http://upstream")
}

func TestAsError_Other(t *testing.T) {
	_, ok := transport.AsError(errors.New("other"))

	assert.False(t, ok)
}

func TestOperation_Verb(t *testing.T) {
	verb, ok := transport.OperationCreate.Verb()
	assert.True(t, ok)
	assert.Equal(t, "POST", verb)

	_, ok = transport.Operation("upsert").Verb()
	assert.False(t, ok)

	assert.True(t, transport.OperationCreate.CarriesBody())
	assert.False(t, transport.OperationPatch.CarriesBody())
	assert.False(t, transport.OperationDelete.CarriesBody())
	assert.False(t, transport.OperationPreflight.CarriesBody())
}
