// Package increment implements a small upstream service that adds one
// to an arbitrary precision integer. It is the default upstream of the
// proxy in development.
package increment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrInvalidValue is returned for bodies that are not an integer
	// or {"value": <integer>}.
	ErrInvalidValue = errors.New("value must be an integer")
)

var one = big.NewInt(1)

// Increment returns n+1 without modifying n.
func Increment(n *big.Int) *big.Int {
	return new(big.Int).Add(n, one)
}

// ParseValue decodes the value to increment. The second return value
// is false for an empty or null body.
func ParseValue(body []byte) (*big.Int, bool, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false, nil
	}

	if trimmed[0] == '{' {
		var wrapped struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		if len(wrapped.Value) == 0 || bytes.Equal(wrapped.Value, []byte("null")) {
			return nil, false, nil
		}
		trimmed = wrapped.Value
	}

	n, ok := new(big.Int).SetString(string(trimmed), 10)
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidValue, trimmed)
	}

	return n, true, nil
}
