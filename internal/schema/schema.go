// Package schema validates inbound request bodies against a JSON
// schema before they are forwarded.
package schema

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// NameIncrement selects the built-in increment request schema.
const NameIncrement = "increment"

var (
	// ErrInvalidJSON is returned when the body is not valid JSON.
	ErrInvalidJSON = errors.New("request body is not valid json")
)

//go:embed increment.json
var incrementSchema json.RawMessage

// ValidationError lists the schema violations of a body.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "request body does not match schema: " + strings.Join(e.Errors, "; ")
}

// Validator validates request bodies. A nil *Validator accepts
// everything.
type Validator struct {
	schema *gojsonschema.Schema
}

// Load returns the validator for source: empty disables validation,
// "increment" selects the built-in schema, anything else is read as a
// schema file path.
func Load(source string) (*Validator, error) {
	var loader gojsonschema.JSONLoader

	switch source {
	case "":
		return nil, nil
	case NameIncrement:
		loader = gojsonschema.NewBytesLoader(incrementSchema)
	default:
		raw, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %q: %w", source, err)
		}
		loader = gojsonschema.NewBytesLoader(raw)
	}

	s, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %q: %w", source, err)
	}

	return &Validator{schema: s}, nil
}

// Validate checks body against the schema. Empty bodies are accepted.
func (v *Validator) Validate(body []byte) error {
	if v == nil || len(body) == 0 {
		return nil
	}

	if !json.Valid(body) {
		return ErrInvalidJSON
	}

	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		messages = append(messages, desc.String())
	}

	return &ValidationError{Errors: messages}
}
