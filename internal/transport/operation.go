package transport

import "net/http"

// Operation names an upstream action the transport knows how to
// perform. Each operation issues exactly one outbound request.
type Operation string

const (
	// OperationPatch updates the upstream resource, issued as PATCH.
	OperationPatch Operation = "patch"

	// OperationCreate creates an upstream resource, issued as POST.
	// It is the only operation that carries a request body.
	OperationCreate Operation = "create"

	// OperationDelete deletes the upstream resource, issued as DELETE.
	OperationDelete Operation = "delete"

	// OperationPreflight asks the upstream for its capabilities,
	// issued as OPTIONS.
	OperationPreflight Operation = "preflight"
)

var operationVerbs = map[Operation]string{
	OperationPatch:     http.MethodPatch,
	OperationCreate:    http.MethodPost,
	OperationDelete:    http.MethodDelete,
	OperationPreflight: http.MethodOptions,
}

func (o Operation) String() string {
	return string(o)
}

// Verb returns the outbound http method for the operation.
func (o Operation) Verb() (string, bool) {
	verb, ok := operationVerbs[o]
	return verb, ok
}

// CarriesBody reports whether the inbound body is forwarded.
func (o Operation) CarriesBody() bool {
	return o == OperationCreate
}
