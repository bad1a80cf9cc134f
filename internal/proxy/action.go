package proxy

import "github.com/lambda-feedback/restproxy/internal/transport"

// ActionTable maps inbound verbs to upstream operations.
type ActionTable map[Method]transport.Operation

// DefaultActions is the verb table of the proxy. GET and PUT collapse
// onto the patch operation alongside PATCH, so every read or replace
// is forwarded as a partial update.
var DefaultActions = ActionTable{
	MethodGet:     transport.OperationPatch,
	MethodPost:    transport.OperationCreate,
	MethodDelete:  transport.OperationDelete,
	MethodPut:     transport.OperationPatch,
	MethodPatch:   transport.OperationPatch,
	MethodOptions: transport.OperationPreflight,
}

// Resolve returns the operation for m.
func (t ActionTable) Resolve(m Method) (transport.Operation, error) {
	op, ok := t[m]
	if !ok {
		return "", &UnsupportedMethodError{Method: m}
	}
	return op, nil
}
