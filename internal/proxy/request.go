package proxy

import "net/http"

// InboundRequest is the request received by the proxy. The dispatcher
// only reads it.
type InboundRequest struct {
	Method      Method
	QueryString string
	Body        []byte
	Header      http.Header
}

// NewInboundRequest captures r with its already read body.
func NewInboundRequest(r *http.Request, body []byte) InboundRequest {
	method, _ := ParseMethod(r.Method)

	return InboundRequest{
		Method:      method,
		QueryString: r.URL.RawQuery,
		Body:        body,
		Header:      r.Header.Clone(),
	}
}
