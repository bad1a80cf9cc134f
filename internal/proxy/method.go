package proxy

import (
	"net/http"
	"strings"
)

// Method is an inbound http verb.
type Method string

const (
	MethodGet     Method = http.MethodGet
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodPatch   Method = http.MethodPatch
	MethodDelete  Method = http.MethodDelete
	MethodOptions Method = http.MethodOptions
)

// SupportedMethods lists the verbs the proxy accepts, in the order
// they are advertised in the Allow header.
var SupportedMethods = []Method{
	MethodGet,
	MethodPost,
	MethodPut,
	MethodPatch,
	MethodDelete,
	MethodOptions,
}

// ParseMethod normalizes a raw verb. The second return value reports
// whether the verb is one of SupportedMethods; unknown verbs are still
// returned so they can be reported.
func ParseMethod(raw string) (Method, bool) {
	m := Method(strings.ToUpper(strings.TrimSpace(raw)))
	for _, supported := range SupportedMethods {
		if m == supported {
			return m, true
		}
	}
	return m, false
}

func (m Method) String() string {
	return string(m)
}

// AllowHeader returns the value for an Allow response header.
func AllowHeader() string {
	names := make([]string, len(SupportedMethods))
	for i, m := range SupportedMethods {
		names[i] = m.String()
	}
	return strings.Join(names, ", ")
}
