package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Reason classifies why an upstream call failed.
type Reason string

const (
	// ReasonConnection covers dial, reset and refused connections, as
	// well as calls short-circuited by an open breaker.
	ReasonConnection Reason = "connection"

	// ReasonTimeout covers client timeouts and expired deadlines.
	ReasonTimeout Reason = "timeout"

	// ReasonTLS covers handshake and certificate verification failures.
	ReasonTLS Reason = "tls"

	// ReasonMalformedResponse covers responses that could not be parsed
	// or whose body could not be read.
	ReasonMalformedResponse Reason = "malformed-response"

	// ReasonCanceled covers calls abandoned because the caller went
	// away. It is not an upstream failure.
	ReasonCanceled Reason = "canceled"
)

func (r Reason) String() string {
	return string(r)
}

var (
	// ErrUnknownOperation is returned for operations without a verb.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrInvalidURL is returned when the upstream url cannot be parsed.
	ErrInvalidURL = errors.New("invalid upstream url")
)

// Error is returned when an upstream call fails at the network level.
type Error struct {
	Reason    Reason
	Operation Operation
	URL       string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport error [%s] %s %s: %v", e.Reason, e.Operation, e.URL, e.Cause)
	}
	return fmt.Sprintf("transport error [%s] %s %s", e.Reason, e.Operation, e.URL)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsTimeout reports whether the error was caused by a deadline.
func (e *Error) IsTimeout() bool {
	return e.Reason == ReasonTimeout
}

// IsCanceled reports whether the caller canceled the call.
func (e *Error) IsCanceled() bool {
	return e.Reason == ReasonCanceled
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var transportErr *Error
	if errors.As(err, &transportErr) {
		return transportErr, true
	}
	return nil, false
}

// classify maps an error returned by the http client to a Reason.
func classify(err error) Reason {
	if errors.Is(err, context.Canceled) {
		return ReasonCanceled
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}

	if isTLSError(err) {
		return ReasonTLS
	}

	// net/http reports unparsable responses as plain errors
	msg := err.Error()
	if strings.Contains(msg, "malformed HTTP") || strings.Contains(msg, "malformed MIME") {
		return ReasonMalformedResponse
	}

	return ReasonConnection
}

func isTLSError(err error) bool {
	var (
		verifyErr   *tls.CertificateVerificationError
		recordErr   tls.RecordHeaderError
		alertErr    tls.AlertError
		unknownAuth x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
		invalidCert x509.CertificateInvalidError
	)

	return errors.As(err, &verifyErr) ||
		errors.As(err, &recordErr) ||
		errors.As(err, &alertErr) ||
		errors.As(err, &unknownAuth) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidCert)
}
