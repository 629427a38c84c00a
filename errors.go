package doh

import (
	"errors"
	"fmt"
	"time"
)

// Kind identifies the class of failure of a DoH exchange.
type Kind int

// The kinds of failure reported by [*Error].
const (
	// KindUnknown is returned by [KindOf] for errors that aren't [*Error].
	KindUnknown Kind = iota
	// KindMethodNotAllowed means the HTTP method is neither GET nor POST.
	KindMethodNotAllowed
	// KindTimeout means the exchange did not complete before the deadline.
	KindTimeout
	// KindTransport means a network, TLS or HTTP status failure.
	KindTransport
	// KindDecode means the response is not a valid DNS message.
	KindDecode
	// KindEncode means the query could not be encoded.
	KindEncode
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindMethodNotAllowed:
		return "method not allowed"
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport failure"
	case KindDecode:
		return "decode failure"
	case KindEncode:
		return "encode failure"
	default:
		return fmt.Sprintf("invalid kind: %d", int(k))
	}
}

// Sentinel errors for use with [errors.Is]. Any [*Error] matches the
// sentinel of the same Kind.
var (
	ErrMethodNotAllowed = &Error{Kind: KindMethodNotAllowed}
	ErrTimeout          = &Error{Kind: KindTimeout}
	ErrTransport        = &Error{Kind: KindTransport}
	ErrDecode           = &Error{Kind: KindDecode}
	ErrEncode           = &Error{Kind: KindEncode}
)

// Error is returned by all the DoH operations. The underlying cause, if
// any, is available with [errors.Unwrap].
type Error struct {
	Kind Kind
	// Method is the HTTP method of the request.
	Method string
	// URL is the resolver URL.
	URL string
	// StatusCode is set when the resolver returned a non-2xx response.
	StatusCode int
	// After is the timeout that expired, for KindTimeout.
	After time.Duration
	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	var s string
	switch e.Kind {
	case KindMethodNotAllowed:
		return fmt.Sprintf("doh: method %q not allowed, use GET or POST", e.Method)
	case KindTimeout:
		s = "request timed out"
		if e.After > 0 {
			s += " after " + e.After.String()
		}
	case KindTransport:
		s = "transport failure"
		if e.StatusCode != 0 {
			s = fmt.Sprintf("unexpected status code %d", e.StatusCode)
		}
	default:
		s = e.Kind.String()
	}
	if e.Method != "" || e.URL != "" {
		s = fmt.Sprintf("%s %s: %s", e.Method, e.URL, s)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return "doh: " + s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Timeout reports whether the error is a timeout. It lets *Error satisfy
// the Timeout part of [net.Error].
func (e *Error) Timeout() bool {
	return e.Kind == KindTimeout
}

// KindOf returns the Kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
