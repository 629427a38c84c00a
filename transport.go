package doh

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/c2FmZQ/doh/dns"
)

const (
	// DefaultTimeout is used when Options.Timeout is zero.
	DefaultTimeout = 10 * time.Second

	// RFC 8484, Section 6
	maxMessageSize = 65535
	mimeType       = "application/dns-message"
)

var errTimedOut = errors.New("timed out")

// Options contains the settings of a DoH exchange. The zero value uses the
// defaults documented on each field.
type Options struct {
	// Timeout bounds the whole exchange, from sending the request to
	// reading the last byte of the response. The default is
	// [DefaultTimeout].
	Timeout time.Duration
	// HTTPClient is used to send the requests. If nil, each exchange
	// uses a new client with keep-alives disabled.
	HTTPClient *http.Client
	// Logger receives a debug record for each exchange. If nil, nothing
	// is logged.
	Logger *slog.Logger
	// UserAgent is the value of the User-Agent header. When empty, no
	// User-Agent header is sent.
	UserAgent string
}

func (o *Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return DefaultTimeout
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// IsMethodAllowed reports whether method can be used for DoH requests. Only
// "GET" and "POST" are allowed. The comparison is case-sensitive.
func IsMethodAllowed(method string) bool {
	return method == http.MethodGet || method == http.MethodPost
}

// SendDoHMsg sends a RFC 8484 DoH (DNS-over-HTTPS) request to nameserverURL
// and returns the decoded response.
//
// With GET, the query is sent base64url-encoded in the dns URL parameter.
// With POST, the query is the request body. The exchange is cancelled when
// ctx is done or when opts.Timeout expires, whichever comes first. opts may
// be nil.
//
// All the errors are of type [*Error].
func SendDoHMsg(ctx context.Context, query *dns.Message, nameserverURL, method string, opts *Options) (*dns.Message, error) {
	if opts == nil {
		opts = &Options{}
	}
	x := exchange{
		method:  method,
		url:     nameserverURL,
		timeout: opts.timeout(),
	}
	if !IsMethodAllowed(method) {
		return nil, x.fail(KindMethodNotAllowed, nil)
	}
	if query == nil {
		return nil, x.fail(KindEncode, errors.New("nil query"))
	}
	payload, err := dns.Encode(query)
	if err != nil {
		return nil, x.fail(KindEncode, err)
	}

	ctx, cancel := context.WithTimeoutCause(ctx, x.timeout, errTimedOut)
	defer cancel()

	req, err := x.newRequest(ctx, payload)
	if err != nil {
		return nil, x.fail(KindTransport, err)
	}
	req.Header.Set("accept", mimeType)
	req.Header.Set("user-agent", opts.UserAgent)

	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = nil
	if opts.Logger != nil {
		client.Logger = opts.Logger
	}
	client.HTTPClient = opts.HTTPClient
	if client.HTTPClient == nil {
		client.HTTPClient = cleanhttp.DefaultClient()
	}

	logger := opts.logger()
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		logger.DebugContext(ctx, "doh exchange failed", "method", method, "url", x.url, "elapsed", time.Since(start), "err", err)
		return nil, x.netFailure(ctx, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.DebugContext(ctx, "doh exchange failed", "method", method, "url", x.url, "elapsed", time.Since(start), "status", resp.StatusCode)
		e := x.fail(KindTransport, nil)
		e.StatusCode = resp.StatusCode
		return nil, e
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMessageSize+1))
	if err != nil {
		return nil, x.netFailure(ctx, err)
	}
	logger.DebugContext(ctx, "doh exchange", "method", method, "url", x.url, "elapsed", time.Since(start), "status", resp.StatusCode, "size", len(body))
	if len(body) > maxMessageSize {
		return nil, x.fail(KindDecode, fmt.Errorf("%w: response larger than %d bytes", dns.ErrDecodeError, maxMessageSize))
	}
	msg, err := dns.Decode(body)
	if err != nil {
		return nil, x.fail(KindDecode, err)
	}
	return msg, nil
}

type exchange struct {
	method  string
	url     string
	timeout time.Duration
}

func (x exchange) newRequest(ctx context.Context, payload []byte) (*retryablehttp.Request, error) {
	// Drop the RFC 6570 template suffix, e.g. https://example.com/dns-query{?dns}
	base, _, _ := strings.Cut(x.url, "{")
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	if x.method == http.MethodGet {
		q := u.Query()
		q.Set("dns", base64.RawURLEncoding.EncodeToString(payload))
		u.RawQuery = q.Encode()
		return retryablehttp.NewRequestWithContext(ctx, x.method, u.String(), nil)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, x.method, u.String(), payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("content-type", mimeType)
	return req, nil
}

func (x exchange) fail(kind Kind, err error) *Error {
	return &Error{
		Kind:   kind,
		Method: x.method,
		URL:    x.url,
		Err:    err,
	}
}

// netFailure classifies an error returned while the request was in flight.
func (x exchange) netFailure(ctx context.Context, err error) *Error {
	e := x.fail(KindTransport, err)
	var netErr net.Error
	switch {
	case errors.Is(context.Cause(ctx), errTimedOut):
		e.Kind = KindTimeout
		e.After = x.timeout
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		e.Kind = KindTimeout
	}
	return e
}
