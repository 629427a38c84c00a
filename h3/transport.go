// Package h3 contains a HTTP/3 client for DNS-over-HTTPS resolvers that
// support it, e.g. Cloudflare and Google.
package h3

import (
	"context"
	"crypto/tls"
	"net/http"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
)

// NewTransport returns a [http3.Transport] that is ready to be used with
// [http.Client]. tc and qc may be nil.
//
// The caller should call Close when the transport is no longer needed.
func NewTransport(tc *tls.Config, qc *quic.Config) *http3.Transport {
	if tc == nil {
		tc = &tls.Config{}
	}
	tc = tc.Clone()
	tc.NextProtos = []string{http3.NextProtoH3}
	return &http3.Transport{
		TLSClientConfig: tc,
		QUICConfig:      qc,
		Dial: func(ctx context.Context, addr string, tc *tls.Config, qc *quic.Config) (quic.EarlyConnection, error) {
			return quic.DialAddrEarly(ctx, addr, tc, qc)
		},
	}
}

// NewClient returns a [http.Client] that uses HTTP/3. It can be used as the
// HTTPClient of [github.com/c2FmZQ/doh.Options].
func NewClient(tc *tls.Config, qc *quic.Config) *http.Client {
	return &http.Client{Transport: NewTransport(tc, qc)}
}
