// Package testutil contains an in-process DNS-over-HTTPS server for tests.
package testutil

import (
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/c2FmZQ/doh/dns"
)

// StartTestDNSServer starts a HTTPS server that answers DoH queries from db.
// Use the server's Client() to talk to it.
func StartTestDNSServer(t *testing.T, db []dns.RR) *httptest.Server {
	srv := httptest.NewTLSServer(DNSHandler(t, db))
	t.Cleanup(srv.Close)
	return srv
}

// DNSHandler returns a RFC 8484 handler that answers GET and POST queries
// from db. CNAMEs are followed. Names that don't appear in db get a
// NXDOMAIN response.
func DNSHandler(t *testing.T, db []dns.RR) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer req.Body.Close()
		var body []byte
		switch req.Method {
		case http.MethodGet:
			b, err := base64.RawURLEncoding.DecodeString(req.URL.Query().Get("dns"))
			if err != nil {
				http.Error(w, "bad dns parameter", http.StatusBadRequest)
				return
			}
			body = b
		case http.MethodPost:
			if ct := req.Header.Get("content-type"); ct != "application/dns-message" {
				http.Error(w, "bad content-type", http.StatusUnsupportedMediaType)
				return
			}
			b, err := io.ReadAll(req.Body)
			if err != nil {
				http.Error(w, "read error", http.StatusBadRequest)
				return
			}
			body = b
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		qq, err := dns.Decode(body)
		if err != nil || len(qq.Question) != 1 {
			t.Logf("dns.Decode: %v", err)
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		qq.QR = 1
		qq.RA = 1
		want := strings.TrimSuffix(qq.Question[0].Name, ".")
		found := false
		for i := 0; i < len(db); i++ {
			rr := db[i]
			if !strings.EqualFold(want, rr.Name) {
				continue
			}
			found = true
			if rr.Type == dns.TypeCNAME && qq.Question[0].Type != dns.TypeCNAME {
				qq.Answer = append(qq.Answer, rr)
				want = strings.TrimSuffix(rr.Data.(string), ".")
				i = -1
				continue
			}
			if qq.Question[0].Type == rr.Type {
				qq.Answer = append(qq.Answer, rr)
			}
		}
		if !found {
			qq.RCode = 3
		}
		t.Logf("QQ %#v", qq.Question)
		t.Logf("AA %#v", qq.Answer)
		out, err := dns.Encode(qq)
		if err != nil {
			t.Errorf("dns.Encode: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("content-type", "application/dns-message")
		w.Write(out)
	})
}
