package doh

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/c2FmZQ/doh/dns"
)

type countingTransport struct {
	n atomic.Int32
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.n.Add(1)
	return nil, errors.New("unexpected request")
}

func TestNewResolver(t *testing.T) {
	r, err := NewResolver("https://example.com/dns-query")
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	if got, want := r.NameserverURL(), "https://example.com/dns-query"; got != want {
		t.Errorf("NameserverURL() = %q, want %q", got, want)
	}
	tmpl := "https://example.com/dns-query{?dns}"
	if r, err = NewResolver(tmpl); err != nil {
		t.Fatalf("NewResolver(%q): %v", tmpl, err)
	}
	if got, want := r.NameserverURL(), tmpl; got != want {
		t.Errorf("NameserverURL() = %q, want %q", got, want)
	}
	for _, u := range []string{"http://example.com/dns-query", "http://example.com/dns-query{?dns}", "example.com", "https:///dns-query", ":"} {
		if _, err := NewResolver(u); err == nil {
			t.Errorf("NewResolver(%q) succeeded, want error", u)
		}
	}
	for _, tc := range []struct {
		r    *Resolver
		want string
	}{
		{CloudflareResolver(), "https://1.1.1.1/dns-query"},
		{GoogleResolver(), "https://dns.google/dns-query"},
		{WikimediaResolver(), "https://wikimedia-dns.org/dns-query"},
	} {
		if got := tc.r.NameserverURL(); got != tc.want {
			t.Errorf("NameserverURL() = %q, want %q", got, tc.want)
		}
	}
}

func TestResolverMethodNotAllowed(t *testing.T) {
	r, err := NewResolver("https://example.com/dns-query")
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	ct := &countingTransport{}
	r.HTTPClient = &http.Client{Transport: ct}

	for _, method := range []string{"PUT", "get", "DELETE"} {
		_, err := r.Query(t.Context(), "example.com", "A", method)
		if !errors.Is(err, ErrMethodNotAllowed) {
			t.Errorf("Query(%s) = %v, want %v", method, err, ErrMethodNotAllowed)
		}
		var e *Error
		if !errors.As(err, &e) {
			t.Fatalf("Query(%s) = %T, want *Error", method, err)
		}
		if got, want := e.Method, method; got != want {
			t.Errorf("Method = %q, want %q", got, want)
		}
	}
	if got, want := ct.n.Load(), int32(0); got != want {
		t.Errorf("network calls = %d, want %d", got, want)
	}

	// A valid method reaches the transport.
	if _, err := r.Query(t.Context(), "example.com", "A", "GET"); KindOf(err) != KindTransport {
		t.Errorf("Query(GET) = %v, want transport failure", err)
	}
	if got, want := ct.n.Load(), int32(1); got != want {
		t.Errorf("network calls = %d, want %d", got, want)
	}
}

func TestResolverQuery(t *testing.T) {
	srv, rec := startServer(t)
	r, err := NewResolver(srv.URL + "/dns-query")
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	r.HTTPClient = srv.Client()

	for _, tc := range []struct {
		typ, method string
		wantMethod  string
		wantType    dns.Type
		wantAnswers int
	}{
		{"", "", "GET", dns.TypeA, 1},
		{"AAAA", "GET", "GET", dns.TypeAAAA, 1},
		{"TXT", "POST", "POST", dns.TypeTXT, 1},
		{"MX", "POST", "POST", dns.TypeMX, 0},
	} {
		resp, err := r.Query(t.Context(), "example.com", tc.typ, tc.method)
		if err != nil {
			t.Fatalf("Query(%q, %q): %v", tc.typ, tc.method, err)
		}
		if got, want := rec.last().method, tc.wantMethod; got != want {
			t.Errorf("Query(%q, %q) method = %s, want %s", tc.typ, tc.method, got, want)
		}
		if got, want := resp.Question[0].Type, tc.wantType; got != want {
			t.Errorf("Query(%q, %q) type = %s, want %s", tc.typ, tc.method, got, want)
		}
		if got, want := len(resp.Answer), tc.wantAnswers; got != want {
			t.Errorf("Query(%q, %q) len(Answer) = %d, want %d", tc.typ, tc.method, got, want)
		}
	}
}

func TestResolverQueryURLTemplate(t *testing.T) {
	srv, rec := startServer(t)
	tmpl := srv.URL + "/dns-query{?dns}"
	r, err := NewResolver(tmpl)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	r.HTTPClient = srv.Client()
	if got, want := r.NameserverURL(), tmpl; got != want {
		t.Errorf("NameserverURL() = %q, want %q", got, want)
	}

	for _, method := range []string{"GET", "POST"} {
		resp, err := r.Query(t.Context(), "example.com", "A", method)
		if err != nil {
			t.Fatalf("Query(%s): %v", method, err)
		}
		if got, want := len(resp.Answer), 1; got != want {
			t.Fatalf("%s: len(Answer) = %d, want %d", method, got, want)
		}
		req := rec.last()
		if got, want := req.path, "/dns-query"; got != want {
			t.Errorf("%s: path = %q, want %q", method, got, want)
		}
		if got, want := req.rawQuery == "", method == "POST"; got != want {
			t.Errorf("%s: query = %q", method, req.rawQuery)
		}
	}
}

func TestResolverConcurrentQueries(t *testing.T) {
	srv, _ := startServer(t)
	r, err := NewResolver(srv.URL + "/dns-query")
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	r.HTTPClient = srv.Client()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		method := "GET"
		if i%2 == 1 {
			method = "POST"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := r.Query(t.Context(), "example.com", "A", method)
			if err != nil {
				errs <- fmt.Errorf("Query #%d (%s): %w", i, method, err)
				return
			}
			if len(resp.Answer) != 1 {
				errs <- fmt.Errorf("Query #%d (%s): len(Answer) = %d, want 1", i, method, len(resp.Answer))
				return
			}
			if ip, ok := resp.Answer[0].Data.(net.IP); !ok || ip.String() != "192.0.2.1" {
				errs <- fmt.Errorf("Query #%d (%s): Answer = %v, want 192.0.2.1", i, method, resp.Answer[0].Data)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestResolve(t *testing.T) {
	srv, _ := startServer(t)
	r, err := NewResolver(srv.URL + "/dns-query")
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	r.HTTPClient = srv.Client()

	for _, name := range []string{"example.com", "www.example.com"} {
		res, err := r.Resolve(t.Context(), name)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", name, err)
		}
		if got, want := len(res.A), 1; got != want {
			t.Fatalf("%s: len(A) = %d, want %d", name, got, want)
		}
		if got, want := res.A[0].String(), "192.0.2.1"; got != want {
			t.Errorf("%s: A = %s, want %s", name, got, want)
		}
		if got, want := len(res.AAAA), 1; got != want {
			t.Fatalf("%s: len(AAAA) = %d, want %d", name, got, want)
		}
		if got, want := res.AAAA[0].String(), "2001:db8::1"; got != want {
			t.Errorf("%s: AAAA = %s, want %s", name, got, want)
		}
		if got, want := len(res.HTTPS), 1; got != want {
			t.Fatalf("%s: len(HTTPS) = %d, want %d", name, got, want)
		}
		if got, want := res.HTTPS[0].String(), `1 . alpn="h2"`; got != want {
			t.Errorf("%s: HTTPS = %s, want %s", name, got, want)
		}
		if got, want := res.Addr(), "192.0.2.1"; got != want {
			t.Errorf("%s: Addr() = %s, want %s", name, got, want)
		}
	}

	if _, err := r.Resolve(t.Context(), "nope.example.com"); !errors.Is(err, ErrNonExistentDomain) {
		t.Errorf("Resolve(nope) = %v, want %v", err, ErrNonExistentDomain)
	}
}

func TestResolveShortcuts(t *testing.T) {
	r, err := NewResolver("https://example.com/dns-query")
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	ct := &countingTransport{}
	r.HTTPClient = &http.Client{Transport: ct}

	for _, tc := range []struct {
		name, want string
	}{
		{"localhost", "127.0.0.1"},
		{"192.0.2.7", "192.0.2.7"},
		{"2001:db8::7", "2001:db8::7"},
	} {
		res, err := r.Resolve(t.Context(), tc.name)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tc.name, err)
		}
		if got := res.Addr(); got != tc.want {
			t.Errorf("Resolve(%q).Addr() = %q, want %q", tc.name, got, tc.want)
		}
	}
	if got, want := ct.n.Load(), int32(0); got != want {
		t.Errorf("network calls = %d, want %d", got, want)
	}
}

func TestRCodeError(t *testing.T) {
	for _, tc := range []struct {
		rcode uint8
		want  error
	}{
		{1, ErrFormatError},
		{2, ErrServerFailure},
		{3, ErrNonExistentDomain},
		{4, ErrNotImplemented},
		{5, ErrQueryRefused},
	} {
		if err := RCodeError(&dns.Message{RCode: tc.rcode}); !errors.Is(err, tc.want) {
			t.Errorf("RCodeError(%d) = %v, want %v", tc.rcode, err, tc.want)
		}
	}
	if err := RCodeError(&dns.Message{}); err != nil {
		t.Errorf("RCodeError(0) = %v, want nil", err)
	}
	if err := RCodeError(&dns.Message{RCode: 9}); err == nil {
		t.Error("RCodeError(9) = nil, want error")
	}
}
