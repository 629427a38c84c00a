package doh

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/c2FmZQ/doh/dns"
)

// ResolveResult contains the A, AAAA and HTTPS records of a name.
type ResolveResult struct {
	A     []net.IP
	AAAA  []net.IP
	HTTPS []dns.HTTPS
}

// Addr is a convenience function that returns a random IP address or an empty
// string.
func (r ResolveResult) Addr() string {
	if n := len(r.A); n > 0 {
		return r.A[random(n)].String()
	}
	if n := len(r.AAAA); n > 0 {
		return r.AAAA[random(n)].String()
	}
	for _, h := range r.HTTPS {
		if len(h.IPv4Hint) > 0 {
			return h.IPv4Hint.String()
		}
		if len(h.IPv6Hint) > 0 {
			return h.IPv6Hint.String()
		}
	}
	return ""
}

// Resolve uses [DefaultResolver] to resolve name.
func Resolve(ctx context.Context, name string) (ResolveResult, error) {
	return DefaultResolver.Resolve(ctx, name)
}

// DefaultResolver is used by [Resolve]. It uses Cloudflare's service.
var DefaultResolver = CloudflareResolver()

// CloudflareResolver uses Cloudflare's DNS-over-HTTPS service.
// https://developers.cloudflare.com/1.1.1.1/encryption/dns-over-https/
func CloudflareResolver() *Resolver {
	return &Resolver{
		baseURL: "https://1.1.1.1/dns-query",
	}
}

// GoogleResolver uses Google's DNS-over-HTTPS service.
// https://developers.google.com/speed/public-dns/docs/doh
func GoogleResolver() *Resolver {
	return &Resolver{
		baseURL: "https://dns.google/dns-query",
	}
}

// WikimediaResolver uses Wikimedia's DNS-over-HTTPS service.
// https://meta.wikimedia.org/wiki/Wikimedia_DNS
func WikimediaResolver() *Resolver {
	return &Resolver{
		baseURL: "https://wikimedia-dns.org/dns-query",
	}
}

// NewResolver returns a resolver that uses any RFC 8484 compliant
// DNS-over-HTTPS service.
// See https://github.com/curl/curl/wiki/DNS-over-HTTPS#publicly-available-servers
// for a list of publicly available servers.
//
// URL may be a RFC 8484 URI template, e.g. https://example.com/dns-query{?dns}.
// It is kept verbatim and returned as is by [Resolver.NameserverURL].
func NewResolver(URL string) (*Resolver, error) {
	base, _, _ := strings.Cut(URL, "{")
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "https" {
		return nil, errors.New("service url must use https")
	}
	if u.Host == "" {
		return nil, errors.New("service url must have a host")
	}
	return &Resolver{
		baseURL: URL,
	}, nil
}

// Resolver is a DNS-over-HTTPS client bound to one service URL. It holds no
// per-query state and can be used concurrently, as long as Options isn't
// modified while queries are in flight.
type Resolver struct {
	// Options are used for every exchange. See [Options] for the default
	// values.
	Options

	baseURL string
}

// NameserverURL returns the URL of the DoH service.
func (r *Resolver) NameserverURL() string {
	return r.baseURL
}

// Query sends a query for name and typ with the HTTP method, which must be
// GET or POST. An empty typ means "A" and an empty method means "GET".
//
// The method is validated before anything else is done: a disallowed method
// fails with [KindMethodNotAllowed] without any network activity.
func (r *Resolver) Query(ctx context.Context, name, typ, method string) (*dns.Message, error) {
	if method == "" {
		method = http.MethodGet
	}
	if !IsMethodAllowed(method) {
		return nil, &Error{Kind: KindMethodNotAllowed, Method: method, URL: r.NameserverURL()}
	}
	return r.Exchange(ctx, MakeQuery(name, typ), method)
}

// Exchange sends a query message built by the caller, e.g. with
// [MakeQueryWithFlags] or with EDNS(0) options.
func (r *Resolver) Exchange(ctx context.Context, query *dns.Message, method string) (*dns.Message, error) {
	return SendDoHMsg(ctx, query, r.NameserverURL(), method, &r.Options)
}

// Resolve uses DNS-over-HTTPS to resolve name. It collects the A, AAAA and
// HTTPS records, following CNAMEs present in each answer.
func (r *Resolver) Resolve(ctx context.Context, name string) (ResolveResult, error) {
	result := ResolveResult{}
	if name == "localhost" {
		result.A = []net.IP{net.IP{127, 0, 0, 1}}
		result.AAAA = []net.IP{net.IPv6loopback}
		return result, nil
	}
	if ip := net.ParseIP(name); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			result.A = []net.IP{v4}
		} else {
			result.AAAA = []net.IP{ip}
		}
		return result, nil
	}
	a, err := r.resolveOne(ctx, name, dns.TypeA)
	if err != nil {
		return result, err
	}
	for _, v := range a {
		if ip, ok := v.(net.IP); ok {
			result.A = append(result.A, ip)
		}
	}
	aaaa, err := r.resolveOne(ctx, name, dns.TypeAAAA)
	if err != nil {
		return result, err
	}
	for _, v := range aaaa {
		if ip, ok := v.(net.IP); ok {
			result.AAAA = append(result.AAAA, ip)
		}
	}
	https, err := r.resolveOne(ctx, name, dns.TypeHTTPS)
	if err != nil {
		return result, err
	}
	for _, v := range https {
		if h, ok := v.(dns.HTTPS); ok {
			result.HTTPS = append(result.HTTPS, h)
		}
	}
	return result, nil
}

var (
	ErrFormatError       = errors.New("format error")
	ErrServerFailure     = errors.New("server failure")
	ErrNonExistentDomain = errors.New("non-existent domain")
	ErrNotImplemented    = errors.New("not implemented")
	ErrQueryRefused      = errors.New("query refused")

	rcode = map[uint8]error{
		1: ErrFormatError,
		2: ErrServerFailure,
		3: ErrNonExistentDomain,
		4: ErrNotImplemented,
		5: ErrQueryRefused,
	}
)

// RCodeError returns nil if msg has a NOERROR response code, or an error
// describing the code otherwise.
func RCodeError(msg *dns.Message) error {
	rc := msg.RCode
	if rc == 0 {
		return nil
	}
	if err := rcode[rc]; err != nil {
		return fmt.Errorf("%w (%d)", err, rc)
	}
	return fmt.Errorf("response code %d", rc)
}

func (r *Resolver) resolveOne(ctx context.Context, name string, typ dns.Type) ([]any, error) {
	qq := MakeQuery(name, typ.String())
	qq.ID = 0x0000

	result, err := r.Exchange(ctx, qq, http.MethodPost)
	if err != nil {
		return nil, err
	}
	if err := RCodeError(result); err != nil {
		return nil, fmt.Errorf("%s (%s): %w", name, typ, err)
	}
	var res []any
	want := strings.TrimSuffix(qq.Question[0].Name, ".")
	for _, a := range result.Answer {
		name := strings.TrimSuffix(a.Name, ".")
		if !strings.EqualFold(name, want) {
			continue
		}
		if a.Type == typ {
			res = append(res, a.Data)
		}
		if target, ok := a.Data.(string); ok && a.Type == dns.TypeCNAME {
			want = strings.TrimSuffix(target, ".")
		}
	}
	return res, nil
}
