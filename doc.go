// Package doh implements a DNS-over-HTTPS client, as described in
// https://www.rfc-editor.org/rfc/rfc8484
//
// A query is built with [MakeQuery], sent to a resolver with [SendDoHMsg]
// using either GET or POST, and the decoded response can be converted to a
// display friendly form with [Prettify].
//
//	msg := doh.MakeQuery("example.com", "A")
//	resp, err := doh.SendDoHMsg(ctx, msg, "https://1.1.1.1/dns-query", "GET", nil)
//	if err != nil {
//	        // ...
//	}
//	for _, rr := range resp.Answer {
//	        fmt.Println(rr.Name, rr.Type, rr.Data)
//	}
//
// A [Resolver] binds a resolver URL and [Options]:
//
//	r, err := doh.NewResolver("https://dns.google/dns-query")
//	if err != nil {
//	        // ...
//	}
//	r.Timeout = 2 * time.Second
//	resp, err := r.Query(ctx, "example.com", "TXT", "POST")
//
// All the errors returned by the exchanges are of type [*Error]. Their
// [Kind] tells method validation errors, timeouts, transport failures and
// decoding failures apart:
//
//	if errors.Is(err, doh.ErrTimeout) {
//	        // ...
//	}
//
// The [github.com/c2FmZQ/doh/dns] package contains the wire format codec.
// The [github.com/c2FmZQ/doh/h3] package contains a HTTP/3 client that can
// be used with DoH3 resolvers.
package doh
