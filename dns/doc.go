// Package dns implements low-level DNS message encoding and decoding to
// interface with RFC 8484 "DNS Queries over HTTPS" (DoH) services.
//
// Example:
//
//	qq := &dns.Message{
//		RD: 1,
//		Question: []dns.Question{{
//			Name:  "www.google.com",
//			Type:  dns.TypeA,
//			Class: dns.ClassINET,
//		}},
//	}
//	qq.SetEDNS0(4096, true)
//	b, err := dns.Encode(qq)
//	if err != nil {
//		// ...
//	}
//	// send b to a resolver ...
//	result, err := dns.Decode(reply)
//	if err != nil {
//		// ...
//	}
//	enc := json.NewEncoder(os.Stdout)
//	enc.SetIndent("", "  ")
//	enc.Encode(result)
//
// Record data is decoded into typed values ([MX], [SOA], [TLSA], [DNSKEY],
// ...). Types without a dedicated decoder are left as raw []byte.
package dns
