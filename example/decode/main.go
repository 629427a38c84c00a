// decode prints a DNS message given in hex, in base64url as in the dns
// parameter of a DoH GET request, or as a full DoH GET URL.
package main

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/c2FmZQ/doh"
	"github.com/c2FmZQ/doh/dns"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <hex|base64url|url>\n", filepath.Base(os.Args[0]))
		os.Exit(1)
	}
	b, err := parse(os.Args[1])
	if err != nil {
		log.Fatalf("Input: %v", err)
	}
	msg, err := dns.Decode(b)
	if err != nil {
		log.Fatalf("Decode: %v", err)
	}
	kind := "query"
	if msg.QR == 1 {
		kind = "response"
	}
	fmt.Printf("DNS %s, %d bytes, flags 0x%04x\n", kind, len(b), msg.Flags())
	if opt, ok := msg.EDNS0(); ok {
		fmt.Printf("EDNS(0) udp=%d do=%v\n", opt.UDPPayloadSize, opt.Flags&dns.DNSSECOK != 0)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doh.Prettify(msg)); err != nil {
		log.Fatalf("Encode: %v", err)
	}
}

func parse(in string) ([]byte, error) {
	if strings.HasPrefix(in, "https://") || strings.HasPrefix(in, "http://") {
		u, err := url.Parse(in)
		if err != nil {
			return nil, err
		}
		in = u.Query().Get("dns")
	}
	if b, err := hex.DecodeString(in); err == nil {
		return b, nil
	}
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(in, "="))
}
