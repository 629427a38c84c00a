package doh

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/net/idna"

	"github.com/c2FmZQ/doh/dns"
)

// DefaultFlags is the header flags word of the queries created by
// [MakeQuery]: recursion desired.
const DefaultFlags = dns.RecursionDesired

var punycode = idna.New(
	idna.MapForLookup(),
	idna.Transitional(true),
	idna.StrictDomainName(false),
)

// MakeQuery returns a recursive query message with a single question for
// name. An empty typ means "A". Unknown type names are kept as type 0 and
// are rejected when the message is encoded.
//
// The message ID is random. Callers may overwrite it.
func MakeQuery(name, typ string) *dns.Message {
	return MakeQueryWithFlags(name, typ, DefaultFlags)
}

// MakeQueryWithFlags is like [MakeQuery] with explicit header flags.
func MakeQueryWithFlags(name, typ string, flags uint16) *dns.Message {
	if typ == "" {
		typ = "A"
	}
	qq := &dns.Message{
		ID: uint16(random(1 << 16)),
		Question: []dns.Question{{
			Name:  asciiName(name),
			Type:  dns.RRType(typ),
			Class: dns.ClassINET,
		}},
	}
	qq.SetFlags(flags)
	return qq
}

// asciiName converts internationalized names to their punycode form. ASCII
// names are returned unchanged.
func asciiName(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] >= 0x80 {
			if v, err := punycode.ToASCII(name); err == nil {
				return v
			}
			return name
		}
	}
	return name
}

func random(n int) int {
	if n < 2 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}
	return int(v.Int64())
}
