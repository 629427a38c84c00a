package dns

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is a Resource Record type.
type Type uint16

// Class is a Resource Record class.
type Class uint16

const (
	TypeNone    Type = 0
	TypeA       Type = 1
	TypeNS      Type = 2
	TypeCNAME   Type = 5
	TypeSOA     Type = 6
	TypePTR     Type = 12
	TypeMX      Type = 15
	TypeTXT     Type = 16
	TypeAAAA    Type = 28
	TypeLOC     Type = 29
	TypeSRV     Type = 33
	TypeCERT    Type = 37
	TypeDNAME   Type = 39
	TypeOPT     Type = 41
	TypeDS      Type = 43
	TypeSSHFP   Type = 44
	TypeRRSIG   Type = 46
	TypeNSEC    Type = 47
	TypeDNSKEY  Type = 48
	TypeNSEC3   Type = 50
	TypeTLSA    Type = 52
	TypeSMIMEA  Type = 53
	TypeCDS     Type = 59
	TypeCDNSKEY Type = 60
	TypeSVCB    Type = 64
	TypeHTTPS   Type = 65
	TypeSPF     Type = 99
	TypeANY     Type = 255
	TypeURI     Type = 256
	TypeCAA     Type = 257

	ClassINET  Class = 1
	ClassCHAOS Class = 3
	ClassANY   Class = 255
)

// Header flags, as found in the second 16-bit word of a message.
const (
	QueryResponse       uint16 = 1 << 15
	AuthoritativeAnswer uint16 = 1 << 10
	Truncated           uint16 = 1 << 9
	RecursionDesired    uint16 = 1 << 8
	RecursionAvailable  uint16 = 1 << 7
	AuthenticData       uint16 = 1 << 5
	CheckingDisabled    uint16 = 1 << 4
)

// DNSSECOK is the DO bit of the EDNS(0) OPT record flags. RFC 3225
const DNSSECOK uint16 = 1 << 15

var (
	// A map of Resource Record types.
	// https://en.wikipedia.org/wiki/List_of_DNS_record_types
	rrTypes = map[string]Type{
		"A":          1,     // RFC 1035
		"AAAA":       28,    // RFC 3596
		"AFSDB":      18,    // RFC 1183
		"ANY":        255,   // RFC 1035 and RFC 8482
		"APL":        42,    // RFC 3123
		"AXFR":       252,   // RFC 1035
		"CAA":        257,   // RFC 6844
		"CDNSKEY":    60,    // RFC 7344
		"CDS":        59,    // RFC 7344
		"CERT":       37,    // RFC 4398
		"CNAME":      5,     // RFC 1035
		"CSYNC":      62,    // RFC 7477
		"DHCID":      49,    // RFC 4701
		"DLV":        32769, // RFC 4431
		"DNAME":      39,    // RFC 6672
		"DNSKEY":     48,    // RFC 4034
		"DS":         43,    // RFC 4034
		"EUI48":      108,   // RFC 7043
		"EUI64":      109,   // RFC 7043
		"HINFO":      13,    // RFC 8482
		"HIP":        55,    // RFC 8005
		"HTTPS":      65,    // RFC 9460
		"IPSECKEY":   45,    // RFC 4025
		"IXFR":       251,   // RFC 1996
		"KEY":        25,    // RFC 2535 and RFC 2930
		"KX":         36,    // RFC 2230
		"LOC":        29,    // RFC 1876
		"MX":         15,    // RFC 1035 and RFC 7505
		"NAPTR":      35,    // RFC 3403
		"NS":         2,     // RFC 1035
		"NSEC":       47,    // RFC 4034
		"NSEC3":      50,    // RFC 5155
		"NSEC3PARAM": 51,    // RFC 5155
		"NULL":       10,    // RFC 1035
		"OPENPGPKEY": 61,    // RFC 7929
		"OPT":        41,    // RFC 6891
		"PTR":        12,    // RFC 1035
		"RP":         17,    // RFC 1183
		"RRSIG":      46,    // RFC 4034
		"SIG":        24,    // RFC 2535
		"SMIMEA":     53,    // RFC 8162
		"SOA":        6,     // RFC 1035 and RFC 2308
		"SPF":        99,    // RFC 4408
		"SRV":        33,    // RFC 2782
		"SSHFP":      44,    // RFC 4255
		"SVCB":       64,    // RFC 9460
		"TA":         32768, //
		"TKEY":       249,   // RFC 2930
		"TLSA":       52,    // RFC 6698
		"TSIG":       250,   // RFC 2845
		"TXT":        16,    // RFC 1035
		"URI":        256,   // RFC 7553
		"ZONEMD":     63,    // RFC 8976
	}
	rrTypeNames = reverse(rrTypes)

	classes = map[string]Class{
		"IN":   1,
		"CS":   2,
		"CH":   3,
		"HS":   4,
		"NONE": 254,
		"ANY":  255,
	}
	classNames = reverse(classes)
)

func reverse[T comparable](m map[string]T) map[T]string {
	out := make(map[T]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// RRType returns the RR type id for a type name, or 0 if the name is
// unknown.
func RRType(t string) Type {
	v, _ := ParseType(t)
	return v
}

// ParseType parses a type mnemonic (case insensitive), a generic TYPEnnn
// name (RFC 3597), or a decimal number.
func ParseType(s string) (Type, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if v, ok := rrTypes[s]; ok {
		return v, true
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "TYPE"), 10, 16)
	if err != nil {
		return 0, false
	}
	return Type(n), true
}

func (t Type) String() string {
	if n, ok := rrTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("TYPE%d", uint16(t))
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(b []byte) error {
	v, ok := ParseType(string(b))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, b)
	}
	*t = v
	return nil
}

// ParseClass parses a class mnemonic, a generic CLASSnnn name, or a decimal
// number.
func ParseClass(s string) (Class, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if v, ok := classes[s]; ok {
		return v, true
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "CLASS"), 10, 16)
	if err != nil {
		return 0, false
	}
	return Class(n), true
}

func (c Class) String() string {
	if n, ok := classNames[c]; ok {
		return n
	}
	return fmt.Sprintf("CLASS%d", uint16(c))
}

func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Class) UnmarshalText(b []byte) error {
	v, ok := ParseClass(string(b))
	if !ok {
		return fmt.Errorf("unknown class %q", b)
	}
	*c = v
	return nil
}
