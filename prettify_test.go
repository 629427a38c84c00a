package doh

import (
	"encoding/hex"
	"encoding/json"
	"net"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/c2FmZQ/doh/dns"
)

// _443._tcp.good.dane.huque.com TLSA
const tlsaResponse = "000081800001000100000000045f343433045f74637004676f6f640464616e6505687571756503636f6d0000340001c00c0034000100001c2000230301016e8d1119ab26b6ef204b33a4036f2835cab86b0833f36ee96642e5703b74486c"

func TestPrettifyTLSA(t *testing.T) {
	b, err := hex.DecodeString(tlsaResponse)
	if err != nil {
		t.Fatalf("hex.DecodeString: %v", err)
	}
	msg, err := dns.Decode(b)
	if err != nil {
		t.Fatalf("dns.Decode: %v", err)
	}
	pretty := Prettify(msg)
	tlsa, ok := pretty.Answer[0].Data.(PrettyTLSA)
	if !ok {
		t.Fatalf("Data = %T, want PrettyTLSA", pretty.Answer[0].Data)
	}
	if got, want := tlsa.Certificate, "6e8d1119ab26b6ef204b33a4036f2835cab86b0833f36ee96642e5703b74486c"; got != want {
		t.Errorf("Certificate = %q, want %q", got, want)
	}
	if tlsa.Usage != 3 || tlsa.Selector != 1 || tlsa.MatchingType != 1 {
		t.Errorf("TLSA = %d %d %d, want 3 1 1", tlsa.Usage, tlsa.Selector, tlsa.MatchingType)
	}
	if got, want := pretty.Answer[0].Name, msg.Answer[0].Name; got != want {
		t.Errorf("Name = %q, want %q", got, want)
	}
	if _, ok := msg.Answer[0].Data.(dns.TLSA); !ok {
		t.Errorf("input Data = %T, want dns.TLSA", msg.Answer[0].Data)
	}

	j, err := json.Marshal(pretty)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	for _, want := range []string{`"certificate":"6e8d1119`, `"type":"TLSA"`, `"class":"IN"`} {
		if !strings.Contains(string(j), want) {
			t.Errorf("json = %s, want it to contain %s", j, want)
		}
	}
}

func TestPrettify(t *testing.T) {
	rr := func(typ dns.Type, data any) dns.RR {
		return dns.RR{Name: "example.com", Type: typ, Class: dns.ClassINET, TTL: 60, Data: data}
	}
	opt := dns.OPT{UDPPayloadSize: 1232, Flags: dns.DNSSECOK, Options: []dns.EDNSOption{{Code: 10, Data: []byte{1, 2}}}}
	msg := &dns.Message{
		ID: 7, QR: 1,
		Question: []dns.Question{{Name: "example.com", Type: dns.TypeANY, Class: dns.ClassINET}},
		Answer: []dns.RR{
			rr(dns.TypeA, net.IP{192, 0, 2, 1}),
			rr(dns.TypeDNSKEY, dns.DNSKEY{Flags: 257, Protocol: 3, Algorithm: 13, PublicKey: []byte{1, 2, 3}}),
			rr(dns.TypeDS, dns.DS{KeyTag: 1, Algorithm: 13, DigestType: 2, Digest: []byte{0xab, 0xcd}}),
			rr(dns.TypeRRSIG, dns.RRSIG{TypeCovered: dns.TypeA, Algorithm: 13, Labels: 2, KeyTag: 1, SignerName: "example.com", Signature: []byte{1, 2, 3}}),
			rr(dns.TypeNSEC, dns.NSEC{NextDomainName: "a.example.com", TypeBitMaps: dns.TypeBitMaps([]dns.Type{dns.TypeA, dns.TypeRRSIG})}),
			rr(dns.TypeNSEC3, dns.NSEC3{HashAlgorithm: 1, Salt: []byte{0xaa}, NextHashedOwner: []byte{0xff, 0xff}, TypeBitMaps: dns.TypeBitMaps([]dns.Type{dns.TypeA})}),
			rr(dns.TypeSSHFP, dns.SSHFP{Algorithm: 4, Type: 2, Fingerprint: []byte{0x12}}),
			rr(dns.TypeCERT, dns.CERT{Type: 1, Certificate: []byte{1, 2, 3}}),
			rr(dns.TypeHTTPS, dns.HTTPS{Priority: 1, ALPN: []string{"h3"}, IPv4Hint: net.IP{192, 0, 2, 1}, ECH: []byte{1, 2, 3}}),
			rr(dns.TypeSVCB, dns.SVCB{Priority: 1, Target: "svc.example.com", Params: []dns.SVCBParam{{Key: 3, Value: []byte{0x01, 0xbb}}}}),
			rr(dns.Type(65280), []byte{0xde, 0xad}),
			rr(dns.TypeNSEC, dns.NSEC{NextDomainName: "b.example.com", TypeBitMaps: []byte{0, 0}}),
		},
		Additional: []dns.RR{{Name: "", Type: dns.TypeOPT, Class: dns.Class(1232), Data: opt}},
	}
	want := []any{
		net.IP{192, 0, 2, 1},
		PrettyDNSKEY{Flags: DNSKEYFlags{Value: 257, ZoneKey: true, SecureEntryPoint: true}, Protocol: 3, Algorithm: 13, PublicKey: "AQID"},
		PrettyDS{KeyTag: 1, Algorithm: 13, DigestType: 2, Digest: "abcd"},
		PrettyRRSIG{TypeCovered: dns.TypeA, Algorithm: 13, Labels: 2, KeyTag: 1, SignerName: "example.com", Signature: "AQID"},
		PrettyNSEC{NextDomainName: "a.example.com", Types: []dns.Type{dns.TypeA, dns.TypeRRSIG}},
		PrettyNSEC3{HashAlgorithm: 1, Salt: "aa", NextHashedOwner: "VVVG", Types: []dns.Type{dns.TypeA}},
		PrettySSHFP{Algorithm: 4, Type: 2, Fingerprint: "12"},
		PrettyCERT{Type: 1, Certificate: "AQID"},
		PrettyHTTPS{Priority: 1, ALPN: []string{"h3"}, IPv4Hint: "192.0.2.1", ECH: "AQID"},
		PrettySVCB{Priority: 1, Target: "svc.example.com", Params: []HexOption{{Code: 3, Value: "01bb"}}},
		[]byte{0xde, 0xad},
		dns.NSEC{NextDomainName: "b.example.com", TypeBitMaps: []byte{0, 0}},
	}

	pretty := Prettify(msg)
	if got, want := len(pretty.Answer), len(want); got != want {
		t.Fatalf("len(Answer) = %d, want %d", got, want)
	}
	for i, rr := range pretty.Answer {
		if diff := cmp.Diff(want[i], rr.Data); diff != "" {
			t.Errorf("Answer[%d] (%s) mismatch (-want +got):\n%s", i, rr.Type, diff)
		}
		if rr.Name != msg.Answer[i].Name || rr.Type != msg.Answer[i].Type || rr.TTL != msg.Answer[i].TTL {
			t.Errorf("Answer[%d] header changed: %+v", i, rr)
		}
	}
	wantOPT := PrettyOPT{UDPPayloadSize: 1232, Flags: OPTFlags{Value: dns.DNSSECOK, DNSSECOK: true}, Options: []HexOption{{Code: 10, Value: "0102"}}}
	if diff := cmp.Diff(wantOPT, pretty.Additional[0].Data); diff != "" {
		t.Errorf("OPT mismatch (-want +got):\n%s", diff)
	}

	// The input is unchanged.
	if _, ok := msg.Answer[1].Data.(dns.DNSKEY); !ok {
		t.Errorf("input Answer[1].Data = %T, want dns.DNSKEY", msg.Answer[1].Data)
	}
	if _, ok := msg.Additional[0].Data.(dns.OPT); !ok {
		t.Errorf("input Additional[0].Data = %T, want dns.OPT", msg.Additional[0].Data)
	}
	if pretty.ID != msg.ID || pretty.QR != msg.QR {
		t.Errorf("header changed: %d %d", pretty.ID, pretty.QR)
	}

	if Prettify(nil) != nil {
		t.Error("Prettify(nil) != nil")
	}
}
