package doh

import (
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"slices"

	"github.com/c2FmZQ/doh/dns"
)

// PrettyTLSA is the display form of a TLSA or SMIMEA record.
type PrettyTLSA struct {
	Usage        uint8  `json:"usage"`
	Selector     uint8  `json:"selector"`
	MatchingType uint8  `json:"matchingtype"`
	Certificate  string `json:"certificate"` // hex
}

// DNSKEYFlags is the decoded flags field of a DNSKEY record. RFC 4034,
// Section 2.1.1 and RFC 5011, Section 7.
type DNSKEYFlags struct {
	Value            uint16 `json:"value"`
	ZoneKey          bool   `json:"zonekey"`
	SecureEntryPoint bool   `json:"secureentrypoint"`
	Revoked          bool   `json:"revoked"`
}

// PrettyDNSKEY is the display form of a DNSKEY or CDNSKEY record.
type PrettyDNSKEY struct {
	Flags     DNSKEYFlags `json:"flags"`
	Protocol  uint8       `json:"protocol"`
	Algorithm uint8       `json:"algorithm"`
	PublicKey string      `json:"publickey"` // base64
}

// PrettyDS is the display form of a DS or CDS record.
type PrettyDS struct {
	KeyTag     uint16 `json:"keytag"`
	Algorithm  uint8  `json:"algorithm"`
	DigestType uint8  `json:"digesttype"`
	Digest     string `json:"digest"` // hex
}

// PrettyRRSIG is the display form of a RRSIG record.
type PrettyRRSIG struct {
	TypeCovered         dns.Type `json:"typecovered"`
	Algorithm           uint8    `json:"algorithm"`
	Labels              uint8    `json:"labels"`
	OriginalTTL         uint32   `json:"originalttl"`
	SignatureExpiration uint32   `json:"signatureexpiration"`
	SignatureInception  uint32   `json:"signatureinception"`
	KeyTag              uint16   `json:"keytag"`
	SignerName          string   `json:"signername"`
	Signature           string   `json:"signature"` // base64
}

// PrettyNSEC is the display form of a NSEC record.
type PrettyNSEC struct {
	NextDomainName string     `json:"nextdomainname"`
	Types          []dns.Type `json:"types"`
}

// PrettyNSEC3 is the display form of a NSEC3 record.
type PrettyNSEC3 struct {
	HashAlgorithm   uint8      `json:"hashalgorithm"`
	Flags           uint8      `json:"flags"`
	Iterations      uint16     `json:"iterations"`
	Salt            string     `json:"salt"`            // hex
	NextHashedOwner string     `json:"nexthashedowner"` // base32hex
	Types           []dns.Type `json:"types"`
}

// PrettySSHFP is the display form of a SSHFP record.
type PrettySSHFP struct {
	Algorithm   uint8  `json:"algorithm"`
	Type        uint8  `json:"type"`
	Fingerprint string `json:"fingerprint"` // hex
}

// PrettyCERT is the display form of a CERT record.
type PrettyCERT struct {
	Type        uint16 `json:"type"`
	KeyTag      uint16 `json:"keytag"`
	Algorithm   uint8  `json:"algorithm"`
	Certificate string `json:"certificate"` // base64
}

// PrettyHTTPS is the display form of a HTTPS record.
type PrettyHTTPS struct {
	Priority      uint16   `json:"priority"`
	Target        string   `json:"target,omitempty"`
	ALPN          []string `json:"alpn,omitempty"`
	NoDefaultALPN bool     `json:"no-default-alpn,omitempty"`
	Port          uint16   `json:"port,omitempty"`
	IPv4Hint      string   `json:"ipv4hint,omitempty"`
	IPv6Hint      string   `json:"ipv6hint,omitempty"`
	ECH           string   `json:"ech,omitempty"` // base64
}

// PrettySVCB is the display form of a SVCB record.
type PrettySVCB struct {
	Priority uint16      `json:"priority"`
	Target   string      `json:"target"`
	Params   []HexOption `json:"params,omitempty"`
}

// OPTFlags is the decoded flags field of an OPT record.
type OPTFlags struct {
	Value    uint16 `json:"value"`
	DNSSECOK bool   `json:"dnssecok"`
}

// PrettyOPT is the display form of the EDNS(0) OPT pseudo record.
type PrettyOPT struct {
	UDPPayloadSize uint16      `json:"udppayloadsize"`
	ExtendedRCode  uint8       `json:"extendedrcode"`
	Version        uint8       `json:"version"`
	Flags          OPTFlags    `json:"flags"`
	Options        []HexOption `json:"options,omitempty"`
}

// HexOption is a key/value pair with a hex encoded value. It is used for
// SVCB parameters and EDNS(0) options.
type HexOption struct {
	Code  uint16 `json:"code"`
	Value string `json:"value,omitempty"`
}

// DNSKEY flag bits. RFC 4034 numbers bits from the most significant one.
const (
	dnskeyZoneKey          = 1 << 8
	dnskeyRevoked          = 1 << 7
	dnskeySecureEntryPoint = 1
)

var base32Hex = base32.HexEncoding.WithPadding(base32.NoPadding)

// Prettify returns a copy of m where the binary and flag fields of the
// records are converted to display friendly values, e.g. for JSON output.
// Records of other types are copied unchanged. m is not modified.
func Prettify(m *dns.Message) *dns.Message {
	if m == nil {
		return nil
	}
	out := *m
	out.Question = slices.Clone(m.Question)
	out.Answer = prettifyRRs(m.Answer)
	out.Authority = prettifyRRs(m.Authority)
	out.Additional = prettifyRRs(m.Additional)
	return &out
}

func prettifyRRs(rrs []dns.RR) []dns.RR {
	if rrs == nil {
		return nil
	}
	out := make([]dns.RR, len(rrs))
	for i, rr := range rrs {
		out[i] = rr
		out[i].Data = prettifyData(rr.Data)
	}
	return out
}

func prettifyData(data any) any {
	switch v := data.(type) {
	case dns.TLSA:
		return PrettyTLSA{
			Usage:        v.Usage,
			Selector:     v.Selector,
			MatchingType: v.MatchingType,
			Certificate:  hex.EncodeToString(v.Certificate),
		}
	case dns.DNSKEY:
		return PrettyDNSKEY{
			Flags: DNSKEYFlags{
				Value:            v.Flags,
				ZoneKey:          v.Flags&dnskeyZoneKey != 0,
				SecureEntryPoint: v.Flags&dnskeySecureEntryPoint != 0,
				Revoked:          v.Flags&dnskeyRevoked != 0,
			},
			Protocol:  v.Protocol,
			Algorithm: v.Algorithm,
			PublicKey: base64.StdEncoding.EncodeToString(v.PublicKey),
		}
	case dns.DS:
		return PrettyDS{
			KeyTag:     v.KeyTag,
			Algorithm:  v.Algorithm,
			DigestType: v.DigestType,
			Digest:     hex.EncodeToString(v.Digest),
		}
	case dns.RRSIG:
		return PrettyRRSIG{
			TypeCovered:         v.TypeCovered,
			Algorithm:           v.Algorithm,
			Labels:              v.Labels,
			OriginalTTL:         v.OriginalTTL,
			SignatureExpiration: v.SignatureExpiration,
			SignatureInception:  v.SignatureInception,
			KeyTag:              v.KeyTag,
			SignerName:          v.SignerName,
			Signature:           base64.StdEncoding.EncodeToString(v.Signature),
		}
	case dns.NSEC:
		types, err := v.Types()
		if err != nil {
			return data
		}
		return PrettyNSEC{NextDomainName: v.NextDomainName, Types: types}
	case dns.NSEC3:
		types, err := v.Types()
		if err != nil {
			return data
		}
		return PrettyNSEC3{
			HashAlgorithm:   v.HashAlgorithm,
			Flags:           v.Flags,
			Iterations:      v.Iterations,
			Salt:            hex.EncodeToString(v.Salt),
			NextHashedOwner: base32Hex.EncodeToString(v.NextHashedOwner),
			Types:           types,
		}
	case dns.SSHFP:
		return PrettySSHFP{
			Algorithm:   v.Algorithm,
			Type:        v.Type,
			Fingerprint: hex.EncodeToString(v.Fingerprint),
		}
	case dns.CERT:
		return PrettyCERT{
			Type:        v.Type,
			KeyTag:      v.KeyTag,
			Algorithm:   v.Algorithm,
			Certificate: base64.StdEncoding.EncodeToString(v.Certificate),
		}
	case dns.HTTPS:
		p := PrettyHTTPS{
			Priority:      v.Priority,
			Target:        v.Target,
			ALPN:          slices.Clone(v.ALPN),
			NoDefaultALPN: v.NoDefaultALPN,
			Port:          v.Port,
		}
		if len(v.IPv4Hint) > 0 {
			p.IPv4Hint = v.IPv4Hint.String()
		}
		if len(v.IPv6Hint) > 0 {
			p.IPv6Hint = v.IPv6Hint.String()
		}
		if len(v.ECH) > 0 {
			p.ECH = base64.StdEncoding.EncodeToString(v.ECH)
		}
		return p
	case dns.SVCB:
		p := PrettySVCB{Priority: v.Priority, Target: v.Target}
		for _, param := range v.Params {
			p.Params = append(p.Params, HexOption{Code: param.Key, Value: hex.EncodeToString(param.Value)})
		}
		return p
	case dns.OPT:
		p := PrettyOPT{
			UDPPayloadSize: v.UDPPayloadSize,
			ExtendedRCode:  v.ExtendedRCode,
			Version:        v.Version,
			Flags:          OPTFlags{Value: v.Flags, DNSSECOK: v.Flags&dns.DNSSECOK != 0},
		}
		for _, o := range v.Options {
			p.Options = append(p.Options, HexOption{Code: o.Code, Value: hex.EncodeToString(o.Data)})
		}
		return p
	default:
		return data
	}
}
