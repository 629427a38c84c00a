package dns

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
	"unsafe"

	"golang.org/x/crypto/cryptobyte"
)

var (
	ErrDecodeError = errors.New("decode error")
	ErrEncodeError = errors.New("encode error")
	ErrUnknownType = errors.New("unknown record type")
)

// Message is a RFC 1035 DNS Message.
type Message struct {
	// Header
	ID     uint16 `json:"id"`
	QR     uint8  `json:"qr"`
	OpCode uint8  `json:"opcode,omitempty"`
	AA     uint8  `json:"aa,omitempty"`
	TC     uint8  `json:"tc,omitempty"`
	RD     uint8  `json:"rd,omitempty"`
	RA     uint8  `json:"ra,omitempty"`
	AD     uint8  `json:"ad,omitempty"`
	CD     uint8  `json:"cd,omitempty"`
	RCode  uint8  `json:"rcode"`

	// Question section
	Question []Question `json:"question,omitempty"`
	// Answer section
	Answer []RR `json:"answer,omitempty"`
	// Authority section
	Authority []RR `json:"authority,omitempty"`
	// Additional information section
	Additional []RR `json:"additional,omitempty"`
}

// A question for a name server.
type Question struct {
	Name  string `json:"name"`
	Type  Type   `json:"type"`
	Class Class  `json:"class"`
}

// A Resource Record.
type RR struct {
	Name  string `json:"name"`
	Type  Type   `json:"type"`
	Class Class  `json:"class"`
	TTL   uint32 `json:"ttl"`
	Data  any    `json:"data"`
}

// MX represents a MX Resource Record.
type MX struct {
	Preference uint16 `json:"preference"`
	Exchange   string `json:"exchange"`
}

// TXT represents a TXT Resource Record.
type TXT []string

// SOA represents a SOA Resource Record.
type SOA struct {
	MName   string `json:"mname"`
	RName   string `json:"rname"`
	Serial  uint32 `json:"serial"`
	Refresh uint32 `json:"refresh"`
	Retry   uint32 `json:"retry"`
	Expire  uint32 `json:"expire"`
	Minimum uint32 `json:"minimum"`
}

// CAA represents a CAA Resource Record.
type CAA struct {
	Flags uint8  `json:"flags"`
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// CERT represents a CERT Resource Record.
type CERT struct {
	Type        uint16 `json:"type"`
	KeyTag      uint16 `json:"keytag"`
	Algorithm   uint8  `json:"algorithm"`
	Certificate []byte `json:"certificate"`
}

// DNSKEY represents a DNSKEY or CDNSKEY Resource Record.
type DNSKEY struct {
	Flags     uint16 `json:"flags"`
	Protocol  uint8  `json:"protocol"`
	Algorithm uint8  `json:"algorithm"`
	PublicKey []byte `json:"publickey"`
}

// DS represents a DS or CDS Resource Record.
type DS struct {
	KeyTag     uint16 `json:"keytag"`
	Algorithm  uint8  `json:"algorithm"`
	DigestType uint8  `json:"digesttype"`
	Digest     []byte `json:"digest"`
}

// RRSIG represents a RRSIG Resource Record.
type RRSIG struct {
	TypeCovered         Type   `json:"typecovered"`
	Algorithm           uint8  `json:"algorithm"`
	Labels              uint8  `json:"labels"`
	OriginalTTL         uint32 `json:"originalttl"`
	SignatureExpiration uint32 `json:"signatureexpiration"`
	SignatureInception  uint32 `json:"signatureinception"`
	KeyTag              uint16 `json:"keytag"`
	SignerName          string `json:"signername"`
	Signature           []byte `json:"signature"`
}

// NSEC represents a NSEC Resource Record.
type NSEC struct {
	NextDomainName string `json:"nextdomainname"`
	TypeBitMaps    []byte `json:"typebitmaps"`
}

// NSEC3 represents a NSEC3 Resource Record. RFC 5155
type NSEC3 struct {
	HashAlgorithm   uint8  `json:"hashalgorithm"`
	Flags           uint8  `json:"flags"`
	Iterations      uint16 `json:"iterations"`
	Salt            []byte `json:"salt"`
	NextHashedOwner []byte `json:"nexthashedowner"`
	TypeBitMaps     []byte `json:"typebitmaps"`
}

// TLSA represents a TLSA or SMIMEA Resource Record. RFC 6698
type TLSA struct {
	Usage        uint8  `json:"usage"`
	Selector     uint8  `json:"selector"`
	MatchingType uint8  `json:"matchingtype"`
	Certificate  []byte `json:"certificate"`
}

// SSHFP represents a SSHFP Resource Record. RFC 4255
type SSHFP struct {
	Algorithm   uint8  `json:"algorithm"`
	Type        uint8  `json:"type"`
	Fingerprint []byte `json:"fingerprint"`
}

// LOC represents a LOC Resource Record. RFC 1876
type LOC struct {
	Version   uint8   `json:"version"`
	Size      float64 `json:"size"`      // meters
	HorizPre  float64 `json:"horizpre"`  // meters
	VertPre   float64 `json:"vertpre"`   // meters
	Latitude  float64 `json:"latitude"`  // degrees
	Longitude float64 `json:"longitude"` // degrees
	Altitude  float64 `json:"altitude"`  // meters above reference altitude
}

// SRV represents a SRV Resource Record.
type SRV struct {
	Priority uint16 `json:"priority"`
	Weight   uint16 `json:"weight"`
	Port     uint16 `json:"port"`
	Target   string `json:"target"`
}

// SVCB represents a SVCB Resource Record. RFC 9460
type SVCB struct {
	Priority uint16      `json:"priority"`
	Target   string      `json:"target"`
	Params   []SVCBParam `json:"params"`
}

type SVCBParam struct {
	Key   uint16 `json:"key"`
	Value []byte `json:"value,omitempty"`
}

// HTTPS represents a HTTPS Resource Record. RFC 9460
type HTTPS struct {
	Priority      uint16   `json:"priority"`
	Target        string   `json:"target,omitempty"`
	ALPN          []string `json:"alpn,omitempty"`
	NoDefaultALPN bool     `json:"no-default-alpn,omitempty"`
	Port          uint16   `json:"port,omitempty"`
	IPv4Hint      net.IP   `json:"ipv4hint,omitempty"`
	IPv6Hint      net.IP   `json:"ipv6hint,omitempty"`
	ECH           []byte   `json:"ech,omitempty"`
}

// URI represents a URI Resource Record. RFC 7553
type URI struct {
	Priority uint16 `json:"priority"`
	Weight   uint16 `json:"weight"`
	Target   string `json:"target"`
}

// OPT is the EDNS(0) pseudo Resource Record. RFC 6891
//
// The UDP payload size travels in the RR class and the other header fields
// in the RR TTL.
type OPT struct {
	UDPPayloadSize uint16       `json:"udppayloadsize"`
	ExtendedRCode  uint8        `json:"extendedrcode"`
	Version        uint8        `json:"version"`
	Flags          uint16       `json:"flags"`
	Options        []EDNSOption `json:"options,omitempty"`
}

// EDNSOption is a single option of an OPT record.
type EDNSOption struct {
	Code uint16 `json:"code"`
	Data []byte `json:"data,omitempty"`
}

func (o OPT) class() Class {
	return Class(o.UDPPayloadSize)
}

func (o OPT) ttl() uint32 {
	return uint32(o.ExtendedRCode)<<24 | uint32(o.Version)<<16 | uint32(o.Flags)
}

// Flags returns the header flags word: QR, Opcode, AA, TC, RD, RA, AD, CD
// and RCODE.
func (m Message) Flags() uint16 {
	return uint16(m.QR&1)<<15 | uint16(m.OpCode&0xf)<<11 | uint16(m.AA&1)<<10 | uint16(m.TC&1)<<9 | uint16(m.RD&1)<<8 | uint16(m.RA&1)<<7 | uint16(m.AD&1)<<5 | uint16(m.CD&1)<<4 | uint16(m.RCode&0xf)
}

// SetFlags sets all the header bits from a flags word.
func (m *Message) SetFlags(v uint16) {
	m.QR = uint8((v & 0x8000) >> 15)
	m.OpCode = uint8((v & 0x7800) >> 11)
	m.AA = uint8((v & 0x0400) >> 10)
	m.TC = uint8((v & 0x0200) >> 9)
	m.RD = uint8((v & 0x0100) >> 8)
	m.RA = uint8((v & 0x0080) >> 7)
	m.AD = uint8((v & 0x0020) >> 5)
	m.CD = uint8((v & 0x0010) >> 4)
	m.RCode = uint8(v & 0x000f)
}

// SetEDNS0 adds an OPT record to the additional section, replacing any
// existing one. Setting do asks the server for DNSSEC records.
func (m *Message) SetEDNS0(udpSize uint16, do bool) {
	opt := OPT{UDPPayloadSize: udpSize}
	if do {
		opt.Flags |= DNSSECOK
	}
	additional := make([]RR, 0, len(m.Additional)+1)
	for _, rr := range m.Additional {
		if rr.Type != TypeOPT {
			additional = append(additional, rr)
		}
	}
	m.Additional = append(additional, RR{
		Name:  "",
		Type:  TypeOPT,
		Class: opt.class(),
		TTL:   opt.ttl(),
		Data:  opt,
	})
}

// EDNS0 returns the message's OPT record, if any.
func (m Message) EDNS0() (OPT, bool) {
	for _, rr := range m.Additional {
		if opt, ok := rr.Data.(OPT); ok && rr.Type == TypeOPT {
			return opt, true
		}
	}
	return OPT{}, false
}

// Decode decodes a DNS message.
func Decode(m []byte) (*Message, error) {
	return decoder{m}.decode()
}

type decoder struct {
	raw []byte
}

func (d decoder) decode() (*Message, error) {
	var msg Message
	s := cryptobyte.String(d.raw)
	if !s.ReadUint16(&msg.ID) {
		return nil, ErrDecodeError
	}
	var v uint16
	if !s.ReadUint16(&v) {
		return nil, ErrDecodeError
	}
	msg.SetFlags(v)

	var qdCount uint16
	if !s.ReadUint16(&qdCount) {
		return nil, ErrDecodeError
	}
	var anCount uint16
	if !s.ReadUint16(&anCount) {
		return nil, ErrDecodeError
	}
	var nsCount uint16
	if !s.ReadUint16(&nsCount) {
		return nil, ErrDecodeError
	}
	var arCount uint16
	if !s.ReadUint16(&arCount) {
		return nil, ErrDecodeError
	}
	for n := 0; n < int(qdCount); n++ {
		var question Question
		name, err := d.name(&s)
		if err != nil {
			return nil, err
		}
		question.Name = name
		if !s.ReadUint16((*uint16)(&question.Type)) {
			return nil, ErrDecodeError
		}
		if !s.ReadUint16((*uint16)(&question.Class)) {
			return nil, ErrDecodeError
		}
		msg.Question = append(msg.Question, question)
	}
	for n := 0; n < int(anCount); n++ {
		rr, err := d.rr(&s)
		if err != nil {
			return nil, err
		}
		msg.Answer = append(msg.Answer, rr)
	}
	for n := 0; n < int(nsCount); n++ {
		rr, err := d.rr(&s)
		if err != nil {
			return nil, err
		}
		msg.Authority = append(msg.Authority, rr)
	}
	for n := 0; n < int(arCount); n++ {
		rr, err := d.rr(&s)
		if err != nil {
			return nil, err
		}
		msg.Additional = append(msg.Additional, rr)
	}

	return &msg, nil
}

func (d decoder) name(s *cryptobyte.String) (string, error) {
	labels, err := d.nameLabels(s)
	if err != nil {
		return "", err
	}
	return strings.Join(labels, "."), nil
}

func (d decoder) nameLabels(s *cryptobyte.String) ([]string, error) {
	var labels []string
	for {
		for !s.Empty() && (*s)[0]&0xc0 == 0xc0 { // pointer
			current := uintptr(unsafe.Pointer(&(*s)[0]))
			var offset uint16
			if !s.ReadUint16(&offset) {
				return nil, ErrDecodeError
			}
			offset &= 0x3fff
			if int(offset) >= len(d.raw) || uintptr(unsafe.Pointer(&d.raw[offset])) >= current {
				return nil, ErrDecodeError
			}
			ss := cryptobyte.String(d.raw[offset:])
			s = &ss
		}
		var name cryptobyte.String
		if !s.ReadUint8LengthPrefixed(&name) {
			return nil, ErrDecodeError
		}
		if len(name) == 0 {
			break
		}
		labels = append(labels, string(name))
	}
	return labels, nil
}

func (d decoder) rr(s *cryptobyte.String) (RR, error) {
	var rr RR
	n, err := d.name(s)
	if err != nil {
		return rr, err
	}
	rr.Name = n
	if !s.ReadUint16((*uint16)(&rr.Type)) {
		return rr, ErrDecodeError
	}
	if !s.ReadUint16((*uint16)(&rr.Class)) {
		return rr, ErrDecodeError
	}
	if !s.ReadUint32(&rr.TTL) {
		return rr, ErrDecodeError
	}
	var data cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&data) {
		return rr, ErrDecodeError
	}
	var v any
	switch rr.Type {
	case TypeA:
		if len(data) != 4 {
			return rr, ErrDecodeError
		}
		v = net.IP(data)
	case TypeNS, TypeCNAME, TypePTR, TypeDNAME:
		v, err = d.name(&data)
	case TypeSOA:
		v, err = d.soa(&data)
	case TypeMX:
		v, err = d.mx(&data)
	case TypeTXT, TypeSPF:
		v, err = d.txt(data)
	case TypeAAAA:
		if len(data) != 16 {
			return rr, ErrDecodeError
		}
		v = net.IP(data)
	case TypeLOC:
		v, err = d.loc(data)
	case TypeSRV:
		v, err = d.srv(data)
	case TypeCERT:
		v, err = d.cert(data)
	case TypeOPT:
		v, err = d.opt(rr, data)
	case TypeDS, TypeCDS:
		v, err = d.ds(data)
	case TypeSSHFP:
		v, err = d.sshfp(data)
	case TypeRRSIG:
		v, err = d.rrsig(data)
	case TypeNSEC:
		v, err = d.nsec(data)
	case TypeDNSKEY, TypeCDNSKEY:
		v, err = d.dnskey(data)
	case TypeNSEC3:
		v, err = d.nsec3(data)
	case TypeTLSA, TypeSMIMEA:
		v, err = d.tlsa(data)
	case TypeSVCB:
		v, err = d.svcb(data)
	case TypeHTTPS:
		v, err = d.https(data)
	case TypeURI:
		v, err = d.uri(data)
	case TypeCAA:
		v, err = d.caa(data)
	default:
		v = []byte(data)
	}
	if err != nil {
		return rr, err
	}
	rr.Data = v
	return rr, nil
}

func (d decoder) txt(s cryptobyte.String) (TXT, error) {
	result := TXT{}
	for !s.Empty() {
		var v cryptobyte.String
		if !s.ReadUint8LengthPrefixed(&v) {
			return nil, ErrDecodeError
		}
		result = append(result, string(v))
	}
	return result, nil
}

func (d decoder) mx(s *cryptobyte.String) (MX, error) {
	var result MX
	if !s.ReadUint16(&result.Preference) {
		return result, ErrDecodeError
	}
	exchange, err := d.name(s)
	if err != nil {
		return result, err
	}
	result.Exchange = exchange
	return result, nil
}

func (d decoder) soa(s *cryptobyte.String) (SOA, error) {
	var result SOA
	mName, err := d.name(s)
	if err != nil {
		return result, err
	}
	result.MName = mName
	rName, err := d.name(s)
	if err != nil {
		return result, err
	}
	result.RName = rName
	if !s.ReadUint32(&result.Serial) ||
		!s.ReadUint32(&result.Refresh) ||
		!s.ReadUint32(&result.Retry) ||
		!s.ReadUint32(&result.Expire) ||
		!s.ReadUint32(&result.Minimum) {
		return result, ErrDecodeError
	}
	return result, nil
}

func (d decoder) loc(b []byte) (LOC, error) {
	var result LOC
	s := cryptobyte.String(b)
	if !s.ReadUint8(&result.Version) {
		return result, ErrDecodeError
	}
	var p uint8
	prec := func(v uint8) float64 {
		m := float64(v & 0xf0 >> 4)
		e := int(v & 0x0f)
		return m * math.Pow10(e) / 100
	}
	if !s.ReadUint8(&p) {
		return result, ErrDecodeError
	}
	result.Size = prec(p)
	if !s.ReadUint8(&p) {
		return result, ErrDecodeError
	}
	result.HorizPre = prec(p)
	if !s.ReadUint8(&p) {
		return result, ErrDecodeError
	}
	result.VertPre = prec(p)

	var v uint32
	if !s.ReadUint32(&v) {
		return result, ErrDecodeError
	}
	result.Latitude = float64(int64(v)-0x80000000) / 3600000
	if !s.ReadUint32(&v) {
		return result, ErrDecodeError
	}
	result.Longitude = float64(int64(v)-0x80000000) / 3600000
	if !s.ReadUint32(&v) {
		return result, ErrDecodeError
	}
	result.Altitude = float64(int64(v)-10000000) / 100
	return result, nil
}

func (d decoder) srv(b []byte) (SRV, error) {
	var result SRV
	s := cryptobyte.String(b)
	if !s.ReadUint16(&result.Priority) {
		return result, ErrDecodeError
	}
	if !s.ReadUint16(&result.Weight) {
		return result, ErrDecodeError
	}
	if !s.ReadUint16(&result.Port) {
		return result, ErrDecodeError
	}
	name, err := d.name(&s)
	if err != nil {
		return result, err
	}
	result.Target = name
	return result, nil
}

func (d decoder) opt(rr RR, b []byte) (OPT, error) {
	result := OPT{
		UDPPayloadSize: uint16(rr.Class),
		ExtendedRCode:  uint8(rr.TTL >> 24),
		Version:        uint8(rr.TTL >> 16),
		Flags:          uint16(rr.TTL),
	}
	s := cryptobyte.String(b)
	for !s.Empty() {
		var o EDNSOption
		if !s.ReadUint16(&o.Code) {
			return result, ErrDecodeError
		}
		var value cryptobyte.String
		if !s.ReadUint16LengthPrefixed(&value) {
			return result, ErrDecodeError
		}
		o.Data = value
		result.Options = append(result.Options, o)
	}
	return result, nil
}

func (d decoder) svcb(b []byte) (SVCB, error) {
	var result SVCB
	s := cryptobyte.String(b)
	if !s.ReadUint16(&result.Priority) {
		return result, ErrDecodeError
	}
	name, err := d.name(&s)
	if err != nil {
		return result, err
	}
	result.Target = name
	for !s.Empty() {
		var key uint16
		if !s.ReadUint16(&key) {
			return result, ErrDecodeError
		}
		var value cryptobyte.String
		if !s.ReadUint16LengthPrefixed(&value) {
			return result, ErrDecodeError
		}
		result.Params = append(result.Params, SVCBParam{Key: key, Value: value})
	}
	return result, nil
}

func (d decoder) https(b []byte) (HTTPS, error) {
	var result HTTPS
	s := cryptobyte.String(b)
	var svcPriority uint16
	if !s.ReadUint16(&svcPriority) {
		return result, ErrDecodeError
	}
	result.Priority = svcPriority
	name, err := d.name(&s)
	if err != nil {
		return result, err
	}
	result.Target = name
	for !s.Empty() {
		var key uint16
		if !s.ReadUint16(&key) {
			return result, ErrDecodeError
		}
		var value cryptobyte.String
		if !s.ReadUint16LengthPrefixed(&value) {
			return result, ErrDecodeError
		}
		switch key {
		case 0: // mandatory keys
		case 1: // alpn
			for !value.Empty() {
				var proto cryptobyte.String
				if !value.ReadUint8LengthPrefixed(&proto) {
					return result, ErrDecodeError
				}
				result.ALPN = append(result.ALPN, string(proto))
			}
		case 2: // no-default-alpn
			result.NoDefaultALPN = true
		case 3: // port
			if !value.ReadUint16(&result.Port) {
				return result, ErrDecodeError
			}
		case 4: // ipv4hint
			result.IPv4Hint = net.IP(value)
		case 5: // ECH
			result.ECH = value
		case 6: // ipv6hint
			result.IPv6Hint = net.IP(value)
		}
	}
	return result, nil
}

func (h HTTPS) String() string {
	s := fmt.Sprintf("%d %s.", h.Priority, h.Target)
	if len(h.ALPN) > 0 {
		s += fmt.Sprintf(" alpn=%q", strings.Join(h.ALPN, ","))
	}
	if h.NoDefaultALPN {
		s += " no-default-alpn"
	}
	if h.Port > 0 {
		s += fmt.Sprintf(" port=%d", h.Port)
	}
	if len(h.IPv4Hint) > 0 {
		s += fmt.Sprintf(" ipv4hint=%s", h.IPv4Hint)
	}
	if len(h.IPv6Hint) > 0 {
		s += fmt.Sprintf(" ipv6hint=%s", h.IPv6Hint)
	}
	if len(h.ECH) > 0 {
		s += fmt.Sprintf(" ech=%q", base64.StdEncoding.EncodeToString(h.ECH))
	}
	return s
}

func (d decoder) cert(b []byte) (CERT, error) {
	var result CERT
	s := cryptobyte.String(b)
	if !s.ReadUint16(&result.Type) {
		return result, ErrDecodeError
	}
	if !s.ReadUint16(&result.KeyTag) {
		return result, ErrDecodeError
	}
	if !s.ReadUint8(&result.Algorithm) {
		return result, ErrDecodeError
	}
	result.Certificate = s
	return result, nil
}

func (d decoder) ds(b []byte) (DS, error) {
	var result DS
	s := cryptobyte.String(b)
	if !s.ReadUint16(&result.KeyTag) {
		return result, ErrDecodeError
	}
	if !s.ReadUint8(&result.Algorithm) {
		return result, ErrDecodeError
	}
	if !s.ReadUint8(&result.DigestType) {
		return result, ErrDecodeError
	}
	result.Digest = s
	return result, nil
}

func (d decoder) sshfp(b []byte) (SSHFP, error) {
	var result SSHFP
	s := cryptobyte.String(b)
	if !s.ReadUint8(&result.Algorithm) {
		return result, ErrDecodeError
	}
	if !s.ReadUint8(&result.Type) {
		return result, ErrDecodeError
	}
	result.Fingerprint = s
	return result, nil
}

func (d decoder) dnskey(b []byte) (DNSKEY, error) {
	var result DNSKEY
	s := cryptobyte.String(b)
	if !s.ReadUint16(&result.Flags) {
		return result, ErrDecodeError
	}
	if !s.ReadUint8(&result.Protocol) {
		return result, ErrDecodeError
	}
	if !s.ReadUint8(&result.Algorithm) {
		return result, ErrDecodeError
	}
	result.PublicKey = s
	return result, nil
}

func (d decoder) nsec(b []byte) (NSEC, error) {
	var result NSEC
	s := cryptobyte.String(b)
	name, err := d.name(&s)
	if err != nil {
		return result, err
	}
	result.NextDomainName = name
	result.TypeBitMaps = s
	return result, nil
}

func (d decoder) nsec3(b []byte) (NSEC3, error) {
	var result NSEC3
	s := cryptobyte.String(b)
	if !s.ReadUint8(&result.HashAlgorithm) {
		return result, ErrDecodeError
	}
	if !s.ReadUint8(&result.Flags) {
		return result, ErrDecodeError
	}
	if !s.ReadUint16(&result.Iterations) {
		return result, ErrDecodeError
	}
	if !s.ReadUint8LengthPrefixed((*cryptobyte.String)(&result.Salt)) {
		return result, ErrDecodeError
	}
	if !s.ReadUint8LengthPrefixed((*cryptobyte.String)(&result.NextHashedOwner)) {
		return result, ErrDecodeError
	}
	result.TypeBitMaps = s
	return result, nil
}

func (d decoder) tlsa(b []byte) (TLSA, error) {
	var result TLSA
	s := cryptobyte.String(b)
	if !s.ReadUint8(&result.Usage) {
		return result, ErrDecodeError
	}
	if !s.ReadUint8(&result.Selector) {
		return result, ErrDecodeError
	}
	if !s.ReadUint8(&result.MatchingType) {
		return result, ErrDecodeError
	}
	result.Certificate = s
	return result, nil
}

func (d decoder) rrsig(b []byte) (RRSIG, error) {
	var result RRSIG
	s := cryptobyte.String(b)
	if !s.ReadUint16((*uint16)(&result.TypeCovered)) {
		return result, ErrDecodeError
	}
	if !s.ReadUint8(&result.Algorithm) {
		return result, ErrDecodeError
	}
	if !s.ReadUint8(&result.Labels) {
		return result, ErrDecodeError
	}
	if !s.ReadUint32(&result.OriginalTTL) {
		return result, ErrDecodeError
	}
	if !s.ReadUint32(&result.SignatureExpiration) {
		return result, ErrDecodeError
	}
	if !s.ReadUint32(&result.SignatureInception) {
		return result, ErrDecodeError
	}
	if !s.ReadUint16(&result.KeyTag) {
		return result, ErrDecodeError
	}
	name, err := d.name(&s)
	if err != nil {
		return result, err
	}
	result.SignerName = name
	result.Signature = s
	return result, nil
}

func (d decoder) uri(b []byte) (URI, error) {
	var result URI
	s := cryptobyte.String(b)
	if !s.ReadUint16(&result.Priority) {
		return result, ErrDecodeError
	}
	if !s.ReadUint16(&result.Weight) {
		return result, ErrDecodeError
	}
	result.Target = string(s)
	return result, nil
}

func (d decoder) caa(b []byte) (CAA, error) {
	var result CAA
	s := cryptobyte.String(b)
	if !s.ReadUint8(&result.Flags) {
		return result, ErrDecodeError
	}
	var v cryptobyte.String
	if !s.ReadUint8LengthPrefixed(&v) {
		return result, ErrDecodeError
	}
	result.Tag = string(v)
	result.Value = string(s)
	return result, nil
}

// Types returns the record types listed in the NSEC type bitmap.
func (n NSEC) Types() ([]Type, error) {
	return parseTypeBitMaps(n.TypeBitMaps)
}

// Types returns the record types listed in the NSEC3 type bitmap.
func (n NSEC3) Types() ([]Type, error) {
	return parseTypeBitMaps(n.TypeBitMaps)
}

// RFC 4034, Section 4.1.2
func parseTypeBitMaps(b []byte) ([]Type, error) {
	var types []Type
	s := cryptobyte.String(b)
	for !s.Empty() {
		var window uint8
		if !s.ReadUint8(&window) {
			return nil, ErrDecodeError
		}
		var bitmap cryptobyte.String
		if !s.ReadUint8LengthPrefixed(&bitmap) || len(bitmap) == 0 || len(bitmap) > 32 {
			return nil, ErrDecodeError
		}
		for i, octet := range bitmap {
			for bit := 0; bit < 8; bit++ {
				if octet&(0x80>>bit) != 0 {
					types = append(types, Type(uint16(window)<<8|uint16(i*8+bit)))
				}
			}
		}
	}
	return types, nil
}

// TypeBitMaps encodes a list of record types as a NSEC/NSEC3 type bitmap.
func TypeBitMaps(types []Type) []byte {
	var windows [256][32]byte
	var used [256]int
	for _, t := range types {
		w, low := t>>8, t&0xff
		windows[w][low/8] |= 0x80 >> (low % 8)
		used[w] = max(used[w], int(low/8)+1)
	}
	var out []byte
	for w := range windows {
		if used[w] == 0 {
			continue
		}
		out = append(out, byte(w), byte(used[w]))
		out = append(out, windows[w][:used[w]]...)
	}
	return out
}
