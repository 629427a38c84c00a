package dns

import (
	"fmt"
	"math"
	"net"
	"strings"

	"golang.org/x/crypto/cryptobyte"
)

// Encode returns the wire format of msg.
func Encode(msg *Message) ([]byte, error) {
	return msg.Encode()
}

// Encode returns the wire format of the message. All four sections are
// written, without name compression.
func (m Message) Encode() ([]byte, error) {
	for i, q := range m.Question {
		if q.Type == TypeNone {
			return nil, fmt.Errorf("question %d (%s): %w", i, q.Name, ErrUnknownType)
		}
	}
	if len(m.Question) > math.MaxUint16 || len(m.Answer) > math.MaxUint16 || len(m.Authority) > math.MaxUint16 || len(m.Additional) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: too many records", ErrEncodeError)
	}
	b := cryptobyte.NewBuilder(nil)
	b.AddUint16(m.ID)
	b.AddUint16(m.Flags())
	b.AddUint16(uint16(len(m.Question)))
	b.AddUint16(uint16(len(m.Answer)))
	b.AddUint16(uint16(len(m.Authority)))
	b.AddUint16(uint16(len(m.Additional)))
	for _, q := range m.Question {
		addName(b, q.Name)
		b.AddUint16(uint16(q.Type))
		b.AddUint16(uint16(q.Class))
	}
	for _, section := range [][]RR{m.Answer, m.Authority, m.Additional} {
		for _, rr := range section {
			addRR(b, rr)
		}
	}
	out, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeError, err)
	}
	return out, nil
}

func addName(b *cryptobyte.Builder, name string) {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		b.AddUint8(0)
		return
	}
	if len(name) > 253 {
		b.SetError(fmt.Errorf("name too long: %q", name))
		return
	}
	for _, p := range strings.Split(name, ".") {
		if l := len(p); l == 0 || l > 63 {
			b.SetError(fmt.Errorf("invalid label in %q", name))
			return
		}
		b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddBytes([]byte(p))
		})
	}
	b.AddUint8(0)
}

func addRR(b *cryptobyte.Builder, rr RR) {
	class, ttl := rr.Class, rr.TTL
	if opt, ok := rr.Data.(OPT); ok {
		class, ttl = opt.class(), opt.ttl()
	}
	addName(b, rr.Name)
	b.AddUint16(uint16(rr.Type))
	b.AddUint16(uint16(class))
	b.AddUint32(ttl)
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		addData(b, rr)
	})
}

func addData(b *cryptobyte.Builder, rr RR) {
	switch v := rr.Data.(type) {
	case nil:
	case []byte:
		b.AddBytes(v)
	case net.IP:
		switch rr.Type {
		case TypeA:
			ip := v.To4()
			if ip == nil {
				b.SetError(fmt.Errorf("%s: not an IPv4 address: %s", rr.Name, v))
				return
			}
			b.AddBytes(ip)
		case TypeAAAA:
			ip := v.To16()
			if ip == nil {
				b.SetError(fmt.Errorf("%s: not an IPv6 address: %s", rr.Name, v))
				return
			}
			b.AddBytes(ip)
		default:
			b.SetError(fmt.Errorf("%s: unexpected IP address for type %s", rr.Name, rr.Type))
		}
	case string:
		addName(b, v)
	case TXT:
		for _, s := range v {
			b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
				b.AddBytes([]byte(s))
			})
		}
	case MX:
		b.AddUint16(v.Preference)
		addName(b, v.Exchange)
	case SOA:
		addName(b, v.MName)
		addName(b, v.RName)
		b.AddUint32(v.Serial)
		b.AddUint32(v.Refresh)
		b.AddUint32(v.Retry)
		b.AddUint32(v.Expire)
		b.AddUint32(v.Minimum)
	case LOC:
		b.AddUint8(v.Version)
		b.AddUint8(locPrecision(v.Size))
		b.AddUint8(locPrecision(v.HorizPre))
		b.AddUint8(locPrecision(v.VertPre))
		b.AddUint32(uint32(int64(math.Round(v.Latitude*3600000)) + 0x80000000))
		b.AddUint32(uint32(int64(math.Round(v.Longitude*3600000)) + 0x80000000))
		b.AddUint32(uint32(int64(math.Round(v.Altitude*100)) + 10000000))
	case SRV:
		b.AddUint16(v.Priority)
		b.AddUint16(v.Weight)
		b.AddUint16(v.Port)
		addName(b, v.Target)
	case CERT:
		b.AddUint16(v.Type)
		b.AddUint16(v.KeyTag)
		b.AddUint8(v.Algorithm)
		b.AddBytes(v.Certificate)
	case OPT:
		for _, o := range v.Options {
			b.AddUint16(o.Code)
			b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
				b.AddBytes(o.Data)
			})
		}
	case DS:
		b.AddUint16(v.KeyTag)
		b.AddUint8(v.Algorithm)
		b.AddUint8(v.DigestType)
		b.AddBytes(v.Digest)
	case SSHFP:
		b.AddUint8(v.Algorithm)
		b.AddUint8(v.Type)
		b.AddBytes(v.Fingerprint)
	case RRSIG:
		b.AddUint16(uint16(v.TypeCovered))
		b.AddUint8(v.Algorithm)
		b.AddUint8(v.Labels)
		b.AddUint32(v.OriginalTTL)
		b.AddUint32(v.SignatureExpiration)
		b.AddUint32(v.SignatureInception)
		b.AddUint16(v.KeyTag)
		addName(b, v.SignerName)
		b.AddBytes(v.Signature)
	case NSEC:
		addName(b, v.NextDomainName)
		b.AddBytes(v.TypeBitMaps)
	case DNSKEY:
		b.AddUint16(v.Flags)
		b.AddUint8(v.Protocol)
		b.AddUint8(v.Algorithm)
		b.AddBytes(v.PublicKey)
	case NSEC3:
		b.AddUint8(v.HashAlgorithm)
		b.AddUint8(v.Flags)
		b.AddUint16(v.Iterations)
		b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddBytes(v.Salt)
		})
		b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddBytes(v.NextHashedOwner)
		})
		b.AddBytes(v.TypeBitMaps)
	case TLSA:
		b.AddUint8(v.Usage)
		b.AddUint8(v.Selector)
		b.AddUint8(v.MatchingType)
		b.AddBytes(v.Certificate)
	case SVCB:
		b.AddUint16(v.Priority)
		addName(b, v.Target)
		for _, p := range v.Params {
			b.AddUint16(p.Key)
			b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
				b.AddBytes(p.Value)
			})
		}
	case HTTPS:
		addHTTPS(b, v)
	case URI:
		b.AddUint16(v.Priority)
		b.AddUint16(v.Weight)
		b.AddBytes([]byte(v.Target))
	case CAA:
		b.AddUint8(v.Flags)
		b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddBytes([]byte(v.Tag))
		})
		b.AddBytes([]byte(v.Value))
	default:
		b.SetError(fmt.Errorf("%s: unsupported data %T for type %s", rr.Name, rr.Data, rr.Type))
	}
}

// SvcParamKeys must appear in increasing order. RFC 9460, Section 2.2
func addHTTPS(b *cryptobyte.Builder, h HTTPS) {
	b.AddUint16(h.Priority)
	addName(b, h.Target)
	param := func(key uint16, f func(b *cryptobyte.Builder)) {
		b.AddUint16(key)
		b.AddUint16LengthPrefixed(f)
	}
	if len(h.ALPN) > 0 {
		param(1, func(b *cryptobyte.Builder) {
			for _, p := range h.ALPN {
				b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
					b.AddBytes([]byte(p))
				})
			}
		})
	}
	if h.NoDefaultALPN {
		param(2, func(*cryptobyte.Builder) {})
	}
	if h.Port > 0 {
		param(3, func(b *cryptobyte.Builder) {
			b.AddUint16(h.Port)
		})
	}
	if len(h.IPv4Hint) > 0 {
		hint := h.IPv4Hint
		if v4 := hint.To4(); v4 != nil {
			hint = v4
		}
		param(4, func(b *cryptobyte.Builder) {
			b.AddBytes(hint)
		})
	}
	if len(h.ECH) > 0 {
		param(5, func(b *cryptobyte.Builder) {
			b.AddBytes(h.ECH)
		})
	}
	if len(h.IPv6Hint) > 0 {
		param(6, func(b *cryptobyte.Builder) {
			b.AddBytes(h.IPv6Hint)
		})
	}
}

// locPrecision is the inverse of the LOC size/precision decoding: a 4-bit
// mantissa and a 4-bit power of ten, in centimeters.
func locPrecision(meters float64) uint8 {
	cm := uint64(math.Round(meters * 100))
	var e uint8
	for cm > 9 && e < 9 {
		cm /= 10
		e++
	}
	return uint8(min(cm, 9))<<4 | e
}
