package h3

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"sync"
	"testing"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"

	"github.com/c2FmZQ/doh"
	"github.com/c2FmZQ/doh/dns"
	"github.com/c2FmZQ/doh/testutil"
)

func TestNewClient(t *testing.T) {
	tlsCert, err := testutil.NewCert("127.0.0.1")
	if err != nil {
		t.Fatalf("NewCert: %v", err)
	}
	rootCAs := x509.NewCertPool()
	rootCAs.AddCert(tlsCert.Leaf)

	udpln, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IP{127, 0, 0, 1}})
	if err != nil {
		t.Fatalf("net.ListenUDP: %v", err)
	}
	defer udpln.Close()

	qln, err := quic.Listen(udpln, &tls.Config{
		Certificates: []tls.Certificate{tlsCert},
		NextProtos:   []string{"h3"},
	}, nil)
	if err != nil {
		t.Fatalf("quic.Listen: %v", err)
	}
	defer qln.Close()

	var (
		mu     sync.Mutex
		protos []string
	)
	server := &http3.Server{
		Handler: testutil.DNSHandler(t, []dns.RR{{
			Name: "example.com", Type: dns.TypeA, Class: dns.ClassINET, TTL: 60,
			Data: net.IP{192, 0, 2, 1},
		}}),
	}
	go func() {
		for {
			conn, err := qln.Accept(t.Context())
			if err != nil {
				return
			}
			mu.Lock()
			protos = append(protos, conn.ConnectionState().TLS.NegotiatedProtocol)
			mu.Unlock()
			go server.ServeQUICConn(conn)
		}
	}()

	client := NewClient(&tls.Config{RootCAs: rootCAs}, nil)
	defer client.Transport.(*http3.Transport).Close()

	r, err := doh.NewResolver(fmt.Sprintf("https://%s/dns-query", udpln.LocalAddr()))
	if err != nil {
		t.Fatalf("doh.NewResolver: %v", err)
	}
	r.HTTPClient = client

	for _, method := range []string{"GET", "POST"} {
		resp, err := r.Query(t.Context(), "example.com", "A", method)
		if err != nil {
			t.Fatalf("Query(%s): %v", method, err)
		}
		if got, want := len(resp.Answer), 1; got != want {
			t.Fatalf("%s: len(Answer) = %d, want %d", method, got, want)
		}
		if got, want := resp.Answer[0].Data.(net.IP).String(), "192.0.2.1"; got != want {
			t.Errorf("%s: Answer = %s, want %s", method, got, want)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if len(protos) == 0 || protos[0] != "h3" {
		t.Errorf("NegotiatedProtocol = %v, want h3", protos)
	}
}
