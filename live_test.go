package doh

import (
	"flag"
	"strings"
	"testing"
	"time"
)

var live = flag.Bool("live", false, "Run the tests that use public DoH resolvers")

func TestLiveQuery(t *testing.T) {
	if !*live {
		t.Skip("use -live to run")
	}
	for _, r := range []*Resolver{CloudflareResolver(), GoogleResolver()} {
		for _, method := range []string{"GET", "POST"} {
			resp, err := r.Query(t.Context(), "example.com", "A", method)
			if err != nil {
				t.Fatalf("%s %s: %v", r.NameserverURL(), method, err)
			}
			if len(resp.Answer) == 0 {
				t.Errorf("%s %s: no answers", r.NameserverURL(), method)
			}
		}
	}
}

func TestLiveTimeout(t *testing.T) {
	if !*live {
		t.Skip("use -live to run")
	}
	_, err := SendDoHMsg(t.Context(), MakeQuery("example.org", ""), "https://1.1.1.1/dns-query", "GET", &Options{Timeout: time.Millisecond})
	if err == nil {
		t.Fatal("SendDoHMsg succeeded, want it to time out")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("err = %q, want it to match 'timed out'", err)
	}
}
