// query sends DNS-over-HTTPS queries and prints the responses.
//
//	go run ./example/query -type TLSA -pretty _443._tcp.good.dane.huque.com
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/c2FmZQ/doh"
	"github.com/c2FmZQ/doh/dns"
	"github.com/c2FmZQ/doh/h3"
)

func main() {
	resolver := flag.String("resolver", "cloudflare", "One of cloudflare, google, wikimedia, or the URL of a DoH service")
	typ := flag.String("type", "A", "The record type, e.g. A, AAAA, TXT, TLSA, HTTPS")
	method := flag.String("method", "GET", "The HTTP method, GET or POST")
	timeout := flag.Duration("timeout", doh.DefaultTimeout, "The timeout of each query")
	dnssec := flag.Bool("dnssec", false, "Set the DNSSEC OK bit")
	cd := flag.Bool("cd", false, "Set the Checking Disabled bit, i.e. ask the resolver not to validate DNSSEC")
	pretty := flag.Bool("pretty", false, "Convert binary record data to hex or base64 strings")
	format := flag.String("format", "json", "The output format, json or dig")
	parallel := flag.Int("parallel", 4, "The maximum number of concurrent queries")
	qps := flag.Float64("qps", 0, "The maximum number of queries per second, 0 for no limit")
	useH3 := flag.Bool("h3", false, "Use HTTP/3")
	verbose := flag.Bool("v", false, "Log debug messages")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: query [flags] <name>...")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if !doh.IsMethodAllowed(*method) {
		fmt.Fprintf(os.Stderr, "--method: %q not allowed, use GET or POST\n", *method)
		os.Exit(1)
	}
	if _, ok := dns.ParseType(*typ); !ok {
		fmt.Fprintf(os.Stderr, "--type: unknown record type %q\n", *typ)
		os.Exit(1)
	}
	if *format != "json" && *format != "dig" {
		fmt.Fprintf(os.Stderr, "--format: %q, want json or dig\n", *format)
		os.Exit(1)
	}

	var r *doh.Resolver
	switch *resolver {
	case "cloudflare":
		r = doh.CloudflareResolver()
	case "google":
		r = doh.GoogleResolver()
	case "wikimedia":
		r = doh.WikimediaResolver()
	default:
		var err error
		if r, err = doh.NewResolver(*resolver); err != nil {
			fmt.Fprintf(os.Stderr, "--resolver: %v\n", err)
			os.Exit(1)
		}
	}
	r.Timeout = *timeout
	r.Logger = logger
	r.UserAgent = "doh-query/1.0"
	if *useH3 {
		r.HTTPClient = h3.NewClient(nil, nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	limit := rate.Inf
	if *qps > 0 {
		limit = rate.Limit(*qps)
	}
	limiter := rate.NewLimiter(limit, 1)

	names := flag.Args()
	results := make([]*dns.Message, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*parallel, 1))
	for i, name := range names {
		g.Go(func() error {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			flags := uint16(doh.DefaultFlags)
			if *cd {
				flags |= dns.CheckingDisabled
			}
			q := doh.MakeQueryWithFlags(name, *typ, flags)
			if *dnssec {
				q.SetEDNS0(1232, true)
			}
			start := time.Now()
			resp, err := r.Exchange(ctx, q, *method)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			logger.Debug("response", "name", name, "rcode", resp.RCode, "answers", len(resp.Answer), "elapsed", time.Since(start))
			results[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("query failed", "err", err, "kind", doh.KindOf(err))
		os.Exit(1)
	}

	for _, resp := range results {
		var err error
		switch *format {
		case "dig":
			err = printDig(resp)
		default:
			err = printJSON(resp, *pretty)
		}
		if err != nil {
			logger.Error("output", "err", err)
			os.Exit(1)
		}
	}
}

func printJSON(resp *dns.Message, pretty bool) error {
	if pretty {
		resp = doh.Prettify(resp)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// printDig prints the response the way dig does.
func printDig(resp *dns.Message) error {
	b, err := dns.Encode(resp)
	if err != nil {
		return err
	}
	var m mdns.Msg
	if err := m.Unpack(b); err != nil {
		return err
	}
	fmt.Println(strings.TrimSpace(m.String()))
	fmt.Println()
	return nil
}
