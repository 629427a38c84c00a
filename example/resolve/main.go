package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/c2FmZQ/doh"
)

func main() {
	resolver := flag.String("resolver", "cloudflare", "One of cloudflare, google, wikimedia, or the URL of a DoH service")
	timeout := flag.Duration("timeout", doh.DefaultTimeout, "The timeout of each query")
	flag.Parse()

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

	if len(flag.Args()) != 1 {
		fmt.Fprintln(os.Stderr, "usage: resolve <name>")
		os.Exit(1)
	}
	result, err := r.Resolve(context.Background(), flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Resolve: %v\n", err)
		os.Exit(1)
	}
	for _, a := range result.A {
		fmt.Printf("    A: %s\n", a)
	}
	for _, aaaa := range result.AAAA {
		fmt.Printf(" AAAA: %s\n", aaaa)
	}
	for _, h := range result.HTTPS {
		fmt.Printf("HTTPS: %s\n", h)
	}
}
