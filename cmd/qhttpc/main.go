// Command qhttpc is a minimal demo client built on package client: it
// issues a single request and prints the response, analogous to the
// teacher's client actor but driven from argv instead of a connection
// pool (see DESIGN.md).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tveon/qhttp/client"
	"github.com/tveon/qhttp/wire"
)

func main() {
	method := flag.String("method", "GET", "HTTP method")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: qhttpc [-method METHOD] <url>")
		os.Exit(2)
	}

	m, err := wire.ParseMethod(*method)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid method:", err)
		os.Exit(2)
	}

	sess := client.NewSession(client.Options{})
	headers := wire.NewHeaderMap()

	done := make(chan struct{})
	sess.Request(context.Background(), m, flag.Arg(0), headers, nil, func(ok bool, resp *wire.Response, err error) {
		defer close(done)
		if err != nil {
			fmt.Fprintln(os.Stderr, "request failed:", err)
			os.Exit(1)
		}
		fmt.Printf("%d %s\n", resp.Status, resp.Status.ReasonPhrase())
		for _, e := range resp.Headers.Entries() {
			fmt.Printf("%s: %s\n", e.Name, e.Value)
		}
		fmt.Println()
		os.Stdout.Write(resp.Body)
	})
	<-done
}
