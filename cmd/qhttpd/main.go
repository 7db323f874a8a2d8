// Command qhttpd is a minimal demo server built on package server: it
// wires a handful of hardcoded routes the way the original source's
// main() does (see DESIGN.md), without pulling in a routing framework
// the spec never calls for.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"

	"github.com/tveon/qhttp/internal/metrics"
	"github.com/tveon/qhttp/ioqueue"
	"github.com/tveon/qhttp/server"
	"github.com/tveon/qhttp/wire"
)

// flag is used for CLI parsing rather than a third-party library: none
// of the example repositories import one (see DESIGN.md).
func main() {
	cfg := server.DefaultConfig()

	flag.StringVar(&cfg.ListenAddress, "listen-address", cfg.ListenAddress, "address to listen on")
	flag.IntVar(&cfg.ListenPort, "listen-port", cfg.ListenPort, "port to listen on")
	flag.IntVar(&cfg.ListenBacklog, "listen-backlog", cfg.ListenBacklog, "listen backlog")
	flag.IntVar(&cfg.MaxRequestHeaderSize, "max-request-header-size", cfg.MaxRequestHeaderSize, "max request header size in bytes")
	flag.IntVar(&cfg.MaxRequestBodySize, "max-request-body-size", cfg.MaxRequestBodySize, "max request body size in bytes")
	flag.IntVar(&cfg.MaxURLLength, "max-url-length", cfg.MaxURLLength, "max request-target length in bytes")
	flag.BoolVar(&cfg.AccessLog, "access-log", cfg.AccessLog, "emit one access log line per request")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	logger.Info("starting http server",
		"listen_address", cfg.ListenAddress,
		"listen_port", cfg.ListenPort,
		"listen_backlog", cfg.ListenBacklog,
		"max_request_header_size", cfg.MaxRequestHeaderSize,
		"max_request_body_size", cfg.MaxRequestBodySize,
		"max_url_length", cfg.MaxURLLength,
		"full_read_timeout", cfg.FullReadTimeout,
		"access_log", cfg.AccessLog,
	)

	addr := net.JoinHostPort(cfg.ListenAddress, strconv.Itoa(cfg.ListenPort))
	ln, err := ioqueue.ListenTCP(addr)
	if err != nil {
		logger.Error("failed to listen", "error", err)
		os.Exit(1)
	}

	srv := server.New(ln, demoHandler, cfg, nil, metrics.New(), logger)
	srv.Serve()
}

func demoHandler(r *server.Responder, req *wire.Request) {
	switch req.Target {
	case "/":
		respondText(r, "Hello!")
	case "/foo":
		respondText(r, "This is foo")
	case "/headers":
		var buf []byte
		for _, e := range req.Headers.Entries() {
			buf = append(buf, fmt.Sprintf("%q = %q\n", e.Name, e.Value)...)
		}
		respondBytes(r, wire.StatusOK, buf)
	default:
		respondBytes(r, wire.StatusNotFound, []byte("Not Found"))
	}
}

func respondText(r *server.Responder, body string) {
	respondBytes(r, wire.StatusOK, []byte(body))
}

func respondBytes(r *server.Responder, status wire.StatusCode, body []byte) {
	h := wire.NewHeaderMap()
	h.Set("Content-Length", strconv.Itoa(len(body)))
	_ = r.Respond(&wire.Response{Status: status, Headers: h, Body: body})
}
