package server

import "time"

// Config carries the server's recognized options (spec §6 "Server
// config (recognized options)").
type Config struct {
	ListenAddress string
	ListenPort    int
	ListenBacklog int

	MaxRequestHeaderSize int
	MaxRequestBodySize   int
	MaxURLLength         int

	FullReadTimeout time.Duration

	AccessLog bool
}

// DefaultConfig mirrors the sizes the teacher repo's own defaults use
// for header/body buffers, scaled to this core's simpler single-buffer
// model.
func DefaultConfig() Config {
	return Config{
		ListenAddress:        "0.0.0.0",
		ListenPort:           8080,
		ListenBacklog:        128,
		MaxRequestHeaderSize: 8192,
		MaxRequestBodySize:   1 << 20,
		MaxURLLength:         8192,
		FullReadTimeout:      30 * time.Second,
		AccessLog:            false,
	}
}
