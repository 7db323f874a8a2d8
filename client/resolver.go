package client

import (
	"context"
	"net"

	"github.com/pkg/errors"
)

// Resolver performs the name resolution spec §4.4 "Resolve" describes as
// running "on the I/O queue's worker": a blocking producer whose result
// is delivered back on the session's dispatch goroutine, mirroring the
// I/O queue's async<T> primitive (spec §5).
type Resolver interface {
	Resolve(ctx context.Context, host string) ([]net.IP, error)
}

// netResolver is the default Resolver, backed by net.DefaultResolver.
type netResolver struct{}

func (netResolver) Resolve(ctx context.Context, host string) ([]net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []net.IP{ip}, nil
	}
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	ips := make([]net.IP, len(addrs))
	for i, a := range addrs {
		ips[i] = a.IP
	}
	return ips, nil
}

// ErrHostUnreachable is the failure spec §4.4 "Resolve" names for an
// empty address list.
var ErrHostUnreachable = errors.New("client: host unreachable")

// DefaultResolver is the Resolver used when a Session is not configured
// with one explicitly.
var DefaultResolver Resolver = netResolver{}
