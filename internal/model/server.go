package model

import (
	"context"
	"net"
)

// SecurityLayer opens listeners for the transport servers (plain or TLS).
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is a transport server with a start/stop lifecycle. Both the gRPC and
// the HTTP API implement it.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}
