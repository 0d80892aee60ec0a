package transport

import (
	"context"
	"net"

	"github.com/ocf-bpm/bpm-go/pkg/observe"
	"github.com/ocf-bpm/bpm-go/pkg/resource"
)

// TransportServer represents a CoAP device server.
// Implemented by Server.
type TransportServer interface {
	// Start begins serving.
	Start(ctx context.Context) error

	// Stop stops serving.
	Stop() error

	// Addr returns the server's listen address.
	Addr() net.Addr

	// ConnectionCount returns the number of active client connections.
	ConnectionCount() int
}

// Compile-time interface satisfaction checks.
var (
	_ TransportServer  = (*Server)(nil)
	_ observe.Notifier = (*Observers)(nil)
	_ Controller       = (*resource.Controller)(nil)
	_ Renderer         = (*resource.Controller)(nil)
	_ SubscriptionSink = (*resource.Controller)(nil)
)
