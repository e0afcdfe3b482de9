package ports

import (
	"context"
)

// Server defines the interface for the inbound surface that exposes the pipelines
type Server interface {
	// Start begins serving in the background
	Start() error

	// Stop shuts the server down, waiting for in-flight requests until ctx expires
	Stop(ctx context.Context) error

	// Addr returns the address the server listens on once started
	Addr() string
}
