// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown unifies orderly teardown across pipeline components.
type GracefulShutdown interface {
	// Shutdown stops internal services and releases resources,
	// returning an error on failure.
	Shutdown() error
}
