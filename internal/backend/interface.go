package backend

import (
	"context"

	"scadenze/internal/notify"
	"scadenze/internal/services"
)

// Store is the unified record-store contract a backend must provide.
type Store interface {
	services.ProfileStore
	services.BillStore
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the backend's store, its email sender and an optional
// cleanup function.
type Result struct {
	Store    Store
	Notifier notify.Sender
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// AMQP email pipeline (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Type represents the type of backend
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
