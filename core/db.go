package core

import "context"

// Store is the lifecycle surface shared by every storage backend.
type Store interface {
	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error
	Close() error
}
