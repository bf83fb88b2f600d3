package application

import "context"

// Worker is a background loop driving fetches on a cadence.
// Implementations must run until the context is canceled; a failing
// tick is never fatal to the loop.
type Worker interface {
	Start(ctx context.Context)
}
