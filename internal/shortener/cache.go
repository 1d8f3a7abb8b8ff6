package shortener

import "context"

// Cache is an optional read-through cache in front of LookupByCode.
// Implementations must be safe for concurrent use. Failures are logged by
// the service and never change the outcome of an operation.
type Cache interface {
	Get(ctx context.Context, code string) (Link, bool, error)
	Set(ctx context.Context, link Link) error
	Invalidate(ctx context.Context, codes ...string) error
}
