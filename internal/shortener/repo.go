package shortener

import "context"

// Repository defines the persistence operations for Link entities.
// Every method touches at most one row, and owner-scoped methods filter on
// both id and owner so a foreign link behaves exactly like a missing one.
//
// Errors carry errx.Conflict when the short code unique constraint rejects a
// write and errx.Storage for any other fault. Missing rows are reported
// through the boolean result, never as an error.
type Repository interface {
	Insert(ctx context.Context, link Link) (Link, error)
	GetByCode(ctx context.Context, code string) (Link, bool, error)
	GetOwned(ctx context.Context, id int64, ownerID string) (Link, bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Link, error)
	UpdateOwned(ctx context.Context, id int64, ownerID string, patch LinkPatch) (Link, bool, error)
	DeleteOwned(ctx context.Context, id int64, ownerID string) (bool, error)
}
