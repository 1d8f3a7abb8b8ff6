package shortener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	db "github.com/sundayezeilo/shortlinks/internal/db/sqlc"
	"github.com/sundayezeilo/shortlinks/internal/errx"
)

// querier is an internal interface that abstracts *db.Queries
type querier interface {
	CreateLink(ctx context.Context, arg db.CreateLinkParams) (db.Link, error)
	GetLinkByShortCode(ctx context.Context, shortCode string) (db.Link, error)
	GetOwnedLink(ctx context.Context, arg db.GetOwnedLinkParams) (db.Link, error)
	ListLinksByOwner(ctx context.Context, ownerID string) ([]db.Link, error)
	UpdateOwnedLink(ctx context.Context, arg db.UpdateOwnedLinkParams) (db.Link, error)
	DeleteOwnedLink(ctx context.Context, arg db.DeleteOwnedLinkParams) (int64, error)
}

type repo struct {
	q querier
}

// NewRepository creates a new Repository implementation
func NewRepository(q querier) Repository {
	return &repo{q: q}
}

func mustTime(ts pgtype.Timestamptz, field string) (time.Time, error) {
	if !ts.Valid {
		return time.Time{}, fmt.Errorf("%s unexpectedly NULL", field)
	}
	return ts.Time, nil
}

func toDomainLink(x db.Link) (Link, error) {
	createdAt, err := mustTime(x.CreatedAt, "created_at")
	if err != nil {
		return Link{}, err
	}
	updatedAt, err := mustTime(x.UpdatedAt, "updated_at")
	if err != nil {
		return Link{}, err
	}

	return Link{
		ID:          x.ID,
		OwnerID:     x.OwnerID,
		OriginalURL: x.OriginalUrl,
		ShortCode:   x.ShortCode,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func textArg(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func mapRepoError(op string, err error) error {
	if isShortCodeUniqueViolation(err) {
		return errx.E(op, errx.Conflict, err)
	}
	return errx.E(op, errx.Storage, err)
}

// scanOne converts a single-row query result, folding pgx.ErrNoRows into
// found=false.
func scanOne(op string, row db.Link, err error) (Link, bool, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return Link{}, false, nil
	}
	if err != nil {
		return Link{}, false, mapRepoError(op, err)
	}
	link, err := toDomainLink(row)
	if err != nil {
		return Link{}, false, errx.E(op, errx.Storage, err)
	}
	return link, true, nil
}

func (r *repo) Insert(ctx context.Context, link Link) (Link, error) {
	const op = "shortener.repo.Insert"

	row, err := r.q.CreateLink(ctx, db.CreateLinkParams{
		OwnerID:     link.OwnerID,
		OriginalUrl: link.OriginalURL,
		ShortCode:   link.ShortCode,
	})
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}

	created, err := toDomainLink(row)
	if err != nil {
		return Link{}, errx.E(op, errx.Storage, err)
	}
	return created, nil
}

func (r *repo) GetByCode(ctx context.Context, code string) (Link, bool, error) {
	const op = "shortener.repo.GetByCode"

	row, err := r.q.GetLinkByShortCode(ctx, code)
	return scanOne(op, row, err)
}

func (r *repo) GetOwned(ctx context.Context, id int64, ownerID string) (Link, bool, error) {
	const op = "shortener.repo.GetOwned"

	row, err := r.q.GetOwnedLink(ctx, db.GetOwnedLinkParams{
		ID:      id,
		OwnerID: ownerID,
	})
	return scanOne(op, row, err)
}

func (r *repo) ListByOwner(ctx context.Context, ownerID string) ([]Link, error) {
	const op = "shortener.repo.ListByOwner"

	rows, err := r.q.ListLinksByOwner(ctx, ownerID)
	if err != nil {
		return nil, mapRepoError(op, err)
	}

	links := make([]Link, 0, len(rows))
	for _, row := range rows {
		link, err := toDomainLink(row)
		if err != nil {
			return nil, errx.E(op, errx.Storage, err)
		}
		links = append(links, link)
	}
	return links, nil
}

func (r *repo) UpdateOwned(ctx context.Context, id int64, ownerID string, patch LinkPatch) (Link, bool, error) {
	const op = "shortener.repo.UpdateOwned"

	row, err := r.q.UpdateOwnedLink(ctx, db.UpdateOwnedLinkParams{
		OriginalUrl: textArg(patch.OriginalURL),
		ShortCode:   textArg(patch.ShortCode),
		ID:          id,
		OwnerID:     ownerID,
	})
	return scanOne(op, row, err)
}

func (r *repo) DeleteOwned(ctx context.Context, id int64, ownerID string) (bool, error) {
	const op = "shortener.repo.DeleteOwned"

	n, err := r.q.DeleteOwnedLink(ctx, db.DeleteOwnedLinkParams{
		ID:      id,
		OwnerID: ownerID,
	})
	if err != nil {
		return false, mapRepoError(op, err)
	}
	return n > 0, nil
}
