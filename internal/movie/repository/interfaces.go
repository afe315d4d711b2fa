package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/moviestack/moviestack/pkg/model"
)

// MovieStore is the authoritative document store for movies. Conditional
// writes compare-and-swap on the revision column; a write against a stale
// revision fails with Conflict instead of overwriting.
type MovieStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Movie, error)
	Create(ctx context.Context, movie *model.Movie) error
	ConditionalSave(ctx context.Context, movie *model.Movie, expectedRevision int64) error
	ConditionalDelete(ctx context.Context, id uuid.UUID, expectedRevision int64) error
}

// SearchQuery carries the parameters of a paged free-text search.
type SearchQuery struct {
	Text      string
	Page      int
	PageSize  int
	SortField string
	Ascending bool
}

// MovieIndex is the denormalized, eventually consistent search projection.
// Index writes are best-effort relative to the authoritative store.
type MovieIndex interface {
	Index(ctx context.Context, movie *model.Movie) error
	Remove(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query SearchQuery) (*model.PagedResult[*model.Movie], error)
}

// LikeStore persists the like relation set. Put and Remove are idempotent
// and report whether they changed anything, so the like ledger can keep the
// denormalized counter in step with the relation cardinality.
type LikeStore interface {
	Exists(ctx context.Context, movieID uuid.UUID, account string) (bool, error)
	Put(ctx context.Context, movieID uuid.UUID, account string) (bool, error)
	Remove(ctx context.Context, movieID uuid.UUID, account string) (bool, error)
	Count(ctx context.Context, movieID uuid.UUID) (int64, error)
	RemoveByMovie(ctx context.Context, movieID uuid.UUID) error
}
