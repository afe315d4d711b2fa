package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/moviestack/moviestack/internal/movie/repository"
	"github.com/moviestack/moviestack/pkg/errors"
	"github.com/moviestack/moviestack/pkg/interfaces"
	"github.com/moviestack/moviestack/pkg/model"
)

// RevisionGuard enforces optimistic concurrency for every movie mutation.
// It wraps each write in a read-modify-conditional-write cycle: the write
// goes through only if the revision the caller observed is still current.
// The guard never retries; the caller decides whether to re-read and retry
// with the newly observed revision.
type RevisionGuard struct {
	store  repository.MovieStore
	logger interfaces.Logger
}

// NewRevisionGuard creates a new revision guard.
func NewRevisionGuard(store repository.MovieStore, logger interfaces.Logger) *RevisionGuard {
	return &RevisionGuard{
		store:  store,
		logger: logger,
	}
}

// ConditionalUpdate loads the movie, verifies the expected revision, applies
// the mutator and writes the result with the revision advanced by one. A
// stale revision, whether detected on load or by a racing writer at write
// time, fails with Conflict and leaves the record untouched.
func (g *RevisionGuard) ConditionalUpdate(
	ctx context.Context,
	id uuid.UUID,
	expectedRevision int64,
	mutate func(*model.Movie) error,
) (*model.Movie, error) {
	movie, err := g.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if movie.Revision != expectedRevision {
		return nil, errors.Conflict("movie revision is stale")
	}

	if err := mutate(movie); err != nil {
		return nil, err
	}

	movie.Revision = expectedRevision + 1
	if err := g.store.ConditionalSave(ctx, movie, expectedRevision); err != nil {
		if errors.IsConflict(err) {
			g.logger.Debug("Conditional write lost a race",
				interfaces.String("movie_id", id.String()),
				interfaces.Int64("expected_revision", expectedRevision))
		}
		return nil, err
	}

	return movie, nil
}

// ConditionalDelete removes the movie with the same pre-check semantics as
// ConditionalUpdate.
func (g *RevisionGuard) ConditionalDelete(ctx context.Context, id uuid.UUID, expectedRevision int64) error {
	movie, err := g.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if movie.Revision != expectedRevision {
		return errors.Conflict("movie revision is stale")
	}

	return g.store.ConditionalDelete(ctx, id, expectedRevision)
}
