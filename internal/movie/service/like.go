package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/moviestack/moviestack/internal/movie/repository"
	"github.com/moviestack/moviestack/pkg/errors"
	"github.com/moviestack/moviestack/pkg/interfaces"
	"github.com/moviestack/moviestack/pkg/model"
)

// LikeLedger keeps the like relation set and the denormalized LikeCount on
// the movie record mutually consistent. It is the single writer of
// LikeCount. A counter update that loses a race against an unrelated
// mutation is retried exactly once with the fresh revision; a second
// conflict is surfaced, never looped on.
type LikeLedger struct {
	store  repository.MovieStore
	likes  repository.LikeStore
	guard  *RevisionGuard
	logger interfaces.Logger
}

// NewLikeLedger creates a new like ledger.
func NewLikeLedger(
	store repository.MovieStore,
	likes repository.LikeStore,
	guard *RevisionGuard,
	logger interfaces.Logger,
) *LikeLedger {
	return &LikeLedger{
		store:  store,
		likes:  likes,
		guard:  guard,
		logger: logger,
	}
}

// Like records that the account likes the movie. Liking an already-liked
// movie is a no-op and returns the current record unchanged.
func (l *LikeLedger) Like(ctx context.Context, movieID uuid.UUID, account string) (*model.Movie, error) {
	movie, err := l.store.Get(ctx, movieID)
	if err != nil {
		return nil, err
	}

	created, err := l.likes.Put(ctx, movieID, account)
	if err != nil {
		return nil, err
	}
	if !created {
		return movie, nil
	}

	updated, err := l.adjustLikeCount(ctx, movieID, movie.Revision, 1)
	if err != nil {
		// The relation is already recorded; take it back so the counter
		// and the relation set stay in step.
		if _, removeErr := l.likes.Remove(ctx, movieID, account); removeErr != nil {
			l.logger.Error("Failed to undo like relation after counter conflict",
				interfaces.String("movie_id", movieID.String()),
				interfaces.String("account", account),
				interfaces.Error(removeErr))
		}
		return nil, err
	}

	l.logger.Info("Movie liked",
		interfaces.String("movie_id", movieID.String()),
		interfaces.String("account", account),
		interfaces.Int64("like_count", updated.LikeCount))

	return updated, nil
}

// Unlike removes the account's like from the movie. Unliking a movie the
// account does not like is a no-op.
func (l *LikeLedger) Unlike(ctx context.Context, movieID uuid.UUID, account string) (*model.Movie, error) {
	movie, err := l.store.Get(ctx, movieID)
	if err != nil {
		return nil, err
	}

	removed, err := l.likes.Remove(ctx, movieID, account)
	if err != nil {
		return nil, err
	}
	if !removed {
		return movie, nil
	}

	updated, err := l.adjustLikeCount(ctx, movieID, movie.Revision, -1)
	if err != nil {
		if _, putErr := l.likes.Put(ctx, movieID, account); putErr != nil {
			l.logger.Error("Failed to restore like relation after counter conflict",
				interfaces.String("movie_id", movieID.String()),
				interfaces.String("account", account),
				interfaces.Error(putErr))
		}
		return nil, err
	}

	l.logger.Info("Movie unliked",
		interfaces.String("movie_id", movieID.String()),
		interfaces.String("account", account),
		interfaces.Int64("like_count", updated.LikeCount))

	return updated, nil
}

// HasLiked reports whether the account currently likes the movie.
func (l *LikeLedger) HasLiked(ctx context.Context, movieID uuid.UUID, account string) (bool, error) {
	return l.likes.Exists(ctx, movieID, account)
}

// adjustLikeCount moves the counter by delta through the revision guard,
// using the revision observed at call time. One retry with the freshly
// observed revision absorbs a single unrelated concurrent update; a second
// conflict is surfaced.
func (l *LikeLedger) adjustLikeCount(
	ctx context.Context,
	movieID uuid.UUID,
	observedRevision int64,
	delta int64,
) (*model.Movie, error) {
	mutate := func(m *model.Movie) error {
		m.LikeCount += delta
		if m.LikeCount < 0 {
			m.LikeCount = 0
		}
		return nil
	}

	updated, err := l.guard.ConditionalUpdate(ctx, movieID, observedRevision, mutate)
	if err == nil || !errors.IsConflict(err) {
		return updated, err
	}

	l.logger.Debug("Retrying like counter update with fresh revision",
		interfaces.String("movie_id", movieID.String()))

	fresh, err := l.store.Get(ctx, movieID)
	if err != nil {
		return nil, err
	}
	return l.guard.ConditionalUpdate(ctx, movieID, fresh.Revision, mutate)
}
