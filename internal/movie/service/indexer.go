package service

import (
	"context"
	"fmt"

	"github.com/moviestack/moviestack/internal/movie/domain"
	"github.com/moviestack/moviestack/internal/movie/repository"
	"github.com/moviestack/moviestack/pkg/interfaces"
)

// IndexSynchronizer mirrors successful store mutations into the search
// index. It runs off the event bus, out of band of the authoritative write:
// an index failure is logged and retried on the next event touching the same
// movie, never propagated back to the caller.
type IndexSynchronizer struct {
	index  repository.MovieIndex
	logger interfaces.Logger
}

// NewIndexSynchronizer creates a new index synchronizer.
func NewIndexSynchronizer(index repository.MovieIndex, logger interfaces.Logger) *IndexSynchronizer {
	return &IndexSynchronizer{
		index:  index,
		logger: logger,
	}
}

// Register subscribes the synchronizer to every movie event type.
func (h *IndexSynchronizer) Register(bus interfaces.EventBus) error {
	for _, eventType := range []string{
		domain.EventMovieCreated,
		domain.EventMovieUpdated,
		domain.EventMovieLiked,
		domain.EventMovieUnliked,
		domain.EventMovieDeleted,
	} {
		if err := bus.Subscribe(eventType, h); err != nil {
			return err
		}
	}
	return nil
}

// EventType identifies the handler in event bus logs.
func (h *IndexSynchronizer) EventType() string {
	return "search-index-synchronizer"
}

// Handle applies one movie event to the index.
func (h *IndexSynchronizer) Handle(ctx context.Context, event interfaces.Event) error {
	switch e := event.(type) {
	case *domain.MovieEvent:
		if err := h.index.Index(ctx, e.Movie); err != nil {
			h.logger.Error("Failed to sync movie into search index",
				interfaces.String("movie_id", e.Movie.ID.String()),
				interfaces.String("event_type", event.EventType()),
				interfaces.Error(err))
			return err
		}
	case *domain.MovieDeletedEvent:
		if err := h.index.Remove(ctx, e.MovieID); err != nil {
			h.logger.Error("Failed to remove movie from search index",
				interfaces.String("movie_id", e.MovieID.String()),
				interfaces.Error(err))
			return err
		}
	default:
		return fmt.Errorf("unexpected event type %q", event.EventType())
	}
	return nil
}
