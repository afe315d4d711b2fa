package domain

import (
	"github.com/google/uuid"

	"github.com/moviestack/moviestack/pkg/events"
	"github.com/moviestack/moviestack/pkg/model"
)

// Movie event types
const (
	EventMovieCreated = "movie.created"
	EventMovieUpdated = "movie.updated"
	EventMovieDeleted = "movie.deleted"
	EventMovieLiked   = "movie.liked"
	EventMovieUnliked = "movie.unliked"
)

// MovieEvent carries a snapshot of the movie after a successful mutation.
// The search index synchronizer consumes these to keep the projection in
// step with the authoritative store.
type MovieEvent struct {
	events.BaseEvent

	Movie *model.Movie `json:"movie"`
}

// MovieDeletedEvent signals that a movie was removed from the store.
type MovieDeletedEvent struct {
	events.BaseEvent

	MovieID uuid.UUID `json:"movie_id"`
}

// NewMovieCreatedEvent creates a movie created event.
func NewMovieCreatedEvent(movie *model.Movie) *MovieEvent {
	return &MovieEvent{
		BaseEvent: events.NewAggregateEvent(EventMovieCreated, movie.ID.String()),
		Movie:     movie,
	}
}

// NewMovieUpdatedEvent creates a movie updated event.
func NewMovieUpdatedEvent(movie *model.Movie) *MovieEvent {
	return &MovieEvent{
		BaseEvent: events.NewAggregateEvent(EventMovieUpdated, movie.ID.String()),
		Movie:     movie,
	}
}

// NewMovieLikedEvent creates a movie liked event.
func NewMovieLikedEvent(movie *model.Movie) *MovieEvent {
	return &MovieEvent{
		BaseEvent: events.NewAggregateEvent(EventMovieLiked, movie.ID.String()),
		Movie:     movie,
	}
}

// NewMovieUnlikedEvent creates a movie unliked event.
func NewMovieUnlikedEvent(movie *model.Movie) *MovieEvent {
	return &MovieEvent{
		BaseEvent: events.NewAggregateEvent(EventMovieUnliked, movie.ID.String()),
		Movie:     movie,
	}
}

// NewMovieDeletedEvent creates a movie deleted event.
func NewMovieDeletedEvent(id uuid.UUID) *MovieDeletedEvent {
	return &MovieDeletedEvent{
		BaseEvent: events.NewAggregateEvent(EventMovieDeleted, id.String()),
		MovieID:   id,
	}
}
