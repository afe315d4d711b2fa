package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/moviestack/moviestack/internal/movie/domain"
	"github.com/moviestack/moviestack/internal/movie/repository"
	"github.com/moviestack/moviestack/pkg/errors"
	"github.com/moviestack/moviestack/pkg/interfaces"
	"github.com/moviestack/moviestack/pkg/model"
)

const movieCacheTTL = 30 * time.Second

// MovieFields carries the caller-editable business fields of a movie.
type MovieFields struct {
	Title       string
	Description string
	ReleaseDate time.Time
	Genre       string
}

// MovieService orchestrates the authoritative store, the like ledger and the
// search index. It is the only component that knows about both the store and
// the index; index writes are best-effort and never roll back the
// authoritative mutation.
type MovieService struct {
	store           repository.MovieStore
	index           repository.MovieIndex
	likes           repository.LikeStore
	guard           *RevisionGuard
	ledger          *LikeLedger
	eventBus        interfaces.EventBus
	cache           interfaces.Cache
	logger          interfaces.Logger
	defaultPageSize int
	maxPageSize     int
}

// NewMovieService creates a new movie service.
func NewMovieService(
	store repository.MovieStore,
	index repository.MovieIndex,
	likes repository.LikeStore,
	eventBus interfaces.EventBus,
	cache interfaces.Cache,
	logger interfaces.Logger,
	defaultPageSize, maxPageSize int,
) *MovieService {
	guard := NewRevisionGuard(store, logger)
	return &MovieService{
		store:           store,
		index:           index,
		likes:           likes,
		guard:           guard,
		ledger:          NewLikeLedger(store, likes, guard, logger),
		eventBus:        eventBus,
		cache:           cache,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// CreateMovie creates a new movie with a generated id, revision 0 and no
// likes, and schedules its projection into the search index.
func (s *MovieService) CreateMovie(ctx context.Context, creator string, fields MovieFields) (*model.Movie, error) {
	if strings.TrimSpace(fields.Title) == "" {
		return nil, errors.Validation("movie title is required")
	}
	if strings.TrimSpace(creator) == "" {
		return nil, errors.Validation("movie creator is required")
	}

	now := time.Now().UTC()
	movie := &model.Movie{
		ID:          uuid.New(),
		Title:       fields.Title,
		Description: fields.Description,
		Creator:     creator,
		ReleaseDate: fields.ReleaseDate,
		Genre:       fields.Genre,
		LikeCount:   0,
		Revision:    0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, movie); err != nil {
		s.logger.Error("Failed to create movie", interfaces.Error(err))
		return nil, err
	}

	s.eventBus.PublishAsync(ctx, domain.NewMovieCreatedEvent(movie))

	s.logger.Info("Movie created",
		interfaces.String("id", movie.ID.String()),
		interfaces.String("title", movie.Title),
		interfaces.String("creator", movie.Creator))

	return movie, nil
}

// GetMovie retrieves a movie from the authoritative store.
func (s *MovieService) GetMovie(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	cacheKey := "movie:" + id.String()
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != nil {
		if movie, ok := cached.(*model.Movie); ok {
			return movie, nil
		}
	}

	movie, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, cacheKey, movie, movieCacheTTL)

	return movie, nil
}

// UpdateMovie applies new business fields through the revision guard. The id
// and creator are immutable after creation; attempting to change the creator
// fails with a validation error before anything is written.
func (s *MovieService) UpdateMovie(
	ctx context.Context,
	id uuid.UUID,
	expectedRevision int64,
	creator string,
	fields MovieFields,
) (*model.Movie, error) {
	if strings.TrimSpace(fields.Title) == "" {
		return nil, errors.Validation("movie title is required")
	}

	updated, err := s.guard.ConditionalUpdate(ctx, id, expectedRevision, func(m *model.Movie) error {
		if creator != "" && creator != m.Creator {
			return errors.Validation("movie creator is immutable")
		}
		m.Title = fields.Title
		m.Description = fields.Description
		m.ReleaseDate = fields.ReleaseDate
		m.Genre = fields.Genre
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, "movie:"+id.String())
	s.eventBus.PublishAsync(ctx, domain.NewMovieUpdatedEvent(updated))

	return updated, nil
}

// DeleteMovie removes the movie through the revision guard, then clears its
// like relations and schedules removal from the index. A stale revision
// fails with Conflict so a caller can never delete a version it has not
// seen.
func (s *MovieService) DeleteMovie(ctx context.Context, id uuid.UUID, expectedRevision int64) error {
	if err := s.guard.ConditionalDelete(ctx, id, expectedRevision); err != nil {
		return err
	}

	if err := s.likes.RemoveByMovie(ctx, id); err != nil {
		s.logger.Error("Failed to clear like relations for deleted movie",
			interfaces.String("movie_id", id.String()),
			interfaces.Error(err))
	}

	s.cache.Delete(ctx, "movie:"+id.String())
	s.eventBus.PublishAsync(ctx, domain.NewMovieDeletedEvent(id))

	s.logger.Info("Movie deleted", interfaces.String("id", id.String()))

	return nil
}

// SearchMovies runs a paged free-text query against the search index, never
// the authoritative store. Page numbers below zero fall back to the first
// page and the sort field falls back to the title.
func (s *MovieService) SearchMovies(
	ctx context.Context,
	text string,
	page int,
	sortField string,
	ascending bool,
) (*model.PagedResult[*model.Movie], error) {
	if page < 0 {
		page = 0
	}
	if sortField == "" {
		sortField = repository.DefaultSortField
	}

	pageSize := s.defaultPageSize
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}

	return s.index.Search(ctx, repository.SearchQuery{
		Text:      text,
		Page:      page,
		PageSize:  pageSize,
		SortField: sortField,
		Ascending: ascending,
	})
}

// LikeMovie records a like through the ledger and re-publishes the new
// movie state for index synchronization.
func (s *MovieService) LikeMovie(ctx context.Context, movieID uuid.UUID, account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.Validation("account is required")
	}

	movie, err := s.ledger.Like(ctx, movieID, account)
	if err != nil {
		return err
	}

	s.cache.Delete(ctx, "movie:"+movieID.String())
	s.eventBus.PublishAsync(ctx, domain.NewMovieLikedEvent(movie))

	return nil
}

// UnlikeMovie removes a like through the ledger.
func (s *MovieService) UnlikeMovie(ctx context.Context, movieID uuid.UUID, account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.Validation("account is required")
	}

	movie, err := s.ledger.Unlike(ctx, movieID, account)
	if err != nil {
		return err
	}

	s.cache.Delete(ctx, "movie:"+movieID.String())
	s.eventBus.PublishAsync(ctx, domain.NewMovieUnlikedEvent(movie))

	return nil
}

// HasLiked reports whether the account currently likes the movie.
func (s *MovieService) HasLiked(ctx context.Context, movieID uuid.UUID, account string) (bool, error) {
	return s.ledger.HasLiked(ctx, movieID, account)
}
