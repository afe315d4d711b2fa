package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/moviestack/moviestack/internal/movie/repository"
	"github.com/moviestack/moviestack/internal/movie/service"
	"github.com/moviestack/moviestack/pkg/errors"
	"github.com/moviestack/moviestack/pkg/events"
	"github.com/moviestack/moviestack/pkg/logger"
	"github.com/moviestack/moviestack/pkg/model"
	"github.com/moviestack/moviestack/pkg/utils"
)

// MovieServiceTestSuite exercises the facade against real sqlite-backed
// stores, with the index synchronizer wired to the in-process event bus the
// way the movie binary wires it.
type MovieServiceTestSuite struct {
	suite.Suite

	ctx     context.Context
	store   *repository.GormMovieStore
	likes   *repository.GormLikeStore
	index   *repository.GormMovieIndex
	bus     *events.InMemoryEventBus
	service *service.MovieService
}

func (s *MovieServiceTestSuite) SetupTest() {
	db := repository.NewTestDB(s.T())
	log := logger.NewNoop()

	s.ctx = context.Background()
	s.store = repository.NewGormMovieStore(db)
	s.likes = repository.NewGormLikeStore(db)
	s.index = repository.NewGormMovieIndex(db)
	s.bus = events.NewInMemoryEventBus(log)

	s.Require().NoError(service.NewIndexSynchronizer(s.index, log).Register(s.bus))

	s.service = service.NewMovieService(
		s.store, s.index, s.likes, s.bus,
		utils.NewInMemoryCache(), log,
		10, 100,
	)
}

// drainEvents waits for async index synchronization to settle.
func (s *MovieServiceTestSuite) drainEvents() {
	s.Require().NoError(s.bus.Stop())
}

func (s *MovieServiceTestSuite) createMovie(title string) *model.Movie {
	movie, err := s.service.CreateMovie(s.ctx, "alice", service.MovieFields{
		Title:       title,
		Description: "A movie about " + title,
		ReleaseDate: time.Date(2010, 7, 16, 0, 0, 0, 0, time.UTC),
		Genre:       "Science Fiction",
	})
	s.Require().NoError(err)
	return movie
}

func (s *MovieServiceTestSuite) TestCreateMovieStartsAtRevisionZero() {
	movie := s.createMovie("Inception")

	s.Equal(int64(0), movie.Revision)
	s.Equal(int64(0), movie.LikeCount)
	s.NotEqual(uuid.Nil, movie.ID)

	loaded, err := s.service.GetMovie(s.ctx, movie.ID)
	s.Require().NoError(err)
	s.Equal(movie.ID, loaded.ID)
}

func (s *MovieServiceTestSuite) TestCreateMovieRequiresTitleAndCreator() {
	_, err := s.service.CreateMovie(s.ctx, "alice", service.MovieFields{})
	s.True(errors.IsValidation(err))

	_, err = s.service.CreateMovie(s.ctx, "", service.MovieFields{Title: "Inception"})
	s.True(errors.IsValidation(err))
}

func (s *MovieServiceTestSuite) TestUpdateAdvancesRevisionAndStaleWriterConflicts() {
	movie := s.createMovie("Inception")

	updated, err := s.service.UpdateMovie(s.ctx, movie.ID, 0, "", service.MovieFields{Title: "X"})
	s.Require().NoError(err)
	s.Equal(int64(1), updated.Revision)
	s.Equal("X", updated.Title)

	// A second update against the consumed revision must conflict and must
	// not mutate the record.
	_, err = s.service.UpdateMovie(s.ctx, movie.ID, 0, "", service.MovieFields{Title: "Y"})
	s.True(errors.IsConflict(err))

	current, err := s.store.Get(s.ctx, movie.ID)
	s.Require().NoError(err)
	s.Equal("X", current.Title)
	s.Equal(int64(1), current.Revision)
}

func (s *MovieServiceTestSuite) TestUpdateRejectsCreatorMutation() {
	movie := s.createMovie("Inception")

	_, err := s.service.UpdateMovie(s.ctx, movie.ID, 0, "mallory", service.MovieFields{Title: "X"})
	s.True(errors.IsValidation(err))

	current, err := s.store.Get(s.ctx, movie.ID)
	s.Require().NoError(err)
	s.Equal("alice", current.Creator)
	s.Equal(int64(0), current.Revision)
}

func (s *MovieServiceTestSuite) TestUpdateMissingMovie() {
	_, err := s.service.UpdateMovie(s.ctx, uuid.New(), 0, "", service.MovieFields{Title: "X"})
	s.True(errors.IsNotFound(err))
}

func (s *MovieServiceTestSuite) TestUpdatePreservesLikeCount() {
	movie := s.createMovie("Inception")
	s.Require().NoError(s.service.LikeMovie(s.ctx, movie.ID, "bob"))

	current, err := s.store.Get(s.ctx, movie.ID)
	s.Require().NoError(err)

	updated, err := s.service.UpdateMovie(s.ctx, movie.ID, current.Revision, "", service.MovieFields{Title: "X"})
	s.Require().NoError(err)
	s.Equal(int64(1), updated.LikeCount)
}

func (s *MovieServiceTestSuite) TestLikeIsIdempotent() {
	movie := s.createMovie("Inception")

	s.Require().NoError(s.service.LikeMovie(s.ctx, movie.ID, "alice"))

	current, err := s.store.Get(s.ctx, movie.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), current.LikeCount)

	// Liking twice changes the count by exactly one in total.
	s.Require().NoError(s.service.LikeMovie(s.ctx, movie.ID, "alice"))

	current, err = s.store.Get(s.ctx, movie.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), current.LikeCount)

	liked, err := s.service.HasLiked(s.ctx, movie.ID, "alice")
	s.Require().NoError(err)
	s.True(liked)
}

func (s *MovieServiceTestSuite) TestUnlikeIsIdempotent() {
	movie := s.createMovie("Inception")

	s.Require().NoError(s.service.LikeMovie(s.ctx, movie.ID, "alice"))
	s.Require().NoError(s.service.UnlikeMovie(s.ctx, movie.ID, "alice"))

	current, err := s.store.Get(s.ctx, movie.ID)
	s.Require().NoError(err)
	s.Equal(int64(0), current.LikeCount)

	// Unliking again is a no-op, not an error, and the count stays at zero.
	s.Require().NoError(s.service.UnlikeMovie(s.ctx, movie.ID, "alice"))

	current, err = s.store.Get(s.ctx, movie.ID)
	s.Require().NoError(err)
	s.Equal(int64(0), current.LikeCount)

	liked, err := s.service.HasLiked(s.ctx, movie.ID, "alice")
	s.Require().NoError(err)
	s.False(liked)
}

func (s *MovieServiceTestSuite) TestLikeCountTracksRelationCardinality() {
	movie := s.createMovie("Inception")
	accounts := []string{"alice", "bob", "carol"}

	for _, account := range accounts {
		s.Require().NoError(s.service.LikeMovie(s.ctx, movie.ID, account))
		s.assertNoCounterDrift(movie.ID)
	}

	s.Require().NoError(s.service.UnlikeMovie(s.ctx, movie.ID, "bob"))
	s.assertNoCounterDrift(movie.ID)

	current, err := s.store.Get(s.ctx, movie.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), current.LikeCount)
}

func (s *MovieServiceTestSuite) assertNoCounterDrift(movieID uuid.UUID) {
	s.T().Helper()

	current, err := s.store.Get(s.ctx, movieID)
	s.Require().NoError(err)
	relations, err := s.likes.Count(s.ctx, movieID)
	s.Require().NoError(err)
	s.Equal(relations, current.LikeCount, "like count must equal relation cardinality")
}

func (s *MovieServiceTestSuite) TestLikeMissingMovie() {
	err := s.service.LikeMovie(s.ctx, uuid.New(), "alice")
	s.True(errors.IsNotFound(err))
}

func (s *MovieServiceTestSuite) TestLikeScenario() {
	// create → like → like again → unlike → unlike again, checking the
	// counter after every step.
	movie := s.createMovie("Inception")
	s.Equal(int64(0), movie.Revision)
	s.Equal(int64(0), movie.LikeCount)

	steps := []struct {
		action func() error
		count  int64
	}{
		{func() error { return s.service.LikeMovie(s.ctx, movie.ID, "alice") }, 1},
		{func() error { return s.service.LikeMovie(s.ctx, movie.ID, "alice") }, 1},
		{func() error { return s.service.UnlikeMovie(s.ctx, movie.ID, "alice") }, 0},
		{func() error { return s.service.UnlikeMovie(s.ctx, movie.ID, "alice") }, 0},
	}
	for _, step := range steps {
		s.Require().NoError(step.action())
		current, err := s.store.Get(s.ctx, movie.ID)
		s.Require().NoError(err)
		s.Equal(step.count, current.LikeCount)
	}
}

func (s *MovieServiceTestSuite) TestDeleteWithStaleRevisionConflicts() {
	movie := s.createMovie("Inception")

	_, err := s.service.UpdateMovie(s.ctx, movie.ID, 0, "", service.MovieFields{Title: "X"})
	s.Require().NoError(err)

	err = s.service.DeleteMovie(s.ctx, movie.ID, 0)
	s.True(errors.IsConflict(err))

	_, err = s.store.Get(s.ctx, movie.ID)
	s.NoError(err)
}

func (s *MovieServiceTestSuite) TestDeleteRemovesStoreIndexAndLikes() {
	movie := s.createMovie("Inception")
	s.Require().NoError(s.service.LikeMovie(s.ctx, movie.ID, "bob"))
	s.drainEvents()

	current, err := s.store.Get(s.ctx, movie.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.service.DeleteMovie(s.ctx, movie.ID, current.Revision))
	s.drainEvents()

	_, err = s.store.Get(s.ctx, movie.ID)
	s.True(errors.IsNotFound(err))

	result, err := s.service.SearchMovies(s.ctx, "", 0, "", true)
	s.Require().NoError(err)
	s.Empty(result.Items)

	relations, err := s.likes.Count(s.ctx, movie.ID)
	s.Require().NoError(err)
	s.Equal(int64(0), relations)
}

func (s *MovieServiceTestSuite) TestDeleteMissingMovie() {
	err := s.service.DeleteMovie(s.ctx, uuid.New(), 0)
	s.True(errors.IsNotFound(err))
}

func (s *MovieServiceTestSuite) TestSearchFindsCreatedMovieAfterSync() {
	movie := s.createMovie("Inception")
	s.drainEvents()

	result, err := s.service.SearchMovies(s.ctx, "incep", 0, "", true)
	s.Require().NoError(err)
	s.Require().Len(result.Items, 1)
	s.Equal(movie.ID, result.Items[0].ID)
}

func (s *MovieServiceTestSuite) TestSearchReflectsUpdatesAndLikes() {
	movie := s.createMovie("Inception")
	s.Require().NoError(s.service.LikeMovie(s.ctx, movie.ID, "bob"))
	s.drainEvents()

	result, err := s.service.SearchMovies(s.ctx, "incep", 0, "", true)
	s.Require().NoError(err)
	s.Require().Len(result.Items, 1)
	s.Equal(int64(1), result.Items[0].LikeCount)
}

func (s *MovieServiceTestSuite) TestSearchDefaults() {
	s.createMovie("Beta")
	s.createMovie("Alpha")
	s.drainEvents()

	// Negative pages fall back to the first page, empty sort to title.
	result, err := s.service.SearchMovies(s.ctx, "", -3, "", true)
	s.Require().NoError(err)
	s.Require().Len(result.Items, 2)
	s.Equal(0, result.PageNumber)
	s.Equal("Alpha", result.Items[0].Title)
}

func TestMovieServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MovieServiceTestSuite))
}
