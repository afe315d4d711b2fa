package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moviestack/moviestack/internal/movie/service"
	"github.com/moviestack/moviestack/pkg/errors"
	"github.com/moviestack/moviestack/pkg/logger"
	"github.com/moviestack/moviestack/pkg/model"
	"github.com/moviestack/moviestack/test/testutil"
)

// MockMovieStore is a mock for the movie store
type MockMovieStore struct {
	mock.Mock
}

func (m *MockMovieStore) Get(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Movie), args.Error(1)
}

func (m *MockMovieStore) Create(ctx context.Context, movie *model.Movie) error {
	args := m.Called(ctx, movie)
	return args.Error(0)
}

func (m *MockMovieStore) ConditionalSave(ctx context.Context, movie *model.Movie, expectedRevision int64) error {
	args := m.Called(ctx, movie, expectedRevision)
	return args.Error(0)
}

func (m *MockMovieStore) ConditionalDelete(ctx context.Context, id uuid.UUID, expectedRevision int64) error {
	args := m.Called(ctx, id, expectedRevision)
	return args.Error(0)
}

// MockLikeStore is a mock for the like store
type MockLikeStore struct {
	mock.Mock
}

func (m *MockLikeStore) Exists(ctx context.Context, movieID uuid.UUID, account string) (bool, error) {
	args := m.Called(ctx, movieID, account)
	return args.Bool(0), args.Error(1)
}

func (m *MockLikeStore) Put(ctx context.Context, movieID uuid.UUID, account string) (bool, error) {
	args := m.Called(ctx, movieID, account)
	return args.Bool(0), args.Error(1)
}

func (m *MockLikeStore) Remove(ctx context.Context, movieID uuid.UUID, account string) (bool, error) {
	args := m.Called(ctx, movieID, account)
	return args.Bool(0), args.Error(1)
}

func (m *MockLikeStore) Count(ctx context.Context, movieID uuid.UUID) (int64, error) {
	args := m.Called(ctx, movieID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLikeStore) RemoveByMovie(ctx context.Context, movieID uuid.UUID) error {
	args := m.Called(ctx, movieID)
	return args.Error(0)
}

func TestConditionalUpdateRejectsStaleRevisionWithoutWriting(t *testing.T) {
	store := new(MockMovieStore)
	guard := service.NewRevisionGuard(store, logger.NewNoop())

	movie := testutil.CreateTestMovie("Inception", "alice")
	movie.Revision = 3
	store.On("Get", mock.Anything, movie.ID).Return(movie, nil)

	_, err := guard.ConditionalUpdate(context.Background(), movie.ID, 2, func(m *model.Movie) error {
		m.Title = "X"
		return nil
	})

	assert.True(t, errors.IsConflict(err))
	store.AssertNotCalled(t, "ConditionalSave", mock.Anything, mock.Anything, mock.Anything)
}

func TestConditionalUpdateSurfacesWriteTimeConflict(t *testing.T) {
	store := new(MockMovieStore)
	guard := service.NewRevisionGuard(store, logger.NewNoop())

	movie := testutil.CreateTestMovie("Inception", "alice")
	store.On("Get", mock.Anything, movie.ID).Return(movie, nil)
	// Another writer raced between our load and our write.
	store.On("ConditionalSave", mock.Anything, mock.Anything, int64(0)).
		Return(errors.Conflict("movie revision is stale"))

	_, err := guard.ConditionalUpdate(context.Background(), movie.ID, 0, func(m *model.Movie) error {
		m.Title = "X"
		return nil
	})

	assert.True(t, errors.IsConflict(err))
	// The guard itself never retries.
	store.AssertNumberOfCalls(t, "ConditionalSave", 1)
}

func TestConditionalUpdateMutatorErrorSkipsWrite(t *testing.T) {
	store := new(MockMovieStore)
	guard := service.NewRevisionGuard(store, logger.NewNoop())

	movie := testutil.CreateTestMovie("Inception", "alice")
	store.On("Get", mock.Anything, movie.ID).Return(movie, nil)

	_, err := guard.ConditionalUpdate(context.Background(), movie.ID, 0, func(m *model.Movie) error {
		return errors.Validation("movie creator is immutable")
	})

	assert.True(t, errors.IsValidation(err))
	store.AssertNotCalled(t, "ConditionalSave", mock.Anything, mock.Anything, mock.Anything)
}

func TestConditionalDeleteRejectsStaleRevision(t *testing.T) {
	store := new(MockMovieStore)
	guard := service.NewRevisionGuard(store, logger.NewNoop())

	movie := testutil.CreateTestMovie("Inception", "alice")
	movie.Revision = 5
	store.On("Get", mock.Anything, movie.ID).Return(movie, nil)

	err := guard.ConditionalDelete(context.Background(), movie.ID, 4)

	assert.True(t, errors.IsConflict(err))
	store.AssertNotCalled(t, "ConditionalDelete", mock.Anything, mock.Anything, mock.Anything)
}

func TestLikeRetriesOnceWithFreshRevision(t *testing.T) {
	store := new(MockMovieStore)
	likes := new(MockLikeStore)
	log := logger.NewNoop()
	ledger := service.NewLikeLedger(store, likes, service.NewRevisionGuard(store, log), log)

	movie := testutil.CreateTestMovie("Inception", "alice")
	fresh := *movie
	fresh.Revision = 1

	// First observation sees revision 0, loses the race; the retry
	// observes revision 1 and succeeds.
	store.On("Get", mock.Anything, movie.ID).Return(movie, nil).Twice()
	store.On("Get", mock.Anything, movie.ID).Return(&fresh, nil)
	likes.On("Put", mock.Anything, movie.ID, "bob").Return(true, nil)
	store.On("ConditionalSave", mock.Anything, mock.Anything, int64(0)).
		Return(errors.Conflict("movie revision is stale")).Once()
	store.On("ConditionalSave", mock.Anything, mock.Anything, int64(1)).Return(nil).Once()

	updated, err := ledger.Like(context.Background(), movie.ID, "bob")

	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.LikeCount)
	assert.Equal(t, int64(2), updated.Revision)
	store.AssertExpectations(t)
}

func TestLikeSurfacesSecondConflictAndUndoesRelation(t *testing.T) {
	store := new(MockMovieStore)
	likes := new(MockLikeStore)
	log := logger.NewNoop()
	ledger := service.NewLikeLedger(store, likes, service.NewRevisionGuard(store, log), log)

	movie := testutil.CreateTestMovie("Inception", "alice")
	store.On("Get", mock.Anything, movie.ID).Return(movie, nil)
	likes.On("Put", mock.Anything, movie.ID, "bob").Return(true, nil)
	// Every write loses the race, whatever revision was observed.
	store.On("ConditionalSave", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.Conflict("movie revision is stale"))
	likes.On("Remove", mock.Anything, movie.ID, "bob").Return(true, nil)

	_, err := ledger.Like(context.Background(), movie.ID, "bob")

	assert.True(t, errors.IsConflict(err))
	// Exactly one retry, then the relation is taken back.
	store.AssertNumberOfCalls(t, "ConditionalSave", 2)
	likes.AssertCalled(t, "Remove", mock.Anything, movie.ID, "bob")
}

func TestLikeExistingRelationSkipsCounter(t *testing.T) {
	store := new(MockMovieStore)
	likes := new(MockLikeStore)
	log := logger.NewNoop()
	ledger := service.NewLikeLedger(store, likes, service.NewRevisionGuard(store, log), log)

	movie := testutil.CreateTestMovie("Inception", "alice")
	movie.LikeCount = 1
	store.On("Get", mock.Anything, movie.ID).Return(movie, nil)
	likes.On("Put", mock.Anything, movie.ID, "bob").Return(false, nil)

	updated, err := ledger.Like(context.Background(), movie.ID, "bob")

	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.LikeCount)
	store.AssertNotCalled(t, "ConditionalSave", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnlikeAbsentRelationSkipsCounter(t *testing.T) {
	store := new(MockMovieStore)
	likes := new(MockLikeStore)
	log := logger.NewNoop()
	ledger := service.NewLikeLedger(store, likes, service.NewRevisionGuard(store, log), log)

	movie := testutil.CreateTestMovie("Inception", "alice")
	store.On("Get", mock.Anything, movie.ID).Return(movie, nil)
	likes.On("Remove", mock.Anything, movie.ID, "bob").Return(false, nil)

	updated, err := ledger.Unlike(context.Background(), movie.ID, "bob")

	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.LikeCount)
	store.AssertNotCalled(t, "ConditionalSave", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnlikeFloorsCounterAtZero(t *testing.T) {
	store := new(MockMovieStore)
	likes := new(MockLikeStore)
	log := logger.NewNoop()
	ledger := service.NewLikeLedger(store, likes, service.NewRevisionGuard(store, log), log)

	// A drifted counter must not go negative.
	movie := testutil.CreateTestMovie("Inception", "alice")
	movie.LikeCount = 0
	store.On("Get", mock.Anything, movie.ID).Return(movie, nil)
	likes.On("Remove", mock.Anything, movie.ID, "bob").Return(true, nil)
	store.On("ConditionalSave", mock.Anything, mock.MatchedBy(func(m *model.Movie) bool {
		return m.LikeCount == 0
	}), int64(0)).Return(nil)

	updated, err := ledger.Unlike(context.Background(), movie.ID, "bob")

	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.LikeCount)
}
