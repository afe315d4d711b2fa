package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pkgerrors "github.com/moviestack/moviestack/pkg/errors"
	"github.com/moviestack/moviestack/pkg/model"
	pkgrepo "github.com/moviestack/moviestack/pkg/repository"
)

// GormMovieStore implements MovieStore using GORM.
type GormMovieStore struct {
	db *gorm.DB
}

// NewGormMovieStore creates a new GORM movie store.
func NewGormMovieStore(db *gorm.DB) *GormMovieStore {
	return &GormMovieStore{db: db}
}

// Get retrieves a movie by ID.
func (s *GormMovieStore) Get(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	movie, err := pkgrepo.FindByID[model.Movie](ctx, s.db, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.NotFound("movie not found")
		}
		return nil, pkgerrors.Persistence("loading movie", err)
	}
	return movie, nil
}

// Create inserts a new movie record. Creation bypasses revision checking.
func (s *GormMovieStore) Create(ctx context.Context, movie *model.Movie) error {
	if err := pkgrepo.Create(ctx, s.db, movie); err != nil {
		if pkgerrors.IsConflict(err) {
			return err
		}
		return pkgerrors.Persistence("creating movie", err)
	}
	return nil
}

// ConditionalSave writes the movie only if the stored revision still equals
// expectedRevision. The predicate makes the compare-and-swap atomic at the
// database, so two racing writers cannot both succeed.
func (s *GormMovieStore) ConditionalSave(ctx context.Context, movie *model.Movie, expectedRevision int64) error {
	movie.UpdatedAt = time.Now().UTC()

	result := s.db.WithContext(ctx).
		Model(&model.Movie{}).
		Where("id = ? AND revision = ?", movie.ID, expectedRevision).
		Updates(map[string]interface{}{
			"title":        movie.Title,
			"description":  movie.Description,
			"release_date": movie.ReleaseDate,
			"genre":        movie.Genre,
			"like_count":   movie.LikeCount,
			"revision":     movie.Revision,
			"updated_at":   movie.UpdatedAt,
		})
	if result.Error != nil {
		return pkgerrors.Persistence("saving movie", result.Error)
	}
	if result.RowsAffected == 0 {
		return s.missOrConflict(ctx, movie.ID)
	}
	return nil
}

// ConditionalDelete removes the movie only if the stored revision still
// equals expectedRevision.
func (s *GormMovieStore) ConditionalDelete(ctx context.Context, id uuid.UUID, expectedRevision int64) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND revision = ?", id, expectedRevision).
		Delete(&model.Movie{})
	if result.Error != nil {
		return pkgerrors.Persistence("deleting movie", result.Error)
	}
	if result.RowsAffected == 0 {
		return s.missOrConflict(ctx, id)
	}
	return nil
}

// missOrConflict distinguishes a vanished record from a stale revision after
// a conditional write matched no rows.
func (s *GormMovieStore) missOrConflict(ctx context.Context, id uuid.UUID) error {
	var movie model.Movie
	err := s.db.WithContext(ctx).First(&movie, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.NotFound("movie not found")
	}
	if err != nil {
		return pkgerrors.Persistence("loading movie", err)
	}
	return pkgerrors.Conflict("movie revision is stale")
}

// GormLikeStore implements LikeStore using GORM.
type GormLikeStore struct {
	db *gorm.DB
}

// NewGormLikeStore creates a new GORM like store.
func NewGormLikeStore(db *gorm.DB) *GormLikeStore {
	return &GormLikeStore{db: db}
}

// Exists reports whether the account currently likes the movie.
func (s *GormLikeStore) Exists(ctx context.Context, movieID uuid.UUID, account string) (bool, error) {
	count, err := pkgrepo.CountBy[model.MovieLike](ctx, s.db, "movie_id = ? AND account = ?", movieID, account)
	if err != nil {
		return false, pkgerrors.Persistence("checking like relation", err)
	}
	return count > 0, nil
}

// Put records the like relation. It reports false without error when the
// relation already exists; the composite primary key makes this race-safe.
func (s *GormLikeStore) Put(ctx context.Context, movieID uuid.UUID, account string) (bool, error) {
	like := &model.MovieLike{
		MovieID:   movieID,
		Account:   account,
		CreatedAt: time.Now().UTC(),
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(like)
	if result.Error != nil {
		return false, pkgerrors.Persistence("recording like relation", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Remove destroys the like relation. It reports false without error when the
// relation was already absent.
func (s *GormLikeStore) Remove(ctx context.Context, movieID uuid.UUID, account string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("movie_id = ? AND account = ?", movieID, account).
		Delete(&model.MovieLike{})
	if result.Error != nil {
		return false, pkgerrors.Persistence("removing like relation", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Count returns the number of accounts currently liking the movie.
func (s *GormLikeStore) Count(ctx context.Context, movieID uuid.UUID) (int64, error) {
	count, err := pkgrepo.CountBy[model.MovieLike](ctx, s.db, "movie_id = ?", movieID)
	if err != nil {
		return 0, pkgerrors.Persistence("counting like relations", err)
	}
	return count, nil
}

// RemoveByMovie drops all like relations for a deleted movie.
func (s *GormLikeStore) RemoveByMovie(ctx context.Context, movieID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("movie_id = ?", movieID).
		Delete(&model.MovieLike{})
	if result.Error != nil {
		return pkgerrors.Persistence("removing like relations", result.Error)
	}
	return nil
}
