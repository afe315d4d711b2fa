package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pkgerrors "github.com/moviestack/moviestack/pkg/errors"
	"github.com/moviestack/moviestack/pkg/model"
)

// sortColumns whitelists the fields a search can sort on. Unknown fields
// fall back to the title.
var sortColumns = map[string]string{
	"title":        "title",
	"release_date": "release_date",
	"like_count":   "like_count",
	"created_at":   "created_at",
}

// DefaultSortField is the sort applied when the caller does not pick one.
const DefaultSortField = "title"

// GormMovieIndex implements MovieIndex on a denormalized table. It trades
// strict consistency for query speed: readers may observe a projection that
// lags the authoritative store.
type GormMovieIndex struct {
	db *gorm.DB
}

// NewGormMovieIndex creates a new GORM movie index.
func NewGormMovieIndex(db *gorm.DB) *GormMovieIndex {
	return &GormMovieIndex{db: db}
}

// Index upserts the movie's projection into the index table. Events arrive
// out of order; the revision predicate keeps an older snapshot from
// overwriting a newer one.
func (i *GormMovieIndex) Index(ctx context.Context, movie *model.Movie) error {
	entry := movie.ToIndexEntry()
	result := i.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "description", "creator", "release_date",
				"genre", "like_count", "revision", "updated_at",
			}),
			Where: clause.Where{
				Exprs: []clause.Expression{
					gorm.Expr("excluded.revision >= movie_index.revision"),
				},
			},
		}).
		Create(entry)
	if result.Error != nil {
		return pkgerrors.Persistence("indexing movie", result.Error)
	}
	return nil
}

// Remove deletes the movie's projection. Removing an unindexed movie is not
// an error.
func (i *GormMovieIndex) Remove(ctx context.Context, id uuid.UUID) error {
	result := i.db.WithContext(ctx).Delete(&model.MovieIndexEntry{}, "id = ?", id)
	if result.Error != nil {
		return pkgerrors.Persistence("removing movie from index", result.Error)
	}
	return nil
}

// Search runs a paged free-text query against the index.
func (i *GormMovieIndex) Search(ctx context.Context, query SearchQuery) (*model.PagedResult[*model.Movie], error) {
	filter := func() *gorm.DB {
		q := i.db.WithContext(ctx).Model(&model.MovieIndexEntry{})
		if text := strings.TrimSpace(query.Text); text != "" {
			pattern := "%" + strings.ToLower(text) + "%"
			q = q.Where(
				"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(genre) LIKE ?",
				pattern, pattern, pattern,
			)
		}
		return q
	}

	var total int64
	if err := filter().Count(&total).Error; err != nil {
		return nil, pkgerrors.Persistence("counting search results", err)
	}

	column, ok := sortColumns[query.SortField]
	if !ok {
		column = sortColumns[DefaultSortField]
	}
	direction := "DESC"
	if query.Ascending {
		direction = "ASC"
	}

	var entries []*model.MovieIndexEntry
	err := filter().Order(column + " " + direction).
		Limit(query.PageSize).
		Offset(query.Page * query.PageSize).
		Find(&entries).Error
	if err != nil {
		return nil, pkgerrors.Persistence("searching movies", err)
	}

	items := make([]*model.Movie, len(entries))
	for n, entry := range entries {
		items[n] = entry.ToMovie()
	}

	return &model.PagedResult[*model.Movie]{
		Items:      items,
		TotalCount: total,
		PageNumber: query.Page,
		PageSize:   query.PageSize,
	}, nil
}
