package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/moviestack/moviestack/pkg/model"
)

// MigrateAccountSchema runs auto-migrations for the account service tables.
func MigrateAccountSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Account{}); err != nil {
		return fmt.Errorf("failed to migrate account schema: %w", err)
	}
	return nil
}

// MigrateMovieSchema runs auto-migrations for the movie service tables. The
// movie index lives in its own table so the authoritative store and the
// search projection never share rows.
func MigrateMovieSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Movie{},
		&model.MovieIndexEntry{},
		&model.MovieLike{},
	); err != nil {
		return fmt.Errorf("failed to migrate movie schema: %w", err)
	}
	return nil
}
