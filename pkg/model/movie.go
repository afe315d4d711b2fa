package model

import (
	"time"

	"github.com/google/uuid"
)

// Movie is the authoritative catalog record. Revision advances by one on
// every successful mutation and is the only ordering signal for concurrent
// writers; LikeCount is a denormalized aggregate owned by the like ledger.
type Movie struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	Title       string    `gorm:"not null;index"              json:"title"`
	Description string    `                                   json:"description"`
	Creator     string    `gorm:"not null"                    json:"creator"`
	ReleaseDate time.Time `                                   json:"release_date"`
	Genre       string    `                                   json:"genre"`
	LikeCount   int64     `gorm:"not null;default:0"          json:"total_likes"`
	Revision    int64     `gorm:"not null;default:0"          json:"revision"`
	CreatedAt   time.Time `                                   json:"created_at"`
	UpdatedAt   time.Time `                                   json:"updated_at"`
}

// MovieIndexEntry is the denormalized search projection of a Movie. It is
// never authoritative and may transiently lag the movies table.
type MovieIndexEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"index"`
	Description string
	Creator     string
	ReleaseDate time.Time
	Genre       string
	LikeCount   int64
	Revision    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName keeps the index in its own table, separate from the movies table.
func (MovieIndexEntry) TableName() string {
	return "movie_index"
}

// MovieLike records that an account likes a movie. Presence is the only state.
type MovieLike struct {
	MovieID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Account   string    `gorm:"primaryKey"`
	CreatedAt time.Time
}

// ToIndexEntry projects the movie into its search-index form.
func (m *Movie) ToIndexEntry() *MovieIndexEntry {
	return &MovieIndexEntry{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Creator:     m.Creator,
		ReleaseDate: m.ReleaseDate,
		Genre:       m.Genre,
		LikeCount:   m.LikeCount,
		Revision:    m.Revision,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ToMovie converts an index entry back into the shared movie shape for
// search results.
func (e *MovieIndexEntry) ToMovie() *Movie {
	return &Movie{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Creator:     e.Creator,
		ReleaseDate: e.ReleaseDate,
		Genre:       e.Genre,
		LikeCount:   e.LikeCount,
		Revision:    e.Revision,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
