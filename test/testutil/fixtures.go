package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/moviestack/moviestack/pkg/model"
)

// CreateTestMovie creates a test movie with default values.
func CreateTestMovie(title, creator string) *model.Movie {
	now := time.Now().UTC()
	return &model.Movie{
		ID:          uuid.New(),
		Title:       title,
		Description: "A movie about " + title,
		Creator:     creator,
		ReleaseDate: time.Date(2010, 7, 16, 0, 0, 0, 0, time.UTC),
		Genre:       "Science Fiction",
		LikeCount:   0,
		Revision:    0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CreateTestAccount creates a test account with a hashed default password.
func CreateTestAccount(username, email string) *model.Account {
	account := &model.Account{
		Username:     username,
		EmailAddress: email,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	_ = account.SetPassword("testpass123")
	return account
}
