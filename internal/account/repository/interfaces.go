package repository

import (
	"context"

	"github.com/moviestack/moviestack/pkg/model"
)

// AccountStore persists registered accounts keyed by username.
type AccountStore interface {
	Get(ctx context.Context, username string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	Create(ctx context.Context, account *model.Account) error
	Update(ctx context.Context, account *model.Account) error
	Delete(ctx context.Context, username string) error
}
