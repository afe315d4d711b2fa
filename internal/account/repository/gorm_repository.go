package repository

import (
	"context"

	"gorm.io/gorm"

	pkgerrors "github.com/moviestack/moviestack/pkg/errors"
	"github.com/moviestack/moviestack/pkg/model"
	"github.com/moviestack/moviestack/pkg/repository"
)

// GormAccountStore implements AccountStore using GORM.
type GormAccountStore struct {
	db *gorm.DB
}

// NewGormAccountStore creates a new GORM-backed account store.
func NewGormAccountStore(db *gorm.DB) *GormAccountStore {
	return &GormAccountStore{db: db}
}

// Get retrieves an account by username.
func (s *GormAccountStore) Get(ctx context.Context, username string) (*model.Account, error) {
	account, err := repository.FindOneBy[model.Account](ctx, s.db, "username = ?", username)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.NotFound("account not found")
		}
		return nil, pkgerrors.Persistence("failed to load account", err)
	}
	return account, nil
}

// GetByEmail retrieves an account by its email address.
func (s *GormAccountStore) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	account, err := repository.FindOneBy[model.Account](ctx, s.db, "email_address = ?", email)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.NotFound("account not found")
		}
		return nil, pkgerrors.Persistence("failed to load account", err)
	}
	return account, nil
}

// Create inserts a new account. A username or email collision is reported
// as Conflict.
func (s *GormAccountStore) Create(ctx context.Context, account *model.Account) error {
	if err := repository.Create(ctx, s.db, account); err != nil {
		if pkgerrors.IsConflict(err) {
			return pkgerrors.Conflict("account already exists")
		}
		return pkgerrors.Persistence("failed to create account", err)
	}
	return nil
}

// Update saves changed account fields. Updating a missing account is NotFound.
func (s *GormAccountStore) Update(ctx context.Context, account *model.Account) error {
	result := s.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("username = ?", account.Username).
		Updates(map[string]interface{}{
			"email_address": account.EmailAddress,
			"password_hash": account.PasswordHash,
		})
	if result.Error != nil {
		return pkgerrors.Persistence("failed to update account", result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.NotFound("account not found")
	}
	return nil
}

// Delete removes an account by username. Deleting a missing account is
// NotFound so the service layer can decide whether to swallow it.
func (s *GormAccountStore) Delete(ctx context.Context, username string) error {
	err := repository.DeleteBy[model.Account](ctx, s.db, "username = ?", username)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return pkgerrors.NotFound("account not found")
		}
		return pkgerrors.Persistence("failed to delete account", err)
	}
	return nil
}
