package service

import (
	"context"
	"strings"
	"time"

	"github.com/moviestack/moviestack/internal/account/repository"
	"github.com/moviestack/moviestack/pkg/auth"
	"github.com/moviestack/moviestack/pkg/errors"
	"github.com/moviestack/moviestack/pkg/interfaces"
	"github.com/moviestack/moviestack/pkg/model"
)

const (
	accountCacheTTL   = 30 * time.Second
	minPasswordLength = 8
)

// AccountService handles account registration, authentication and lifecycle.
type AccountService struct {
	store  repository.AccountStore
	tokens *auth.JWTManager
	cache  interfaces.Cache
	logger interfaces.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(
	store repository.AccountStore,
	tokens *auth.JWTManager,
	cache interfaces.Cache,
	logger interfaces.Logger,
) *AccountService {
	return &AccountService{
		store:  store,
		tokens: tokens,
		cache:  cache,
		logger: logger,
	}
}

// GetAccount retrieves an account by username.
func (s *AccountService) GetAccount(ctx context.Context, username string) (*model.Account, error) {
	if username == "" {
		return nil, errors.Validation("username is required")
	}

	cacheKey := "account:" + username
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			if account, ok := cached.(*model.Account); ok {
				return account, nil
			}
		}
	}

	account, err := s.store.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, account, accountCacheTTL)
	}

	return account, nil
}

// Authenticate verifies credentials and issues a token pair. A missing
// account and a wrong password are indistinguishable to the caller.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*model.Account, *model.AuthTokens, error) {
	if username == "" || password == "" {
		return nil, nil, errors.Unauthorized("invalid credentials")
	}

	account, err := s.store.Get(ctx, username)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil, errors.Unauthorized("invalid credentials")
		}
		return nil, nil, err
	}

	if !account.CheckPassword(password) {
		s.logger.Warn("Failed login attempt", interfaces.String("username", username))
		return nil, nil, errors.Unauthorized("invalid credentials")
	}

	tokens, err := s.tokens.GenerateTokenPair(account)
	if err != nil {
		return nil, nil, errors.Persistence("failed to generate tokens", err)
	}

	s.logger.Info("Account authenticated", interfaces.String("username", username))
	return account, tokens, nil
}

// RefreshTokens exchanges a valid refresh token for a fresh token pair.
func (s *AccountService) RefreshTokens(ctx context.Context, refreshToken string) (*model.AuthTokens, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil || claims.TokenType != auth.TokenTypeRefresh {
		return nil, errors.Unauthorized("invalid refresh token")
	}

	account, err := s.store.Get(ctx, claims.Username)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.Unauthorized("invalid refresh token")
		}
		return nil, err
	}

	tokens, err := s.tokens.GenerateTokenPair(account)
	if err != nil {
		return nil, errors.Persistence("failed to generate tokens", err)
	}
	return tokens, nil
}

// CreateAccount registers a new account. A taken username or email address
// is a validation error rather than a conflict, matching the registration
// semantics callers expect.
func (s *AccountService) CreateAccount(ctx context.Context, username, email, password string) (*model.Account, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, errors.Validation("username is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.Validation("a valid email address is required")
	}
	if len(password) < minPasswordLength {
		return nil, errors.Validation("password must be at least 8 characters")
	}

	if _, err := s.store.Get(ctx, username); err == nil {
		return nil, errors.Validation("username is already taken")
	} else if !errors.IsNotFound(err) {
		return nil, err
	}
	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return nil, errors.Validation("email address is already registered")
	} else if !errors.IsNotFound(err) {
		return nil, err
	}

	account := &model.Account{
		Username:     username,
		EmailAddress: email,
	}
	if err := account.SetPassword(password); err != nil {
		return nil, errors.Persistence("failed to hash password", err)
	}

	if err := s.store.Create(ctx, account); err != nil {
		// A concurrent registration can still win the race past the
		// pre-checks; report it the same way.
		if errors.IsConflict(err) {
			return nil, errors.Validation("username or email address is already taken")
		}
		return nil, err
	}

	s.logger.Info("Account created", interfaces.String("username", username))
	return account, nil
}

// UpdateAccount changes an account's password. Username and email address
// are immutable once registered.
func (s *AccountService) UpdateAccount(ctx context.Context, username, newPassword string) (*model.Account, error) {
	if username == "" {
		return nil, errors.Validation("username is required")
	}
	if len(newPassword) < minPasswordLength {
		return nil, errors.Validation("password must be at least 8 characters")
	}

	account, err := s.store.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := account.SetPassword(newPassword); err != nil {
		return nil, errors.Persistence("failed to hash password", err)
	}
	if err := s.store.Update(ctx, account); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, "account:"+username)
	}

	s.logger.Info("Account password updated", interfaces.String("username", username))
	return account, nil
}

// DeleteAccount removes an account. Deleting an absent account succeeds.
func (s *AccountService) DeleteAccount(ctx context.Context, username string) error {
	if username == "" {
		return errors.Validation("username is required")
	}

	if err := s.store.Delete(ctx, username); err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return err
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, "account:"+username)
	}

	s.logger.Info("Account deleted", interfaces.String("username", username))
	return nil
}
