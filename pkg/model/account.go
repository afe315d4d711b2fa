package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Account represents a registered user. The username is the record key; the
// bcrypt hash embeds its per-account salt.
type Account struct {
	Username     string    `gorm:"primaryKey"           json:"username"`
	EmailAddress string    `gorm:"uniqueIndex;not null" json:"email_address"`
	PasswordHash string    `gorm:"not null"             json:"-"`
	CreatedAt    time.Time `                            json:"created_at"`
	UpdatedAt    time.Time `                            json:"updated_at"`
}

// SetPassword hashes and sets the account's password
func (a *Account) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies the account's password
func (a *Account) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
	return err == nil
}

// AuthTokens represents a pair of access and refresh tokens
type AuthTokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}
