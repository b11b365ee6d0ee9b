package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for authentication.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// VerificationPurposeSignup is the only verification purpose the backend issues.
const VerificationPurposeSignup = "signup"

// Account is the authentication record behind an Identity.
type Account struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	Salt             string     `json:"-"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewAccount returns a new Account. ID is set by the repository on create.
func NewAccount(email, passwordHash, salt string, createdAt time.Time) *Account {
	return &Account{
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

// Identity returns the public view of the account.
func (a *Account) Identity() Identity {
	return Identity{
		ID:               a.ID,
		Email:            a.Email,
		EmailConfirmed:   a.EmailConfirmedAt != nil,
		EmailConfirmedAt: a.EmailConfirmedAt,
		CreatedAt:        a.CreatedAt,
	}
}

// Identity is the authenticated actor's unique reference.
// swagger:model Identity
type Identity struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmed   bool       `json:"email_confirmed"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// AuthSession is returned by sign-up, sign-in and refresh.
// swagger:model AuthSession
type AuthSession struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	RefreshToken string    `json:"refresh_token"`
	User         Identity  `json:"user"`
}

// RefreshToken is a stored, hashed refresh token. Tokens are rotated on use.
type RefreshToken struct {
	ID        string
	AccountID string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Usable reports whether the token can still be exchanged at now.
func (t *RefreshToken) Usable(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues access tokens for an authenticated account.
type TokenIssuer interface {
	Issue(accountID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies an access token and returns the account ID.
type TokenVerifier interface {
	Verify(token string) (accountID string, err error)
}

// AccountRepository defines the interface for account storage
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	ConfirmEmail(ctx context.Context, email string, at time.Time) error
}

// RefreshTokenRepository defines the interface for refresh token storage.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *RefreshToken) error
	GetByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllForAccount(ctx context.Context, accountID string) error
}

// VerificationCodeRepository stores one-time email verification codes.
type VerificationCodeRepository interface {
	Create(ctx context.Context, email, purpose, codeHash string, expiresAt time.Time) error
	// Consume deletes a live code and returns the email it was issued for.
	Consume(ctx context.Context, purpose, codeHash string) (email string, err error)
}

// AuthService defines the authentication operations of the backend.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*AuthSession, error)
	SignIn(ctx context.Context, email, password string) (*AuthSession, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthSession, error)
	SignOut(ctx context.Context, accountID string) error
	ResendVerification(ctx context.Context, purpose, email string) error
	VerifyEmail(ctx context.Context, token string) (*Identity, error)
	GetIdentity(ctx context.Context, accountID string) (*Identity, error)
}
