package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"eventboard/internal/domain"
)

const (
	// MinPasswordLen matches the client-side registration check.
	MinPasswordLen  = 6
	tokenBytes      = 32
	tokenTypeBearer = "Bearer"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthConfig holds token lifetimes and verification settings.
type AuthConfig struct {
	AccessTokenExpiry        time.Duration
	RefreshTokenExpiry       time.Duration
	VerificationExpiry       time.Duration
	RequireEmailConfirmation bool
	// VerifyURL is the absolute URL of the email confirmation endpoint.
	VerifyURL string
}

type authService struct {
	accounts      domain.AccountRepository
	refreshTokens domain.RefreshTokenRepository
	codes         domain.VerificationCodeRepository
	hasher        domain.PasswordHasher
	issuer        domain.TokenIssuer
	emailService  domain.EmailService
	cfg           AuthConfig
	logger        *slog.Logger
	now           func() time.Time
}

// NewAuthService creates an AuthService with the given repositories and auth ports.
func NewAuthService(
	accounts domain.AccountRepository,
	refreshTokens domain.RefreshTokenRepository,
	codes domain.VerificationCodeRepository,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
	emailService domain.EmailService,
	cfg AuthConfig,
	logger *slog.Logger,
) domain.AuthService {
	if cfg.VerificationExpiry == 0 {
		cfg.VerificationExpiry = 24 * time.Hour
	}
	return &authService{
		accounts:      accounts,
		refreshTokens: refreshTokens,
		codes:         codes,
		hasher:        hasher,
		issuer:        issuer,
		emailService:  emailService,
		cfg:           cfg,
		logger:        logger,
		now:           time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (s *authService) SignUp(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	email = normalizeEmail(email)
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if len(password) < MinPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, MinPasswordLen)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, err
	}
	account := domain.NewAccount(email, hash, salt, s.now())
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	// The account exists at this point; a failed email is recoverable through resend.
	if err := s.sendVerification(ctx, email); err != nil {
		s.logger.WarnContext(ctx, "verification email failed", "email", email, "err", err)
	}
	return s.issueSession(ctx, account)
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if err := s.hasher.Compare(account.PasswordHash, account.Salt, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if s.cfg.RequireEmailConfirmation && account.EmailConfirmedAt == nil {
		return nil, domain.ErrEmailNotConfirmed
	}
	return s.issueSession(ctx, account)
}

// Refresh rotates the refresh token: the presented token is revoked and a new pair is issued.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.AuthSession, error) {
	if refreshToken == "" {
		return nil, domain.ErrInvalidToken
	}
	stored, err := s.refreshTokens.GetByHash(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	if !stored.Usable(s.now()) {
		return nil, domain.ErrInvalidToken
	}
	if err := s.refreshTokens.Revoke(ctx, stored.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	account, err := s.accounts.GetByID(ctx, stored.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return s.issueSession(ctx, account)
}

func (s *authService) SignOut(ctx context.Context, accountID string) error {
	if err := s.refreshTokens.RevokeAllForAccount(ctx, accountID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

// ResendVerification does not reveal whether the email is registered.
func (s *authService) ResendVerification(ctx context.Context, purpose, email string) error {
	if purpose != domain.VerificationPurposeSignup {
		return fmt.Errorf("%w: unsupported verification type %q", domain.ErrInvalidInput, purpose)
	}
	email = normalizeEmail(email)
	if !emailRegexp.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get account: %w", err)
	}
	if account.EmailConfirmedAt != nil {
		return nil
	}
	return s.sendVerification(ctx, email)
}

func (s *authService) VerifyEmail(ctx context.Context, token string) (*domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrInvalidToken
	}
	email, err := s.codes.Consume(ctx, domain.VerificationPurposeSignup, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to verify code: %w", err)
	}
	if err := s.accounts.ConfirmEmail(ctx, email, s.now()); err != nil {
		return nil, fmt.Errorf("failed to confirm email: %w", err)
	}
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	id := account.Identity()
	return &id, nil
}

func (s *authService) GetIdentity(ctx context.Context, accountID string) (*domain.Identity, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	id := account.Identity()
	return &id, nil
}

func (s *authService) issueSession(ctx context.Context, account *domain.Account) (*domain.AuthSession, error) {
	now := s.now()
	access, err := s.issuer.Issue(account.ID, account.Email, s.cfg.AccessTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	refresh, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	stored := &domain.RefreshToken{
		AccountID: account.ID,
		TokenHash: hashToken(refresh),
		ExpiresAt: now.Add(s.cfg.RefreshTokenExpiry),
		CreatedAt: now,
	}
	if err := s.refreshTokens.Create(ctx, stored); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return &domain.AuthSession{
		AccessToken:  access,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int64(s.cfg.AccessTokenExpiry / time.Second),
		ExpiresAt:    now.Add(s.cfg.AccessTokenExpiry),
		RefreshToken: refresh,
		User:         account.Identity(),
	}, nil
}

func (s *authService) sendVerification(ctx context.Context, email string) error {
	token, err := generateToken()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	expiresAt := s.now().Add(s.cfg.VerificationExpiry)
	if err := s.codes.Create(ctx, email, domain.VerificationPurposeSignup, hashToken(token), expiresAt); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	if s.emailService == nil {
		return nil
	}
	data := &domain.VerificationEmailData{
		Email:            email,
		Link:             s.cfg.VerifyURL + "?token=" + url.QueryEscape(token),
		ExpiresInMinutes: int(s.cfg.VerificationExpiry / time.Minute),
	}
	return s.emailService.SendVerification(ctx, data)
}

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
