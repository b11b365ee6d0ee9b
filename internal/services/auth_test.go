package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"eventboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAccountRepo is an in-memory AccountRepository for tests.
type fakeAccountRepo struct {
	byEmail map[string]*domain.Account
	nextID  int
	getErr  error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byEmail: make(map[string]*domain.Account), nextID: 1}
}

func (f *fakeAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	if _, ok := f.byEmail[a.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	a.ID = fmt.Sprintf("acc-%d", f.nextID)
	f.nextID++
	f.byEmail[a.Email] = a
	return nil
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if a, ok := f.byEmail[email]; ok {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, a := range f.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAccountRepo) ConfirmEmail(ctx context.Context, email string, at time.Time) error {
	a, ok := f.byEmail[email]
	if !ok {
		return domain.ErrNotFound
	}
	a.EmailConfirmedAt = &at
	return nil
}

// fakeRefreshTokenRepo keys tokens by hash.
type fakeRefreshTokenRepo struct {
	byHash map[string]*domain.RefreshToken
	nextID int
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{byHash: make(map[string]*domain.RefreshToken), nextID: 1}
}

func (f *fakeRefreshTokenRepo) Create(ctx context.Context, t *domain.RefreshToken) error {
	t.ID = fmt.Sprintf("rt-%d", f.nextID)
	f.nextID++
	f.byHash[t.TokenHash] = t
	return nil
}

func (f *fakeRefreshTokenRepo) GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	if t, ok := f.byHash[hash]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRefreshTokenRepo) Revoke(ctx context.Context, id string) error {
	for _, t := range f.byHash {
		if t.ID == id && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeRefreshTokenRepo) RevokeAllForAccount(ctx context.Context, accountID string) error {
	now := time.Now()
	for _, t := range f.byHash {
		if t.AccountID == accountID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

type fakeCode struct {
	email     string
	purpose   string
	expiresAt time.Time
}

// fakeCodeRepo stores verification codes by hash.
type fakeCodeRepo struct {
	byHash map[string]fakeCode
	now    func() time.Time
}

func newFakeCodeRepo(now func() time.Time) *fakeCodeRepo {
	return &fakeCodeRepo{byHash: make(map[string]fakeCode), now: now}
}

func (f *fakeCodeRepo) Create(ctx context.Context, email, purpose, codeHash string, expiresAt time.Time) error {
	f.byHash[codeHash] = fakeCode{email: email, purpose: purpose, expiresAt: expiresAt}
	return nil
}

func (f *fakeCodeRepo) Consume(ctx context.Context, purpose, codeHash string) (string, error) {
	c, ok := f.byHash[codeHash]
	if !ok || c.purpose != purpose || !f.now().Before(c.expiresAt) {
		return "", domain.ErrNotFound
	}
	delete(f.byHash, codeHash)
	return c.email, nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct{}

func (fakePasswordHasher) GenerateSalt() (string, error) { return "salt", nil }
func (fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + salt + "-" + password, nil
}
func (fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash-"+salt+"-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(accountID, email string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "access-" + accountID, nil
}

// fakeEmailService records the verification links it was asked to send.
type fakeEmailService struct {
	sent []*domain.VerificationEmailData
	err  error
}

func (f *fakeEmailService) SendVerification(ctx context.Context, data *domain.VerificationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

func (f *fakeEmailService) lastToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	_, token, ok := strings.Cut(f.sent[len(f.sent)-1].Link, "?token=")
	require.True(t, ok)
	return token
}

type authFixture struct {
	svc      *authService
	accounts *fakeAccountRepo
	tokens   *fakeRefreshTokenRepo
	codes    *fakeCodeRepo
	mail     *fakeEmailService
	now      time.Time
}

func newAuthFixture(requireConfirmation bool) *authFixture {
	fx := &authFixture{
		accounts: newFakeAccountRepo(),
		tokens:   newFakeRefreshTokenRepo(),
		mail:     &fakeEmailService{},
		now:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return fx.now }
	fx.codes = newFakeCodeRepo(clock)
	svc := NewAuthService(fx.accounts, fx.tokens, fx.codes, fakePasswordHasher{}, &fakeTokenIssuer{}, fx.mail,
		AuthConfig{
			AccessTokenExpiry:        time.Hour,
			RefreshTokenExpiry:       24 * time.Hour,
			VerificationExpiry:       time.Hour,
			RequireEmailConfirmation: requireConfirmation,
			VerifyURL:                "http://localhost:8080/auth/verify",
		},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	).(*authService)
	svc.now = clock
	fx.svc = svc
	return fx
}

func TestAuthService_SignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account, sends verification and returns session", func(t *testing.T) {
		fx := newAuthFixture(true)
		sess, err := fx.svc.SignUp(ctx, "  Ana@Example.com ", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", sess.User.Email)
		assert.False(t, sess.User.EmailConfirmed)
		assert.Equal(t, "access-acc-1", sess.AccessToken)
		assert.Equal(t, "Bearer", sess.TokenType)
		assert.Equal(t, int64(3600), sess.ExpiresIn)
		assert.Equal(t, fx.now.Add(time.Hour), sess.ExpiresAt)
		assert.NotEmpty(t, sess.RefreshToken)

		require.Len(t, fx.mail.sent, 1)
		assert.Equal(t, "ana@example.com", fx.mail.sent[0].Email)
		assert.True(t, strings.HasPrefix(fx.mail.sent[0].Link, "http://localhost:8080/auth/verify?token="))
		assert.Equal(t, 60, fx.mail.sent[0].ExpiresInMinutes)
	})

	t.Run("duplicate email", func(t *testing.T) {
		fx := newAuthFixture(true)
		_, err := fx.svc.SignUp(ctx, "ana@example.com", "secret1")
		require.NoError(t, err)
		_, err = fx.svc.SignUp(ctx, "ANA@example.com", "secret2")
		require.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})

	t.Run("email failure does not fail sign-up", func(t *testing.T) {
		fx := newAuthFixture(true)
		fx.mail.err = errors.New("ses down")
		sess, err := fx.svc.SignUp(ctx, "ana@example.com", "secret1")
		require.NoError(t, err)
		assert.NotNil(t, sess)
	})

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"invalid email", "not-an-email", "secret1"},
		{"short password", "ana@example.com", "12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newAuthFixture(true)
			_, err := fx.svc.SignUp(ctx, tt.email, tt.password)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, fx.accounts.byEmail)
		})
	}
}

func TestAuthService_SignIn(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name                string
		requireConfirmation bool
		confirm             bool
		email               string
		password            string
		wantErr             error
	}{
		{name: "confirmed account", requireConfirmation: true, confirm: true, email: "ana@example.com", password: "secret1"},
		{name: "unconfirmed account blocked", requireConfirmation: true, email: "ana@example.com", password: "secret1", wantErr: domain.ErrEmailNotConfirmed},
		{name: "unconfirmed account allowed", requireConfirmation: false, email: "ana@example.com", password: "secret1"},
		{name: "wrong password", requireConfirmation: true, confirm: true, email: "ana@example.com", password: "nope!!", wantErr: domain.ErrInvalidCredentials},
		{name: "unknown email", requireConfirmation: true, email: "bob@example.com", password: "secret1", wantErr: domain.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newAuthFixture(tt.requireConfirmation)
			_, err := fx.svc.SignUp(ctx, "ana@example.com", "secret1")
			require.NoError(t, err)
			if tt.confirm {
				require.NoError(t, fx.accounts.ConfirmEmail(ctx, "ana@example.com", fx.now))
			}

			sess, err := fx.svc.SignIn(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "acc-1", sess.User.ID)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the refresh token", func(t *testing.T) {
		fx := newAuthFixture(false)
		first, err := fx.svc.SignUp(ctx, "ana@example.com", "secret1")
		require.NoError(t, err)

		second, err := fx.svc.Refresh(ctx, first.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
		assert.Equal(t, first.User.ID, second.User.ID)

		_, err = fx.svc.Refresh(ctx, first.RefreshToken)
		require.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		fx := newAuthFixture(false)
		sess, err := fx.svc.SignUp(ctx, "ana@example.com", "secret1")
		require.NoError(t, err)
		fx.now = fx.now.Add(25 * time.Hour)

		_, err = fx.svc.Refresh(ctx, sess.RefreshToken)
		require.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("unknown or empty token", func(t *testing.T) {
		fx := newAuthFixture(false)
		_, err := fx.svc.Refresh(ctx, "")
		require.ErrorIs(t, err, domain.ErrInvalidToken)
		_, err = fx.svc.Refresh(ctx, "garbage")
		require.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("sign out revokes all tokens", func(t *testing.T) {
		fx := newAuthFixture(false)
		sess, err := fx.svc.SignUp(ctx, "ana@example.com", "secret1")
		require.NoError(t, err)
		require.NoError(t, fx.svc.SignOut(ctx, sess.User.ID))

		_, err = fx.svc.Refresh(ctx, sess.RefreshToken)
		require.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}

func TestAuthService_VerifyEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms and then allows sign-in", func(t *testing.T) {
		fx := newAuthFixture(true)
		_, err := fx.svc.SignUp(ctx, "ana@example.com", "secret1")
		require.NoError(t, err)

		id, err := fx.svc.VerifyEmail(ctx, fx.mail.lastToken(t))
		require.NoError(t, err)
		assert.True(t, id.EmailConfirmed)

		_, err = fx.svc.SignIn(ctx, "ana@example.com", "secret1")
		require.NoError(t, err)
	})

	t.Run("token is single use", func(t *testing.T) {
		fx := newAuthFixture(true)
		_, err := fx.svc.SignUp(ctx, "ana@example.com", "secret1")
		require.NoError(t, err)
		token := fx.mail.lastToken(t)

		_, err = fx.svc.VerifyEmail(ctx, token)
		require.NoError(t, err)
		_, err = fx.svc.VerifyEmail(ctx, token)
		require.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		fx := newAuthFixture(true)
		_, err := fx.svc.SignUp(ctx, "ana@example.com", "secret1")
		require.NoError(t, err)
		fx.now = fx.now.Add(2 * time.Hour)

		_, err = fx.svc.VerifyEmail(ctx, fx.mail.lastToken(t))
		require.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}

func TestAuthService_ResendVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("unconfirmed account gets a new email", func(t *testing.T) {
		fx := newAuthFixture(true)
		_, err := fx.svc.SignUp(ctx, "ana@example.com", "secret1")
		require.NoError(t, err)

		require.NoError(t, fx.svc.ResendVerification(ctx, "signup", "ana@example.com"))
		assert.Len(t, fx.mail.sent, 2)
	})

	t.Run("unknown email is silently accepted", func(t *testing.T) {
		fx := newAuthFixture(true)
		require.NoError(t, fx.svc.ResendVerification(ctx, "signup", "ghost@example.com"))
		assert.Empty(t, fx.mail.sent)
	})

	t.Run("confirmed account gets nothing", func(t *testing.T) {
		fx := newAuthFixture(true)
		_, err := fx.svc.SignUp(ctx, "ana@example.com", "secret1")
		require.NoError(t, err)
		require.NoError(t, fx.accounts.ConfirmEmail(ctx, "ana@example.com", fx.now))

		require.NoError(t, fx.svc.ResendVerification(ctx, "signup", "ana@example.com"))
		assert.Len(t, fx.mail.sent, 1)
	})

	t.Run("unsupported purpose", func(t *testing.T) {
		fx := newAuthFixture(true)
		err := fx.svc.ResendVerification(ctx, "recovery", "ana@example.com")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestAuthService_GetIdentity(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(false)
	sess, err := fx.svc.SignUp(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	id, err := fx.svc.GetIdentity(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", id.Email)

	_, err = fx.svc.GetIdentity(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	fx.accounts.getErr = errors.New("db down")
	_, err = fx.svc.GetIdentity(ctx, sess.User.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
