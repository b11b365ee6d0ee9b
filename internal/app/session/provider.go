// Package session holds the single source of truth for who the current actor is.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"eventboard/internal/app/backend"
)

// VerificationSignup is the verification type resent after registration.
const VerificationSignup = "signup"

// refreshRetry is how long Run waits after a refresh that failed on the network.
const refreshRetry = 15 * time.Second

// AuthAPI is the authentication half of the backend.
type AuthAPI interface {
	SignUp(ctx context.Context, email, password string) (*backend.Session, error)
	SignIn(ctx context.Context, email, password string) (*backend.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*backend.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	Resend(ctx context.Context, kind, email string) error
}

// TokenStore persists the session across restarts. Load returns nil, nil when
// nothing is stored.
type TokenStore interface {
	Load() (*backend.Session, error)
	Save(s *backend.Session) error
	Clear() error
}

// ChangeKind names a session transition.
type ChangeKind string

const (
	SignedIn       ChangeKind = "signed_in"
	SignedOut      ChangeKind = "signed_out"
	TokenRefreshed ChangeKind = "token_refreshed"
	ProfileUpdated ChangeKind = "profile_updated"
)

// ChangeEvent is delivered to subscribers. Identity is nil after sign-out.
type ChangeEvent struct {
	Kind     ChangeKind
	Identity *backend.Identity
}

// Credentials are an email and password pair.
type Credentials struct {
	Email    string
	Password string
}

type subscriber struct {
	id int
	fn func(ChangeEvent)
}

// Provider wraps the authentication API. Subscribers are called outside the
// provider lock, in subscription order.
type Provider struct {
	api    AuthAPI
	store  TokenStore
	margin time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	current *backend.Session
	subs    []subscriber
	nextID  int

	kick chan struct{}
}

// New returns a provider restored from store. refreshMargin is how long
// before expiry Run refreshes the access token.
func New(api AuthAPI, store TokenStore, refreshMargin time.Duration, logger *slog.Logger) *Provider {
	p := &Provider{
		api:    api,
		store:  store,
		margin: refreshMargin,
		logger: logger,
		now:    time.Now,
		kick:   make(chan struct{}, 1),
	}
	if store != nil {
		s, err := store.Load()
		if err != nil {
			logger.Warn("failed to restore session", "err", err)
		}
		if s != nil && s.AccessToken != "" && s.User.ID != "" {
			p.current = s
		}
	}
	return p
}

// CurrentIdentity returns the signed-in identity, if any.
func (p *Provider) CurrentIdentity() (*backend.Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil, false
	}
	id := p.current.User
	return &id, true
}

// AccessToken returns the bearer token of the current session, or "" when signed out.
func (p *Provider) AccessToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return ""
	}
	return p.current.AccessToken
}

// SignIn starts a session. Failures are *backend.AuthError.
func (p *Provider) SignIn(ctx context.Context, c Credentials) (*backend.Identity, error) {
	s, err := p.api.SignIn(ctx, normalizeEmail(c.Email), c.Password)
	if err != nil {
		return nil, err
	}
	return p.replace(s, SignedIn), nil
}

// SignUp registers an account and starts its session.
func (p *Provider) SignUp(ctx context.Context, c Credentials) (*backend.Identity, error) {
	s, err := p.api.SignUp(ctx, normalizeEmail(c.Email), c.Password)
	if err != nil {
		return nil, err
	}
	return p.replace(s, SignedIn), nil
}

// SignOut ends the session. Local state is always cleared; the backend error,
// if any, is returned after subscribers were told.
func (p *Provider) SignOut(ctx context.Context) error {
	token := p.AccessToken()
	if token == "" {
		return nil
	}
	err := p.api.SignOut(ctx, token)
	if err != nil {
		p.logger.Warn("backend sign-out failed, clearing local session", "err", err)
	}
	p.clear()
	return err
}

// ResendVerification asks for another signup verification email.
func (p *Provider) ResendVerification(ctx context.Context, email string) error {
	return p.api.Resend(ctx, VerificationSignup, normalizeEmail(email))
}

// OnChange registers fn for every session change and returns its unsubscribe func.
func (p *Provider) OnChange(fn func(ChangeEvent)) func() {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.subs = append(p.subs, subscriber{id: id, fn: fn})
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			for i, s := range p.subs {
				if s.id == id {
					p.subs = append(p.subs[:i:i], p.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Refresh rotates the session tokens. A refresh the backend rejects signs the
// session out; a network failure keeps it. The outcome is dropped when the
// session was replaced or signed out while the call was in flight.
func (p *Provider) Refresh(ctx context.Context) error {
	p.mu.Lock()
	current := p.current
	p.mu.Unlock()
	if current == nil {
		return nil
	}
	s, err := p.api.Refresh(ctx, current.RefreshToken)
	if err != nil {
		var authErr *backend.AuthError
		if errors.As(err, &authErr) && authErr.Kind == backend.AuthNetwork {
			return err
		}
		if p.swap(current, nil, SignedOut) {
			p.logger.Info("session refresh rejected, signed out", "err", err)
		}
		return err
	}
	if !p.swap(current, s, TokenRefreshed) {
		p.logger.Debug("discarding refresh of a replaced session")
	}
	return nil
}

// Run refreshes the access token refreshMargin before it expires until ctx is done.
func (p *Provider) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		wait, ok := p.nextRefresh()
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		var fire <-chan time.Time
		if ok {
			timer.Reset(wait)
			fire = timer.C
		}
		select {
		case <-ctx.Done():
			return
		case <-p.kick:
		case <-fire:
			if err := p.Refresh(ctx); err != nil {
				var authErr *backend.AuthError
				if errors.As(err, &authErr) && authErr.Kind == backend.AuthNetwork {
					p.logger.Warn("background refresh failed", "err", err, "retry_in", refreshRetry)
					select {
					case <-ctx.Done():
						return
					case <-p.kick:
					case <-time.After(refreshRetry):
					}
				}
			}
		}
	}
}

func (p *Provider) nextRefresh() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.current.RefreshToken == "" {
		return 0, false
	}
	wait := p.current.ExpiresAt.Add(-p.margin).Sub(p.now())
	if wait < 0 {
		wait = 0
	}
	return wait, true
}

func (p *Provider) replace(s *backend.Session, kind ChangeKind) *backend.Identity {
	p.set(s, kind)
	id := s.User
	return &id
}

func (p *Provider) clear() {
	p.set(nil, SignedOut)
}

// set installs s unconditionally.
func (p *Provider) set(s *backend.Session, kind ChangeKind) {
	p.mu.Lock()
	p.install(s)
	subs := append([]subscriber(nil), p.subs...)
	p.mu.Unlock()
	p.announce(subs, s, kind)
}

// swap installs s only while prev is still the current session.
func (p *Provider) swap(prev, s *backend.Session, kind ChangeKind) bool {
	p.mu.Lock()
	if p.current != prev {
		p.mu.Unlock()
		return false
	}
	p.install(s)
	subs := append([]subscriber(nil), p.subs...)
	p.mu.Unlock()
	p.announce(subs, s, kind)
	return true
}

// install persists s and makes it current. A nil s clears both. p.mu must be held.
func (p *Provider) install(s *backend.Session) {
	if p.store != nil {
		var err error
		if s == nil {
			err = p.store.Clear()
		} else {
			err = p.store.Save(s)
		}
		if err != nil {
			p.logger.Warn("failed to persist session", "err", err)
		}
	}
	p.current = s
}

func (p *Provider) announce(subs []subscriber, s *backend.Session, kind ChangeKind) {
	p.wake()
	ev := ChangeEvent{Kind: kind}
	if s != nil {
		id := s.User
		ev.Identity = &id
	}
	notify(subs, ev)
}

// NotifyProfileChanged tells subscribers that the signed-in identity's profile
// was written. It does nothing when signed out.
func (p *Provider) NotifyProfileChanged() {
	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return
	}
	id := p.current.User
	subs := append([]subscriber(nil), p.subs...)
	p.mu.Unlock()
	notify(subs, ChangeEvent{Kind: ProfileUpdated, Identity: &id})
}

func (p *Provider) wake() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

func notify(subs []subscriber, ev ChangeEvent) {
	for _, s := range subs {
		s.fn(ev)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
