package screens

import (
	"context"
	"errors"
	"strings"

	"eventboard/internal/app/backend"
	"eventboard/internal/app/entity"
	"eventboard/internal/app/navigation"
	"eventboard/internal/app/session"
)

// MinPasswordLength is the shortest password the register form accepts.
const MinPasswordLength = 6

// Login signs an existing account in.
type Login struct {
	screen[*backend.Identity]
}

func NewLogin(env Env) *Login {
	l := &Login{}
	l.init("login", env, StatusEmpty)
	return l
}

func (l *Login) Mount(ctx context.Context) { l.attach(ctx) }

// Submit returns the route to open next. An unconfirmed account is sent to
// the verify-email screen.
func (l *Login) Submit(email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", l.fail(invalid("email", "Please fill in all fields."))
	}
	err := l.run(func(ctx context.Context) (*backend.Identity, error) {
		return l.env.Session.SignIn(ctx, session.Credentials{Email: email, Password: password})
	}, nil)
	if err != nil {
		var authErr *backend.AuthError
		if errors.As(err, &authErr) && authErr.Kind == backend.AuthEmailNotConfirmed {
			return navigation.RouteVerifyEmail, err
		}
		return "", err
	}
	return navigation.RouteHome, nil
}

// RegisterForm holds the raw register inputs.
type RegisterForm struct {
	Email           string
	Password        string
	ConfirmPassword string
	Username        string
	FullName        string
	Role            entity.Role
}

func (f RegisterForm) validate() error {
	if strings.TrimSpace(f.Email) == "" || f.Password == "" ||
		strings.TrimSpace(f.Username) == "" || strings.TrimSpace(f.FullName) == "" {
		return invalid("form", "Please fill in all required fields.")
	}
	if f.Password != f.ConfirmPassword {
		return invalid("confirm_password", "Passwords do not match.")
	}
	if len(f.Password) < MinPasswordLength {
		return invalid("password", "Password must be at least 6 characters.")
	}
	switch f.Role {
	case "", entity.RoleStandard, entity.RoleOrganizer:
	default:
		return invalid("role", "Choose either standard or organizer.")
	}
	return nil
}

// Register creates the account and its profile in two calls, then announces
// the profile so the role is resolved again.
type Register struct {
	screen[*entity.Profile]
}

func NewRegister(env Env) *Register {
	r := &Register{}
	r.init("register", env, StatusEmpty)
	return r
}

func (r *Register) Mount(ctx context.Context) { r.attach(ctx) }

// Submit validates the form before any network call. On success the next
// route is verify-email.
func (r *Register) Submit(form RegisterForm) (string, error) {
	if err := form.validate(); err != nil {
		return "", r.fail(err)
	}
	role := form.Role
	if role == "" {
		role = entity.RoleStandard
	}
	err := r.run(func(ctx context.Context) (*entity.Profile, error) {
		identity, err := r.env.Session.SignUp(ctx, session.Credentials{Email: form.Email, Password: form.Password})
		if err != nil {
			return nil, err
		}
		return r.env.Profiles.Insert(ctx, entity.ProfileDraft{
			ID:       identity.ID,
			Username: strings.TrimSpace(form.Username),
			FullName: strings.TrimSpace(form.FullName),
			Email:    identity.Email,
			Role:     role,
		})
	}, nil)
	if err != nil {
		return "", err
	}
	r.env.Session.NotifyProfileChanged()
	return navigation.RouteVerifyEmail, nil
}

// VerifyEmail tells the user to confirm their address and can resend the link.
type VerifyEmail struct {
	screen[string]
}

func NewVerifyEmail(env Env) *VerifyEmail {
	v := &VerifyEmail{}
	v.init("verify_email", env, StatusEmpty)
	return v
}

// Mount shows the current identity's email. Without an identity the next
// route is login.
func (v *VerifyEmail) Mount(ctx context.Context) string {
	v.attach(ctx)
	identity, ok := v.env.Session.CurrentIdentity()
	if !ok {
		return navigation.RouteLogin
	}
	v.mu.Lock()
	v.view.Data = identity.Email
	v.view.Status = StatusSuccess
	v.mu.Unlock()
	return ""
}

// Resend sends another signup verification email to the current identity.
func (v *VerifyEmail) Resend() (string, error) {
	identity, ok := v.env.Session.CurrentIdentity()
	if !ok {
		return navigation.RouteLogin, nil
	}
	err := v.run(func(ctx context.Context) (string, error) {
		return identity.Email, v.env.Session.ResendVerification(ctx, identity.Email)
	}, nil)
	if err != nil {
		return "", err
	}
	v.inform("Verification email sent to " + identity.Email + ".")
	return "", nil
}
