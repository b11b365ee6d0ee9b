// Package screens holds one view-model per user-facing page. Every controller
// exposes a View with loading, empty, error or success status.
package screens

import (
	"context"
	"log/slog"
	"time"

	"eventboard/internal/app/backend"
	"eventboard/internal/app/entity"
	"eventboard/internal/app/roles"
	"eventboard/internal/app/session"
)

// SessionAPI is what screens need from the session provider.
type SessionAPI interface {
	CurrentIdentity() (*backend.Identity, bool)
	SignIn(ctx context.Context, c session.Credentials) (*backend.Identity, error)
	SignUp(ctx context.Context, c session.Credentials) (*backend.Identity, error)
	SignOut(ctx context.Context) error
	ResendVerification(ctx context.Context, email string) error
	NotifyProfileChanged()
}

// EventStore is the events half of the entity layer.
type EventStore interface {
	List(ctx context.Context, filter entity.EventFilter) ([]entity.Event, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]entity.Event, error)
	GetByID(ctx context.Context, id string) (*entity.Event, error)
	Insert(ctx context.Context, draft entity.EventDraft) (*entity.Event, error)
	Update(ctx context.Context, id string, patch entity.EventPatch) (*entity.Event, error)
	Remove(ctx context.Context, id string) error
}

// ProfileStore is the profiles half of the entity layer.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	Insert(ctx context.Context, draft entity.ProfileDraft) (*entity.Profile, error)
}

// RoleResolver classifies the current identity.
type RoleResolver interface {
	Resolve(ctx context.Context, identity *backend.Identity) roles.Role
}

// Env is handed to every screen controller at construction.
type Env struct {
	Session  SessionAPI
	Events   EventStore
	Profiles ProfileStore
	Roles    RoleResolver
	Policy   ErrorPolicy
	Logger   *slog.Logger
	Now      func() time.Time
}

func (e Env) withDefaults() Env {
	if e.Policy == nil {
		e.Policy = DefaultPolicy{}
	}
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	return e
}
