// Package roles classifies the current identity for navigation.
package roles

import (
	"context"
	"log/slog"

	"eventboard/internal/app/backend"
	"eventboard/internal/app/entity"
)

// Role is the navigation classification of an actor.
type Role string

const (
	Unauthenticated Role = "unauthenticated"
	Standard        Role = "standard"
	Organizer       Role = "organizer"
)

// ProfileFetcher loads one profile by identity. *entity.Profiles implements it.
type ProfileFetcher interface {
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
}

// Resolver maps an identity to a Role with a single profile fetch.
type Resolver struct {
	profiles ProfileFetcher
	logger   *slog.Logger
}

func NewResolver(profiles ProfileFetcher, logger *slog.Logger) *Resolver {
	return &Resolver{profiles: profiles, logger: logger}
}

// Resolve never fails. A nil identity is Unauthenticated; an identity whose
// profile cannot be read falls back to Standard.
func (r *Resolver) Resolve(ctx context.Context, identity *backend.Identity) Role {
	if identity == nil {
		return Unauthenticated
	}
	profile, err := r.profiles.GetByID(ctx, identity.ID)
	if err != nil {
		return r.failOpen(ctx, identity, "profile fetch failed", err)
	}
	if profile == nil {
		return r.failOpen(ctx, identity, "identity has no profile", nil)
	}
	if profile.Role == entity.RoleOrganizer {
		return Organizer
	}
	return Standard
}

// failOpen is the missing-profile policy: navigation is never blocked, the
// actor gets the standard tabs.
func (r *Resolver) failOpen(ctx context.Context, identity *backend.Identity, reason string, err error) Role {
	attrs := []any{"identity", identity.ID, "reason", reason}
	if err != nil {
		attrs = append(attrs, "err", err)
	}
	r.logger.WarnContext(ctx, "role resolution failed open to standard", attrs...)
	return Standard
}
