package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrProfileExists is returned when a profile is created twice for one identity.
var ErrProfileExists = errors.New("profile already exists")

// Role classifies an actor. It is fixed at registration.
type Role string

const (
	RoleStandard  Role = "standard"
	RoleOrganizer Role = "organizer"
)

// ParseRole normalizes s into a Role. An empty string yields RoleStandard.
func ParseRole(s string) (Role, bool) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "", string(RoleStandard):
		return RoleStandard, true
	case string(RoleOrganizer):
		return RoleOrganizer, true
	default:
		return "", false
	}
}

// Profile is keyed 1:1 to an Identity.
// swagger:model Profile
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewProfile returns a profile for the given identity.
func NewProfile(id, username, fullName, email string, role Role, createdAt time.Time) *Profile {
	return &Profile{
		ID:        id,
		Username:  username,
		FullName:  fullName,
		Email:     email,
		Role:      role,
		CreatedAt: createdAt,
	}
}

// ProfilePatch lists the mutable profile fields. Role is write-once and absent.
type ProfilePatch struct {
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Username == nil && p.FullName == nil
}

// ProfileFilter holds equality filters for listing profiles. Results are
// ordered by creation time.
type ProfileFilter struct {
	Role     Role
	Username string
}

// ProfileRepository defines the interface for profile storage
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
	List(ctx context.Context, filter ProfileFilter) ([]*Profile, error)
	Update(ctx context.Context, id string, patch ProfilePatch) (*Profile, error)
}

// ProfileService defines the business logic for profiles.
type ProfileService interface {
	Create(ctx context.Context, callerID string, profile *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
	List(ctx context.Context, filter ProfileFilter) ([]*Profile, error)
	Update(ctx context.Context, callerID, id string, patch ProfilePatch) (*Profile, error)
}
