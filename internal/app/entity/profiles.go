package entity

import (
	"context"
	"net/http"

	"eventboard/internal/app/backend"
)

// ProfilesTable is the resource name of profiles.
const ProfilesTable = "profiles"

// ProfileFilter narrows List. Empty fields do not filter.
type ProfileFilter struct {
	Role     Role
	Username string
}

// Profiles reads and writes the profiles table.
type Profiles struct {
	store store[Profile]
}

func NewProfiles(table Table) *Profiles {
	return &Profiles{store: newStore[Profile](table, newValidator())}
}

func (p *Profiles) List(ctx context.Context, filter ProfileFilter) ([]Profile, error) {
	var q backend.Query
	if filter.Role != "" {
		q.Eq = append(q.Eq, backend.Filter{Column: "role", Value: string(filter.Role)})
	}
	if filter.Username != "" {
		q.Eq = append(q.Eq, backend.Filter{Column: "username", Value: filter.Username})
	}
	return p.store.list(ctx, q)
}

// GetByID returns nil, nil when the identity has no profile.
func (p *Profiles) GetByID(ctx context.Context, id string) (*Profile, error) {
	return p.store.get(ctx, id)
}

func (p *Profiles) Insert(ctx context.Context, draft ProfileDraft) (*Profile, error) {
	return p.store.insert(ctx, draft)
}

func (p *Profiles) Update(ctx context.Context, id string, patch ProfilePatch) (*Profile, error) {
	return p.store.update(ctx, id, patch)
}

// Remove always fails: profiles live as long as their identity.
func (p *Profiles) Remove(ctx context.Context, id string) error {
	return &backend.AccessError{
		Kind:    backend.AccessPermission,
		Status:  http.StatusMethodNotAllowed,
		Message: "profiles cannot be removed",
	}
}
