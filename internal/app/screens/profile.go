package screens

import (
	"context"

	"eventboard/internal/app/entity"
	"eventboard/internal/app/navigation"
)

// Profile shows the caller's profile and signs out.
type Profile struct {
	screen[*entity.Profile]
}

func NewProfile(env Env) *Profile {
	p := &Profile{}
	p.init("profile", env, StatusLoading)
	return p
}

func (p *Profile) Mount(ctx context.Context) error {
	p.attach(ctx)
	identity, ok := p.env.Session.CurrentIdentity()
	if !ok {
		return p.fail(ErrSignedOut)
	}
	return p.run(func(ctx context.Context) (*entity.Profile, error) {
		return p.env.Profiles.GetByID(ctx, identity.ID)
	}, func(pr *entity.Profile) bool { return pr == nil })
}

// SignOut always lands on home: the local session is gone even when the
// backend call failed.
func (p *Profile) SignOut() (string, error) {
	err := p.run(func(ctx context.Context) (*entity.Profile, error) {
		return nil, p.env.Session.SignOut(ctx)
	}, func(pr *entity.Profile) bool { return pr == nil })
	return navigation.RouteHome, err
}
