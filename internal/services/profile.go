package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventboard/internal/domain"
)

type profileService struct {
	profileRepo domain.ProfileRepository
	accountRepo domain.AccountRepository
	now         func() time.Time
}

// NewProfileService creates a ProfileService. The account repository supplies
// the email copied onto new profiles.
func NewProfileService(profileRepo domain.ProfileRepository, accountRepo domain.AccountRepository) domain.ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		accountRepo: accountRepo,
		now:         time.Now,
	}
}

// Create stores the caller's profile. The profile id is always the caller's identity.
func (s *profileService) Create(ctx context.Context, callerID string, p *domain.Profile) error {
	role, ok := domain.ParseRole(string(p.Role))
	if !ok {
		return fmt.Errorf("%w: role must be \"standard\" or \"organizer\"", domain.ErrInvalidInput)
	}
	account, err := s.accountRepo.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to get account: %w", err)
	}
	p.ID = callerID
	p.Role = role
	p.Email = account.Email
	p.Username = strings.TrimSpace(p.Username)
	p.FullName = strings.TrimSpace(p.FullName)
	p.CreatedAt = s.now()
	if err := s.profileRepo.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrProfileExists) {
			return err
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (s *profileService) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (s *profileService) List(ctx context.Context, filter domain.ProfileFilter) ([]*domain.Profile, error) {
	profiles, err := s.profileRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

func (s *profileService) Update(ctx context.Context, callerID, id string, patch domain.ProfilePatch) (*domain.Profile, error) {
	if callerID != id {
		return nil, domain.ErrForbidden
	}
	if patch.Username != nil {
		u := strings.TrimSpace(*patch.Username)
		patch.Username = &u
	}
	if patch.FullName != nil {
		n := strings.TrimSpace(*patch.FullName)
		patch.FullName = &n
	}
	p, err := s.profileRepo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}
