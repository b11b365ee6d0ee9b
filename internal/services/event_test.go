package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"eventboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID       map[string]*domain.Event
	nextID     int
	err        error // if set, Create returns this error
	lastFilter domain.EventFilter
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	f.lastFilter = filter
	var out []*domain.Event
	for _, e := range f.byID {
		if filter.OrganizerID != "" && e.OrganizerID != filter.OrganizerID {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Price != nil {
		e.Price = patch.Price
	}
	if patch.Capacity != nil {
		e.Capacity = patch.Capacity
	}
	return e, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func newTestEventService(repo domain.EventRepository) *eventService {
	svc := NewEventService(repo, time.Second).(*eventService)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestEventService_Create(t *testing.T) {
	date := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   *domain.Event
		repoErr error
		wantErr error
	}{
		{
			name:  "free event without price",
			event: &domain.Event{Title: "  Jazz Night ", Date: date, OrganizerID: "org-1"},
		},
		{
			name:  "paid event with capacity",
			event: &domain.Event{Title: "Gala", Date: date, Price: ptr(25.0), Capacity: ptr(100), OrganizerID: "org-1"},
		},
		{
			name:    "missing title",
			event:   &domain.Event{Title: "   ", OrganizerID: "org-1"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "negative price",
			event:   &domain.Event{Title: "Gala", Price: ptr(-1.0), OrganizerID: "org-1"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing organizer",
			event:   &domain.Event{Title: "Gala"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "repository failure",
			event:   &domain.Event{Title: "Gala", OrganizerID: "org-1"},
			repoErr: errors.New("db down"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeEventRepo()
			repo.err = tt.repoErr
			svc := newTestEventService(repo)

			err := svc.Create(context.Background(), tt.event)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.byID)
			case tt.repoErr != nil:
				require.ErrorIs(t, err, tt.repoErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, "ev-1", tt.event.ID)
				assert.Equal(t, strings.TrimSpace(tt.event.Title), tt.event.Title)
				assert.Equal(t, svc.now(), tt.event.CreatedAt)
			}
		})
	}
}

func TestEventService_List_DefaultsOrder(t *testing.T) {
	repo := newFakeEventRepo()
	svc := newTestEventService(repo)

	_, err := svc.List(context.Background(), domain.EventFilter{OrganizerID: "org-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultEventOrder, repo.lastFilter.Order)
	assert.Equal(t, "org-1", repo.lastFilter.OrganizerID)

	order := domain.EventOrder{Column: domain.EventOrderTitle, Desc: true}
	_, err = svc.List(context.Background(), domain.EventFilter{Order: order})
	require.NoError(t, err)
	assert.Equal(t, order, repo.lastFilter.Order)
}

func TestEventService_GetByID(t *testing.T) {
	repo := newFakeEventRepo()
	repo.byID["ev-1"] = &domain.Event{ID: "ev-1", Title: "Gala"}
	svc := newTestEventService(repo)

	e, err := svc.GetByID(context.Background(), "ev-1")
	require.NoError(t, err)
	assert.Equal(t, "Gala", e.Title)

	_, err = svc.GetByID(context.Background(), "ev-2")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_Update(t *testing.T) {
	tests := []struct {
		name    string
		caller  string
		id      string
		patch   domain.EventPatch
		wantErr error
	}{
		{name: "owner updates", caller: "org-1", id: "ev-1", patch: domain.EventPatch{Title: ptr("Gala 2"), Price: ptr(0.0)}},
		{name: "other organizer", caller: "org-2", id: "ev-1", patch: domain.EventPatch{Title: ptr("Mine")}, wantErr: domain.ErrForbidden},
		{name: "missing event", caller: "org-1", id: "ev-9", patch: domain.EventPatch{Title: ptr("x")}, wantErr: domain.ErrNotFound},
		{name: "invalid capacity", caller: "org-1", id: "ev-1", patch: domain.EventPatch{Capacity: ptr(0)}, wantErr: domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeEventRepo()
			repo.byID["ev-1"] = &domain.Event{ID: "ev-1", Title: "Gala", OrganizerID: "org-1"}
			svc := newTestEventService(repo)

			e, err := svc.Update(context.Background(), tt.caller, tt.id, tt.patch)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "Gala", repo.byID["ev-1"].Title)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Gala 2", e.Title)
			assert.True(t, e.IsFree())
		})
	}
}

func TestEventService_Delete(t *testing.T) {
	repo := newFakeEventRepo()
	repo.byID["ev-1"] = &domain.Event{ID: "ev-1", Title: "Gala", OrganizerID: "org-1"}
	svc := newTestEventService(repo)
	ctx := context.Background()

	require.ErrorIs(t, svc.Delete(ctx, "org-2", "ev-1"), domain.ErrForbidden)
	require.Contains(t, repo.byID, "ev-1")

	require.NoError(t, svc.Delete(ctx, "org-1", "ev-1"))
	assert.NotContains(t, repo.byID, "ev-1")

	require.ErrorIs(t, svc.Delete(ctx, "org-1", "ev-1"), domain.ErrNotFound)
}
