package entity

import (
	"context"

	"eventboard/internal/app/backend"
)

// EventsTable is the resource name of events.
const EventsTable = "events"

// DefaultEventOrder lists events by ascending date.
const DefaultEventOrder = "date.asc"

// EventFilter narrows List. Empty fields do not filter.
type EventFilter struct {
	OrganizerID string
	Category    string
	Order       string
}

// Events reads and writes the events table. Every call is one round trip.
type Events struct {
	store store[Event]
}

func NewEvents(table Table) *Events {
	return &Events{store: newStore[Event](table, newValidator())}
}

// List returns events matching filter, ascending by date unless Order says otherwise.
func (e *Events) List(ctx context.Context, filter EventFilter) ([]Event, error) {
	q := backend.Query{Order: filter.Order}
	if q.Order == "" {
		q.Order = DefaultEventOrder
	}
	if filter.OrganizerID != "" {
		q.Eq = append(q.Eq, backend.Filter{Column: "organizer_id", Value: filter.OrganizerID})
	}
	if filter.Category != "" {
		q.Eq = append(q.Eq, backend.Filter{Column: "category", Value: filter.Category})
	}
	return e.store.list(ctx, q)
}

// ListByOrganizer returns the events owned by organizerID, ascending by date.
func (e *Events) ListByOrganizer(ctx context.Context, organizerID string) ([]Event, error) {
	return e.List(ctx, EventFilter{OrganizerID: organizerID})
}

// GetByID returns nil, nil when no event has the id.
func (e *Events) GetByID(ctx context.Context, id string) (*Event, error) {
	return e.store.get(ctx, id)
}

func (e *Events) Insert(ctx context.Context, draft EventDraft) (*Event, error) {
	return e.store.insert(ctx, draft)
}

func (e *Events) Update(ctx context.Context, id string, patch EventPatch) (*Event, error) {
	return e.store.update(ctx, id, patch)
}

func (e *Events) Remove(ctx context.Context, id string) error {
	return e.store.remove(ctx, id)
}
