package domain

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

// Event represents a listed event
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Price       *float64  `json:"price"`
	Capacity    *int      `json:"capacity"`
	Category    string    `json:"category"`
	ImageURL    *string   `json:"image_url"`
	OrganizerID string    `json:"organizer_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsFree reports whether the event has no price or a zero price.
func (e *Event) IsFree() bool {
	return e.Price == nil || *e.Price == 0
}

// Validate checks the invariants every stored event must satisfy.
func (e *Event) Validate() error {
	var errs []string
	if strings.TrimSpace(e.Title) == "" {
		errs = append(errs, "title is required")
	}
	if e.Price != nil && *e.Price < 0 {
		errs = append(errs, "price must not be negative")
	}
	if e.Price != nil && !wholeCents(*e.Price) {
		errs = append(errs, "price must have at most 2 decimals")
	}
	if e.Capacity != nil && *e.Capacity <= 0 {
		errs = append(errs, "capacity must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(errs, "; "))
	}
	return nil
}

// wholeCents reports whether price fits the two-decimal price column.
func wholeCents(price float64) bool {
	cents := price * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}

// EventPatch holds the fields of a partial update. Nil fields are unchanged.
// OrganizerID is immutable and therefore absent.
type EventPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	Location    *string    `json:"location"`
	Price       *float64   `json:"price"`
	Capacity    *int       `json:"capacity"`
	Category    *string    `json:"category"`
	ImageURL    *string    `json:"image_url"`
}

// Validate checks the patch against the same rules as Event.Validate.
func (p EventPatch) Validate() error {
	var errs []string
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if p.Price != nil && *p.Price < 0 {
		errs = append(errs, "price must not be negative")
	}
	if p.Price != nil && !wholeCents(*p.Price) {
		errs = append(errs, "price must have at most 2 decimals")
	}
	if p.Capacity != nil && *p.Capacity <= 0 {
		errs = append(errs, "capacity must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(errs, "; "))
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil && p.Location == nil &&
		p.Price == nil && p.Capacity == nil && p.Category == nil && p.ImageURL == nil
}

// Orderable event columns.
const (
	EventOrderDate      = "date"
	EventOrderCreatedAt = "created_at"
	EventOrderTitle     = "title"
)

// EventOrder is a single ORDER BY clause.
type EventOrder struct {
	Column string
	Desc   bool
}

// DefaultEventOrder lists events by ascending date.
var DefaultEventOrder = EventOrder{Column: EventOrderDate}

// ParseEventOrder parses "column.asc" or "column.desc". A bare column means ascending.
func ParseEventOrder(s string) (EventOrder, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return DefaultEventOrder, nil
	}
	col, dir, _ := strings.Cut(s, ".")
	switch col {
	case EventOrderDate, EventOrderCreatedAt, EventOrderTitle:
	default:
		return EventOrder{}, fmt.Errorf("%w: cannot order by %q", ErrInvalidInput, col)
	}
	switch dir {
	case "", "asc":
		return EventOrder{Column: col}, nil
	case "desc":
		return EventOrder{Column: col, Desc: true}, nil
	default:
		return EventOrder{}, fmt.Errorf("%w: unknown direction %q", ErrInvalidInput, dir)
	}
}

// String renders the order in the "column.dir" form accepted by ParseEventOrder.
func (o EventOrder) String() string {
	if o.Desc {
		return o.Column + ".desc"
	}
	return o.Column + ".asc"
}

// EventFilter holds equality filters and ordering for listing events.
type EventFilter struct {
	OrganizerID string
	Category    string
	Order       EventOrder
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter) ([]*Event, error)
	Update(ctx context.Context, id string, patch EventPatch) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines the business logic for events
type EventService interface {
	List(ctx context.Context, filter EventFilter) ([]*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	Create(ctx context.Context, event *Event) error
	Update(ctx context.Context, callerID, id string, patch EventPatch) (*Event, error)
	Delete(ctx context.Context, callerID, id string) error
}
