package screens

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"eventboard/internal/app/entity"
	"eventboard/internal/app/navigation"
	"eventboard/internal/app/roles"
)

// Link is a labelled route.
type Link struct {
	Label string
	Route string
}

// OrganizerHome is the organizer tab's landing page.
type OrganizerHome struct{}

func NewOrganizerHome() *OrganizerHome { return &OrganizerHome{} }

func (OrganizerHome) Links() []Link {
	return []Link{
		{Label: "My events", Route: navigation.RouteOrganizerEvents},
		{Label: "Create event", Route: navigation.RouteCreateEvent},
	}
}

// OrganizerEvents lists the caller's own events and deletes them.
type OrganizerEvents struct {
	screen[[]entity.Event]
}

func NewOrganizerEvents(env Env) *OrganizerEvents {
	o := &OrganizerEvents{}
	o.init("organizer_events", env, StatusLoading)
	return o
}

func (o *OrganizerEvents) Mount(ctx context.Context) error {
	o.attach(ctx)
	return o.Reload()
}

func (o *OrganizerEvents) Reload() error {
	identity, ok := o.env.Session.CurrentIdentity()
	if !ok {
		return o.fail(ErrSignedOut)
	}
	return o.run(func(ctx context.Context) ([]entity.Event, error) {
		return o.env.Events.ListByOrganizer(ctx, identity.ID)
	}, noEvents)
}

// Delete removes the event and drops it from the list without reloading.
func (o *OrganizerEvents) Delete(id string) error {
	return o.run(func(ctx context.Context) ([]entity.Event, error) {
		if err := o.env.Events.Remove(ctx, id); err != nil {
			return nil, err
		}
		current := o.data()
		kept := make([]entity.Event, 0, len(current))
		for _, e := range current {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		return kept, nil
	}, noEvents)
}

// Edit returns the edit route of an event.
func (o *OrganizerEvents) Edit(id string) string { return navigation.EditEventRoute(id) }

// EventForm holds the raw inputs of the create and edit forms.
type EventForm struct {
	Title       string
	Description string
	Date        string
	Location    string
	Price       string
	Capacity    string
	Category    string
	ImageURL    string
}

// Accepted date layouts, tried in order.
var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"}

type parsedForm struct {
	title, description, location, category string
	date                                   time.Time
	price                                  *float64
	capacity                               *int
	imageURL                               *string
}

// parse checks the form. An empty date means now; an empty price or
// capacity means none.
func (f EventForm) parse(now time.Time) (parsedForm, error) {
	p := parsedForm{
		title:       strings.TrimSpace(f.Title),
		description: strings.TrimSpace(f.Description),
		location:    strings.TrimSpace(f.Location),
		category:    strings.TrimSpace(f.Category),
		date:        now,
	}
	if p.title == "" {
		return p, invalid("title", "Title is required.")
	}
	if raw := strings.TrimSpace(f.Date); raw != "" {
		var err error
		for _, layout := range dateLayouts {
			if p.date, err = time.Parse(layout, raw); err == nil {
				break
			}
		}
		if err != nil {
			return p, invalid("date", "Date must look like 2025-06-01 or 2025-06-01 18:30.")
		}
	}
	if raw := strings.TrimSpace(f.Price); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return p, invalid("price", "Price must be a number.")
		}
		if v < 0 {
			return p, invalid("price", "Price cannot be negative.")
		}
		if cents := v * 100; math.Abs(cents-math.Round(cents)) > 1e-6 {
			return p, invalid("price", "Price can have at most 2 decimals.")
		}
		p.price = &v
	}
	if raw := strings.TrimSpace(f.Capacity); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return p, invalid("capacity", "Capacity must be a whole number.")
		}
		if v <= 0 {
			return p, invalid("capacity", "Capacity must be greater than zero.")
		}
		p.capacity = &v
	}
	if raw := strings.TrimSpace(f.ImageURL); raw != "" {
		p.imageURL = &raw
	}
	return p, nil
}

// FormFromEvent fills a form with an event's current values.
func FormFromEvent(e *entity.Event) EventForm {
	f := EventForm{
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date.Format(time.RFC3339),
		Location:    e.Location,
		Category:    e.Category,
	}
	if e.Price != nil {
		f.Price = strconv.FormatFloat(*e.Price, 'f', -1, 64)
	}
	if e.Capacity != nil {
		f.Capacity = strconv.Itoa(*e.Capacity)
	}
	if e.ImageURL != nil {
		f.ImageURL = *e.ImageURL
	}
	return f
}

// CreateEvent inserts a new event owned by the caller.
type CreateEvent struct {
	screen[*entity.Event]
}

func NewCreateEvent(env Env) *CreateEvent {
	c := &CreateEvent{}
	c.init("create_event", env, StatusEmpty)
	return c
}

func (c *CreateEvent) Mount(ctx context.Context) { c.attach(ctx) }

// Submit returns the organizer events route once the event is stored.
func (c *CreateEvent) Submit(form EventForm) (string, error) {
	identity, ok := c.env.Session.CurrentIdentity()
	if !ok {
		return "", c.fail(ErrSignedOut)
	}
	p, err := form.parse(c.env.Now())
	if err != nil {
		return "", c.fail(err)
	}
	err = c.run(func(ctx context.Context) (*entity.Event, error) {
		if c.env.Roles != nil && c.env.Roles.Resolve(ctx, identity) != roles.Organizer {
			return nil, ErrNotOrganizer
		}
		return c.env.Events.Insert(ctx, entity.EventDraft{
			Title:       p.title,
			Description: p.description,
			Date:        p.date,
			Location:    p.location,
			Price:       p.price,
			Capacity:    p.capacity,
			Category:    p.category,
			ImageURL:    p.imageURL,
			OrganizerID: identity.ID,
		})
	}, nil)
	if err != nil {
		return "", err
	}
	return navigation.RouteOrganizerEvents, nil
}

// EditEvent loads an event into a form and saves the changes with a partial update.
type EditEvent struct {
	screen[*entity.Event]
	id string
}

func NewEditEvent(env Env, id string) *EditEvent {
	e := &EditEvent{id: id}
	e.init("edit_event", env, StatusLoading)
	return e
}

func (e *EditEvent) Mount(ctx context.Context) error {
	e.attach(ctx)
	return e.run(func(ctx context.Context) (*entity.Event, error) {
		return e.env.Events.GetByID(ctx, e.id)
	}, func(ev *entity.Event) bool { return ev == nil })
}

// Form returns the loaded event as form values.
func (e *EditEvent) Form() EventForm {
	current := e.data()
	if current == nil {
		return EventForm{}
	}
	return FormFromEvent(current)
}

// Submit sends every form field as the patch. An empty date keeps the stored one.
func (e *EditEvent) Submit(form EventForm) (string, error) {
	current := e.data()
	now := e.env.Now()
	if current != nil {
		now = current.Date
	}
	p, err := form.parse(now)
	if err != nil {
		return "", e.fail(err)
	}
	patch := entity.EventPatch{
		Title:       &p.title,
		Description: &p.description,
		Date:        &p.date,
		Location:    &p.location,
		Price:       p.price,
		Capacity:    p.capacity,
		Category:    &p.category,
		ImageURL:    p.imageURL,
	}
	err = e.run(func(ctx context.Context) (*entity.Event, error) {
		return e.env.Events.Update(ctx, e.id, patch)
	}, nil)
	if err != nil {
		return "", err
	}
	return navigation.RouteOrganizerEvents, nil
}
