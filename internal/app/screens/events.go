package screens

import (
	"context"
	"sort"

	"eventboard/internal/app/entity"
	"eventboard/internal/app/navigation"
)

func noEvents(events []entity.Event) bool { return len(events) == 0 }

// Home lists every event, soonest first.
type Home struct {
	screen[[]entity.Event]
}

func NewHome(env Env) *Home {
	h := &Home{}
	h.init("home", env, StatusLoading)
	return h
}

// Mount starts the screen's scope and loads the list.
func (h *Home) Mount(ctx context.Context) error {
	h.attach(ctx)
	return h.Reload()
}

func (h *Home) Reload() error {
	return h.run(func(ctx context.Context) ([]entity.Event, error) {
		return h.env.Events.List(ctx, entity.EventFilter{Order: entity.DefaultEventOrder})
	}, noEvents)
}

// Open returns the detail route of an event.
func (h *Home) Open(id string) string { return navigation.EventRoute(id) }

// ExploreData is the Explore view: events of the selected category plus every
// category seen so far.
type ExploreData struct {
	Category   string
	Categories []string
	Events     []entity.Event
}

// Explore browses events by category.
type Explore struct {
	screen[ExploreData]
	seen map[string]struct{}
}

func NewExplore(env Env) *Explore {
	e := &Explore{seen: make(map[string]struct{})}
	e.init("explore", env, StatusLoading)
	return e
}

func (e *Explore) Mount(ctx context.Context) error {
	e.attach(ctx)
	return e.Select("")
}

// Select shows the events of category; "" shows all of them.
func (e *Explore) Select(category string) error {
	return e.run(func(ctx context.Context) (ExploreData, error) {
		events, err := e.env.Events.List(ctx, entity.EventFilter{Category: category})
		if err != nil {
			return ExploreData{}, err
		}
		return ExploreData{Category: category, Categories: e.remember(events), Events: events}, nil
	}, func(d ExploreData) bool { return len(d.Events) == 0 })
}

func (e *Explore) remember(events []entity.Event) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ev := range events {
		if ev.Category != "" {
			e.seen[ev.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(e.seen))
	for c := range e.seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// EventDetail shows one event.
type EventDetail struct {
	screen[*entity.Event]
	id string
}

func NewEventDetail(env Env, id string) *EventDetail {
	d := &EventDetail{id: id}
	d.init("event_detail", env, StatusLoading)
	return d
}

func (d *EventDetail) Mount(ctx context.Context) error {
	d.attach(ctx)
	return d.run(func(ctx context.Context) (*entity.Event, error) {
		return d.env.Events.GetByID(ctx, d.id)
	}, func(e *entity.Event) bool { return e == nil })
}
