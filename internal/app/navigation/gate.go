// Package navigation decides which tabs and routes are mounted for the current actor.
package navigation

import (
	"context"
	"log/slog"
	"sync"

	"eventboard/internal/app/backend"
	"eventboard/internal/app/roles"
	"eventboard/internal/app/session"
)

// State is the gate state. Resolving is transient; the others are stable.
type State string

const (
	Resolving       State = "resolving"
	Unauthenticated State = "unauthenticated"
	Standard        State = "standard"
	Organizer       State = "organizer"
)

// SessionSource is the part of the session provider the gate watches.
type SessionSource interface {
	CurrentIdentity() (*backend.Identity, bool)
	OnChange(fn func(session.ChangeEvent)) func()
}

// RoleResolver classifies an identity. *roles.Resolver implements it.
type RoleResolver interface {
	Resolve(ctx context.Context, identity *backend.Identity) roles.Role
}

type observer struct {
	id int
	fn func(State)
}

// Gate re-resolves the role on every session change. Each resolution carries a
// generation; a superseded one is cancelled and its result dropped.
type Gate struct {
	session  SessionSource
	resolver RoleResolver
	logger   *slog.Logger

	mu          sync.Mutex
	state       State
	gen         uint64
	base        context.Context
	cancel      context.CancelFunc
	observers   []observer
	nextID      int
	unsubscribe func()
	wg          sync.WaitGroup
}

func NewGate(src SessionSource, resolver RoleResolver, logger *slog.Logger) *Gate {
	return &Gate{
		session:  src,
		resolver: resolver,
		logger:   logger,
		state:    Resolving,
		base:     context.Background(),
	}
}

// Start subscribes to the session and runs the initial resolution.
func (g *Gate) Start(ctx context.Context) {
	g.mu.Lock()
	g.base = ctx
	g.mu.Unlock()

	unsubscribe := g.session.OnChange(func(ev session.ChangeEvent) {
		g.logger.Debug("session changed", "kind", ev.Kind)
		g.resolve()
	})
	g.mu.Lock()
	g.unsubscribe = unsubscribe
	g.mu.Unlock()
	g.resolve()
}

// Stop unsubscribes, cancels any resolution in flight and waits for it.
func (g *Gate) Stop() {
	g.mu.Lock()
	if g.unsubscribe != nil {
		g.unsubscribe()
		g.unsubscribe = nil
	}
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.gen++
	g.mu.Unlock()
	g.wg.Wait()
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Tabs returns the tabs mounted in the current state.
func (g *Gate) Tabs() []Tab {
	return TabsFor(g.State())
}

// Allows reports whether route is reachable in the current state.
func (g *Gate) Allows(route string) bool {
	return Allowed(g.State(), route)
}

// Subscribe calls fn on every state change and returns its unsubscribe func.
func (g *Gate) Subscribe(fn func(State)) func() {
	g.mu.Lock()
	g.nextID++
	id := g.nextID
	g.observers = append(g.observers, observer{id: id, fn: fn})
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		for i, o := range g.observers {
			if o.id == id {
				g.observers = append(g.observers[:i:i], g.observers[i+1:]...)
				return
			}
		}
	}
}

// Await blocks until the gate is in a stable state.
func (g *Gate) Await(ctx context.Context) (State, error) {
	settled := make(chan State, 1)
	unsubscribe := g.Subscribe(func(s State) {
		if s != Resolving {
			select {
			case settled <- s:
			default:
			}
		}
	})
	defer unsubscribe()
	if s := g.State(); s != Resolving {
		return s, nil
	}
	select {
	case s := <-settled:
		return s, nil
	case <-ctx.Done():
		return Resolving, ctx.Err()
	}
}

func (g *Gate) resolve() {
	identity, _ := g.session.CurrentIdentity()

	g.mu.Lock()
	if g.cancel != nil {
		g.cancel()
	}
	g.gen++
	gen := g.gen
	ctx, cancel := context.WithCancel(g.base)
	g.cancel = cancel
	g.state = Resolving
	observers := append([]observer(nil), g.observers...)
	g.wg.Add(1)
	g.mu.Unlock()

	notify(observers, Resolving)

	go func() {
		defer g.wg.Done()
		role := g.resolver.Resolve(ctx, identity)
		g.settle(gen, stateFor(role))
	}()
}

func (g *Gate) settle(gen uint64, s State) {
	g.mu.Lock()
	if gen != g.gen {
		g.mu.Unlock()
		g.logger.Debug("discarding superseded role resolution", "state", s)
		return
	}
	g.state = s
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	observers := append([]observer(nil), g.observers...)
	g.mu.Unlock()

	notify(observers, s)
}

func stateFor(r roles.Role) State {
	switch r {
	case roles.Organizer:
		return Organizer
	case roles.Standard:
		return Standard
	default:
		return Unauthenticated
	}
}

func notify(observers []observer, s State) {
	for _, o := range observers {
		o.fn(s)
	}
}
