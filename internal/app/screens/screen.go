package screens

import (
	"context"
	"errors"
	"sync"
)

// Status is the render state of a screen.
type Status string

const (
	StatusLoading Status = "loading"
	StatusEmpty   Status = "empty"
	StatusError   Status = "error"
	StatusSuccess Status = "success"
)

// View is a snapshot of what a screen shows.
type View[T any] struct {
	Status Status
	Data   T
	Notice *Notice
}

// ErrUnmounted is returned by operations on a screen that is not mounted.
var ErrUnmounted = errors.New("screen is not mounted")

// screen scopes every operation to the mount it started in. Unmount cancels
// the scope; results that arrive afterwards, or after a newer operation
// started, leave the view untouched.
type screen[T any] struct {
	name string
	env  Env

	mu     sync.Mutex
	view   View[T]
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *screen[T]) init(name string, env Env, initial Status) {
	s.name = name
	s.env = env.withDefaults()
	s.view.Status = initial
}

func (s *screen[T]) attach(parent context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	s.ctx, s.cancel = context.WithCancel(parent)
}

// Unmount cancels whatever the screen is waiting on.
func (s *screen[T]) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	s.ctx, s.cancel = nil, nil
}

// View returns the current snapshot.
func (s *screen[T]) View() View[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *screen[T]) data() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Data
}

// run executes op in the current scope and folds its outcome into the view.
func (s *screen[T]) run(op func(ctx context.Context) (T, error), isEmpty func(T) bool) error {
	s.mu.Lock()
	if s.ctx == nil {
		s.mu.Unlock()
		return ErrUnmounted
	}
	s.gen++
	gen, ctx := s.gen, s.ctx
	s.view.Status = StatusLoading
	s.view.Notice = nil
	s.mu.Unlock()

	data, err := op(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.env.Logger.Debug("discarding stale result", "screen", s.name, "err", err)
		return err
	}
	if err != nil {
		s.failLocked(err)
		return err
	}
	s.view.Data = data
	s.view.Status = StatusSuccess
	if isEmpty != nil && isEmpty(data) {
		s.view.Status = StatusEmpty
	}
	return nil
}

// fail records an error that happened before any call was made.
func (s *screen[T]) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLocked(err)
	return err
}

func (s *screen[T]) failLocked(err error) {
	notice := s.env.Policy.Describe(err)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		s.env.Logger.Warn("screen operation failed", "screen", s.name, "err", err)
	}
	s.view.Status = StatusError
	s.view.Notice = &notice
}

// inform attaches an informational notice to a successful view.
func (s *screen[T]) inform(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Notice = &Notice{Severity: SeverityInfo, Message: msg}
}
