// Package views ties asynchronous loads to the lifetime of the view that
// started them, so a result can only land in the view that is still showing.
package views

import (
	"context"
	"sync"
)

// Phase is where a view is in its load cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "idle"
	}
}

// Snapshot is what a view currently displays.
type Snapshot[T any] struct {
	Key   string
	Phase Phase
	Value T
}

// Slot holds the data displayed by one view. Each Begin supersedes the
// previous load; only the most recent ticket may commit.
type Slot[T any] struct {
	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	current Snapshot[T]
}

// Ticket is one load into a slot.
type Ticket[T any] struct {
	slot   *Slot[T]
	gen    uint64
	key    string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	applied bool
}

// Begin cancels any load in flight and starts a new one for key.
func (s *Slot[T]) Begin(parent context.Context, key string) *Ticket[T] {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	s.cancel = cancel
	s.current = Snapshot[T]{Key: key, Phase: PhaseLoading}
	gen := s.gen
	s.mu.Unlock()

	return &Ticket[T]{slot: s, gen: gen, key: key, ctx: ctx, cancel: cancel, done: make(chan struct{})}
}

// Load begins a ticket and runs fetch on its own goroutine, committing the
// result if the ticket is still current when fetch returns.
func (s *Slot[T]) Load(parent context.Context, key string, fetch func(context.Context) T) *Ticket[T] {
	t := s.Begin(parent, key)
	go func() {
		t.Commit(fetch(t.ctx))
	}()
	return t
}

// Commit applies value if t is still the slot's current ticket. It reports
// whether the value was applied.
func (t *Ticket[T]) Commit(value T) bool {
	s := t.slot
	s.mu.Lock()
	applied := t.gen == s.gen
	if applied {
		s.current = Snapshot[T]{Key: t.key, Phase: PhaseReady, Value: value}
		s.cancel = nil
	}
	s.mu.Unlock()

	t.finish(applied)
	return applied
}

func (t *Ticket[T]) finish(applied bool) {
	t.once.Do(func() {
		t.cancel()
		t.applied = applied
		close(t.done)
	})
}

// Context is cancelled when the ticket is superseded or the slot is reset.
func (t *Ticket[T]) Context() context.Context {
	return t.ctx
}

func (t *Ticket[T]) Key() string {
	return t.key
}

// Done is closed once the ticket has committed or been discarded.
func (t *Ticket[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the ticket settles and reports whether its value landed.
func (t *Ticket[T]) Wait(ctx context.Context) (bool, error) {
	select {
	case <-t.done:
		return t.applied, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Current reports whether t is still the slot's active ticket.
func (t *Ticket[T]) Current() bool {
	t.slot.mu.Lock()
	defer t.slot.mu.Unlock()
	return t.gen == t.slot.gen
}

// Reset tears the view down. Every outstanding ticket becomes stale.
func (s *Slot[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.current = Snapshot[T]{}
}

// Snapshot returns what the view displays now.
func (s *Slot[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
