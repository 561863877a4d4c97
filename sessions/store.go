package sessions

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/jrsteele09/lead-dashboard/agents"
	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
	"github.com/rs/zerolog/log"
)

// Listener receives session lifecycle events. Listeners run synchronously on
// the goroutine that caused the change and must not call Login or Logout.
type Listener func(Event)

// Store is the single source of truth for which agent is logged in for one
// client namespace. It is the only mutable state shared between views;
// everything else reads it through Current or a subscription.
type Store struct {
	storage   Storage
	namespace string

	opMu sync.Mutex // serialises Initialize, Login and Logout

	mu          sync.RWMutex
	session     Session
	initialized bool
	listeners   map[int]Listener
	nextID      int

	ready     chan struct{}
	readyOnce sync.Once
}

// NewStore creates an uninitialised store for namespace.
func NewStore(storage Storage, namespace string) *Store {
	return &Store{
		storage:   storage,
		namespace: namespace,
		listeners: make(map[int]Listener),
		ready:     make(chan struct{}),
	}
}

func (s *Store) Namespace() string {
	return s.namespace
}

// Initialize restores the session from durable storage. Only a complete set
// of the three keys yields a logged-in session; anything else, including a
// storage failure, leaves the session empty. Ready is closed on the first call.
func (s *Store) Initialize(ctx context.Context) Session {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	restored, err := s.read(ctx)
	if err != nil {
		log.Warn().Err(err).Str("namespace", s.namespace).Msg("Session restore failed, treating as logged out")
		restored = Session{}
	}

	s.mu.Lock()
	s.session = restored
	s.initialized = true
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })
	s.notify(Event{Kind: EventInitialized, Session: restored})
	return restored
}

func (s *Store) read(ctx context.Context) (Session, error) {
	values := make(map[string]string, len(sessionKeys))
	for _, key := range sessionKeys {
		value, err := s.storage.Get(ctx, s.namespace, key)
		if apperrors.Is(err, apperrors.ErrSessionNotFound) {
			return Session{}, nil
		}
		if err != nil {
			return Session{}, apperrors.Join(apperrors.ErrStorage, err)
		}
		if value == "" {
			return Session{}, nil
		}
		values[key] = value
	}
	return Session{Identity: agents.Identity{
		ID:    values[KeyAgentID],
		Name:  values[KeyAgentName],
		Email: values[KeyAgentEmail],
	}}, nil
}

// Login persists a complete agent identity and publishes the new session.
// A failed write rolls storage back and leaves the store logged out.
func (s *Store) Login(ctx context.Context, identity agents.Identity) error {
	if !identity.Complete() {
		return fmt.Errorf("[sessions Login] %w", apperrors.ErrIncompleteIdentity)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	values := map[string]string{
		KeyAgentID:    identity.ID,
		KeyAgentName:  identity.Name,
		KeyAgentEmail: identity.Email,
	}
	for _, key := range sessionKeys {
		if err := s.storage.Set(ctx, s.namespace, key, values[key]); err != nil {
			s.clearStorage(ctx)
			s.reset()
			return fmt.Errorf("[sessions Login] persist %s: %w", key, apperrors.Join(apperrors.ErrStorage, err))
		}
	}

	session := Session{Identity: identity}
	s.mu.Lock()
	s.session = session
	s.initialized = true
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })
	s.notify(Event{Kind: EventLoggedIn, Session: session})
	return nil
}

// Logout clears durable storage and resets the session. It never fails;
// storage errors are logged and the in-memory session is cleared regardless.
func (s *Store) Logout(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.clearStorage(ctx)
	s.reset()
}

func (s *Store) clearStorage(ctx context.Context) {
	for _, key := range sessionKeys {
		if err := s.storage.Delete(ctx, s.namespace, key); err != nil {
			log.Err(err).Str("namespace", s.namespace).Str("key", key).Msg("Failed to clear session key")
		}
	}
}

func (s *Store) reset() {
	s.mu.Lock()
	s.session = Session{}
	s.initialized = true
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })
	s.notify(Event{Kind: EventLoggedOut})
}

// Current returns a copy of the session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Initialized reports whether Initialize (or a login/logout) has completed.
// It distinguishes "still restoring" from "logged out".
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Ready is closed once the store has been initialised.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Subscribe registers fn for lifecycle events and returns its cancel func.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(event Event) {
	s.mu.RLock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	listeners := make([]Listener, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(event)
	}
}
