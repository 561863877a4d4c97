// Package guard decides whether a requested view is reachable for the current
// session state.
package guard

import (
	"sync"

	"github.com/jrsteele09/lead-dashboard/internal/metrics"
	"github.com/jrsteele09/lead-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

type State int

const (
	Uninitialized State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "AUTHENTICATED"
	case Unauthenticated:
		return "UNAUTHENTICATED"
	default:
		return "UNINITIALIZED"
	}
}

type Outcome int

const (
	Allow Outcome = iota + 1
	Loading
	RedirectLogin
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Decision is the result of evaluating one navigation attempt.
type Decision struct {
	Outcome  Outcome
	Location string // where to go: the requested path for Allow, the target for redirects
	Route    Route  // set when the path matched a known view
}

// Decide is a pure function of the session state and the requested path.
func Decide(state State, path string) Decision {
	route, known := Match(path)

	switch state {
	case Authenticated:
		if !known || route.Public {
			return Decision{Outcome: RedirectHome, Location: PathLanding, Route: route}
		}
		return Decision{Outcome: Allow, Location: route.Path, Route: route}

	case Unauthenticated:
		if known && route.Public {
			return Decision{Outcome: Allow, Location: route.Path, Route: route}
		}
		return Decision{Outcome: RedirectLogin, Location: PathLogin, Route: route}

	default:
		return Decision{Outcome: Loading, Route: route}
	}
}

// StateOf maps a session to the guard state it implies.
func StateOf(initialized bool, session sessions.Session) State {
	switch {
	case !initialized:
		return Uninitialized
	case session.Authenticated():
		return Authenticated
	default:
		return Unauthenticated
	}
}

// Machine tracks the guard state for one session store.
type Machine struct {
	mu          sync.RWMutex
	state       State
	unsubscribe func()
}

// NewMachine subscribes to store and follows its lifecycle.
func NewMachine(store *sessions.Store) *Machine {
	m := &Machine{}
	m.unsubscribe = store.Subscribe(m.onEvent)
	if store.Initialized() {
		m.transition(StateOf(true, store.Current()))
	}
	return m
}

func (m *Machine) onEvent(event sessions.Event) {
	switch event.Kind {
	case sessions.EventLoggedIn:
		m.transition(Authenticated)
	case sessions.EventLoggedOut:
		m.transition(Unauthenticated)
	case sessions.EventInitialized:
		m.transition(StateOf(true, event.Session))
	}
}

func (m *Machine) transition(to State) {
	m.mu.Lock()
	from := m.state
	m.state = to
	m.mu.Unlock()

	if from == to {
		return
	}
	metrics.GuardTransitions.WithLabelValues(from.String(), to.String()).Inc()
	log.Debug().Str("from", from.String()).Str("to", to.String()).Msg("Route guard transition")
}

func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Evaluate decides a navigation attempt against the current state. It is
// meant to be called on every navigation, not once at boot.
func (m *Machine) Evaluate(path string) Decision {
	decision := Decide(m.State(), path)
	metrics.GuardDecisions.WithLabelValues(decision.Outcome.String()).Inc()
	return decision
}

// Close stops following the session store.
func (m *Machine) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}
