package sessions

import "github.com/jrsteele09/lead-dashboard/agents"

// Durable storage keys. A session is logged in only when all three are present.
const (
	KeyAgentID    = "agentId"
	KeyAgentName  = "agentName"
	KeyAgentEmail = "agentEmail"
)

var sessionKeys = []string{KeyAgentID, KeyAgentName, KeyAgentEmail}

// Session is either fully populated or the zero value.
type Session struct {
	agents.Identity
}

func (s Session) Authenticated() bool {
	return s.ID != ""
}

// EventKind identifies which lifecycle step produced an Event.
type EventKind int

const (
	EventInitialized EventKind = iota + 1
	EventLoggedIn
	EventLoggedOut
)

func (k EventKind) String() string {
	switch k {
	case EventInitialized:
		return "initialized"
	case EventLoggedIn:
		return "logged_in"
	case EventLoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after every lifecycle change.
type Event struct {
	Kind    EventKind
	Session Session
}
