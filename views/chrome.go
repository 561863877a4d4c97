package views

import (
	"sync"

	"github.com/jrsteele09/lead-dashboard/agents"
)

// ChromeView is what the navigation chrome shows.
type ChromeView struct {
	Agent    agents.Identity `json:"agent"`
	LeadID   string          `json:"leadId,omitempty"`
	LeadName string          `json:"leadName,omitempty"`
}

// Chrome is the navigation chrome around all views. It only displays the
// active lead; the view that published it owns the value.
type Chrome struct {
	mu    sync.Mutex
	agent agents.Identity
	owner *LeadScope
	view  ChromeView
}

// LeadScope is a publisher's hold on the lead shown in the chrome.
type LeadScope struct {
	chrome *Chrome
	leadID string
}

func (c *Chrome) SetAgent(identity agents.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.agent = identity
	c.view.Agent = identity
}

// Publish shows the lead in the chrome until the returned scope is closed or
// another view publishes.
func (c *Chrome) Publish(leadID, name string) *LeadScope {
	scope := &LeadScope{chrome: c, leadID: leadID}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.owner = scope
	c.view.LeadID = leadID
	c.view.LeadName = name
	return scope
}

// Clear drops everything, including the agent.
func (c *Chrome) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owner = nil
	c.agent = agents.Identity{}
	c.view = ChromeView{}
}

func (c *Chrome) View() ChromeView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (s *LeadScope) LeadID() string {
	return s.leadID
}

// Owns reports whether this scope is still the one displayed.
func (s *LeadScope) Owns() bool {
	s.chrome.mu.Lock()
	defer s.chrome.mu.Unlock()
	return s.chrome.owner == s
}

// SetName updates the displayed name, if the scope still owns the chrome.
func (s *LeadScope) SetName(name string) bool {
	c := s.chrome
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owner != s {
		return false
	}
	c.view.LeadName = name
	return true
}

// Close retracts the lead, if the scope still owns the chrome.
func (s *LeadScope) Close() {
	c := s.chrome
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owner != s {
		return
	}
	c.owner = nil
	c.view = ChromeView{Agent: c.agent}
}
