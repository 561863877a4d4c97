package views_test

import (
	"testing"

	"github.com/jrsteele09/lead-dashboard/agents"
	"github.com/jrsteele09/lead-dashboard/views"
	"github.com/stretchr/testify/require"
)

func TestChromePublishAndRetract(t *testing.T) {
	alice := agents.Identity{ID: "a1", Name: "Alice", Email: "a@x.com"}
	var chrome views.Chrome
	chrome.SetAgent(alice)

	scope := chrome.Publish("L1", "Ravi")
	require.True(t, scope.Owns())
	require.Equal(t, views.ChromeView{Agent: alice, LeadID: "L1", LeadName: "Ravi"}, chrome.View())

	scope.Close()
	require.Equal(t, views.ChromeView{Agent: alice}, chrome.View())
	require.False(t, scope.Owns())
}

func TestChromeStaleScopeCannotRetract(t *testing.T) {
	var chrome views.Chrome

	l1 := chrome.Publish("L1", "")
	l2 := chrome.Publish("L2", "Asha")

	require.False(t, l1.SetName("Ravi"), "superseded scope cannot update the name")
	l1.Close()
	require.Equal(t, "Asha", chrome.View().LeadName)

	require.True(t, l2.SetName("Asha K"))
	require.Equal(t, "Asha K", chrome.View().LeadName)
	require.Equal(t, "L2", l2.LeadID())
}

func TestChromeClear(t *testing.T) {
	var chrome views.Chrome
	chrome.SetAgent(agents.Identity{ID: "a1", Name: "Alice", Email: "a@x.com"})
	scope := chrome.Publish("L1", "Ravi")

	chrome.Clear()
	require.Equal(t, views.ChromeView{}, chrome.View())
	require.False(t, scope.Owns())
}
