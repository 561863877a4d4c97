package guard_test

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/jrsteele09/lead-dashboard/agents"
	"github.com/jrsteele09/lead-dashboard/guard"
	"github.com/jrsteele09/lead-dashboard/sessions"
	"github.com/stretchr/testify/require"
)

var protectedPaths = []string{
	"/",
	"/leads",
	"/upload",
	"/custom-insight",
	"/risk-assessment/L1",
	"/documents/L1/AADHAR",
	"/audio/9f2c",
}

// randomPaths mixes known views, their variants and junk.
func randomPaths(n int) []string {
	r := rand.New(rand.NewSource(42))
	alphabet := []string{"leads", "login", "signup", "audio", "documents", "x", "L1", "..", "", "risk-assessment", "%20"}
	paths := append([]string{}, protectedPaths...)
	paths = append(paths, "/login", "/signup", "/login/", "/signup?next=/leads", "/nope", "/documents/L1", "/leads/L1/extra")
	for i := 0; i < n; i++ {
		depth := r.Intn(4)
		parts := make([]string, depth)
		for j := range parts {
			parts[j] = alphabet[r.Intn(len(alphabet))]
		}
		paths = append(paths, "/"+strings.Join(parts, "/"))
	}
	return paths
}

func TestDecide_Unauthenticated(t *testing.T) {
	t.Run("protected paths redirect to login", func(t *testing.T) {
		for _, path := range protectedPaths {
			d := guard.Decide(guard.Unauthenticated, path)
			require.Equal(t, guard.RedirectLogin, d.Outcome, path)
			require.Equal(t, guard.PathLogin, d.Location)
		}
	})

	t.Run("public paths allowed", func(t *testing.T) {
		for _, path := range []string{"/login", "/signup", "/login/", "/signup?x=1"} {
			d := guard.Decide(guard.Unauthenticated, path)
			require.Equal(t, guard.Allow, d.Outcome, path)
		}
	})

	t.Run("never allows a protected path", func(t *testing.T) {
		for _, path := range randomPaths(500) {
			d := guard.Decide(guard.Unauthenticated, path)
			if d.Outcome == guard.Allow {
				require.True(t, d.Route.Public, "allowed non-public path %q", path)
			}
		}
	})
}

func TestDecide_Authenticated(t *testing.T) {
	t.Run("login and signup redirect home", func(t *testing.T) {
		for _, path := range []string{"/login", "/signup", "/login/"} {
			d := guard.Decide(guard.Authenticated, path)
			require.Equal(t, guard.RedirectHome, d.Outcome, path)
			require.Equal(t, guard.PathLanding, d.Location)
		}
	})

	t.Run("protected paths allowed", func(t *testing.T) {
		for _, path := range protectedPaths {
			d := guard.Decide(guard.Authenticated, path)
			require.Equal(t, guard.Allow, d.Outcome, path)
		}
	})

	t.Run("unknown paths redirect home", func(t *testing.T) {
		for _, path := range []string{"/nope", "/documents/L1", "/leads/L1/extra"} {
			d := guard.Decide(guard.Authenticated, path)
			require.Equal(t, guard.RedirectHome, d.Outcome, path)
		}
	})

	t.Run("never allows login or signup", func(t *testing.T) {
		for _, path := range randomPaths(500) {
			d := guard.Decide(guard.Authenticated, path)
			if d.Outcome == guard.Allow {
				require.False(t, d.Route.Public, "allowed public path %q", path)
				require.NotEqual(t, guard.PathLogin, d.Location)
				require.NotEqual(t, guard.PathSignup, d.Location)
			}
		}
	})
}

func TestDecide_UninitializedIsLoading(t *testing.T) {
	for _, path := range randomPaths(50) {
		d := guard.Decide(guard.Uninitialized, path)
		require.Equal(t, guard.Loading, d.Outcome, path)
		require.Empty(t, d.Location)
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		path   string
		name   guard.RouteName
		params map[string]string
	}{
		{"/", guard.RouteHome, map[string]string{}},
		{"", guard.RouteHome, map[string]string{}},
		{"//", guard.RouteHome, map[string]string{}},
		{"///?tab=1", guard.RouteHome, map[string]string{}},
		{"/leads/", guard.RouteLeads, map[string]string{}},
		{"/risk-assessment/L1", guard.RouteRiskAssessment, map[string]string{"leadId": "L1"}},
		{"/documents/L1/PAN?tab=ocr", guard.RouteDocument, map[string]string{"leadId": "L1", "documentType": "PAN"}},
		{"/audio/abc", guard.RouteAudio, map[string]string{"id": "abc"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.path), func(t *testing.T) {
			route, ok := guard.Match(tt.path)
			require.True(t, ok)
			require.Equal(t, tt.name, route.Name)
			require.Equal(t, tt.params, route.Params)
		})
	}

	_, ok := guard.Match("/risk-assessment")
	require.False(t, ok)
}

func TestNormalize(t *testing.T) {
	require.Equal(t, guard.PathLanding, guard.Normalize("//"))
	require.Equal(t, guard.PathLanding, guard.Normalize("?next=/leads"))
	require.Equal(t, "/leads", guard.Normalize("leads//"))

	decision := guard.Decide(guard.Authenticated, "//")
	require.Equal(t, guard.Allow, decision.Outcome)
	require.Equal(t, guard.PathLanding, decision.Location)
}

func TestMachine_FollowsSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := sessions.NewStore(sessions.NewInMemoryStorage(), "browser")
	machine := guard.NewMachine(store)
	defer machine.Close()

	require.Equal(t, guard.Uninitialized, machine.State())
	require.Equal(t, guard.Loading, machine.Evaluate("/leads").Outcome)

	store.Initialize(ctx)
	require.Equal(t, guard.Unauthenticated, machine.State())

	d := machine.Evaluate("/leads")
	require.Equal(t, guard.RedirectLogin, d.Outcome)
	require.Equal(t, "/login", d.Location)

	require.NoError(t, store.Login(ctx, agents.Identity{ID: "a1", Name: "Alice", Email: "a@x.com"}))
	require.Equal(t, guard.Authenticated, machine.State())

	d = machine.Evaluate("/login")
	require.Equal(t, guard.RedirectHome, d.Outcome)
	require.Equal(t, "/", d.Location)
	require.Equal(t, guard.Allow, machine.Evaluate("/leads").Outcome)

	store.Logout(ctx)
	require.Equal(t, guard.Unauthenticated, machine.State())
	require.Equal(t, guard.RedirectLogin, machine.Evaluate("/leads").Outcome)
}

func TestMachine_StartsFromInitializedStore(t *testing.T) {
	ctx := context.Background()
	storage := sessions.NewInMemoryStorage()
	require.NoError(t, sessions.NewStore(storage, "browser").Login(ctx, agents.Identity{ID: "a1", Name: "Alice", Email: "a@x.com"}))

	store := sessions.NewStore(storage, "browser")
	store.Initialize(ctx)

	machine := guard.NewMachine(store)
	defer machine.Close()
	require.Equal(t, guard.Authenticated, machine.State())
}
