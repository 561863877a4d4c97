package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jrsteele09/lead-dashboard/agents"
	"github.com/jrsteele09/lead-dashboard/backend/backendfakes"
	"github.com/jrsteele09/lead-dashboard/internal/config"
	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
	"github.com/jrsteele09/lead-dashboard/leads"
	"github.com/jrsteele09/lead-dashboard/server"
	"github.com/jrsteele09/lead-dashboard/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = agents.Identity{ID: "a1", Name: "Alice", Email: "a@x.com"}

type testFixture struct {
	backend *backendfakes.FakeBackend
	server  *httptest.Server
	client  *http.Client
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("SESSION_SECRET", "test-secret")

	fb := backendfakes.NewFakeBackend()
	fb.AddAgent(alice, "Secret123")
	fb.AddLead("a1", leads.Lead{ID: "L1", Name: "Ravi"})
	fb.AddDocument("L1", leads.DocumentPAN, "d1")

	srv, err := server.New(config.New(), fb, sessions.NewInMemoryStorage())
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testFixture{backend: fb, server: ts, client: client}
}

func (f *testFixture) get(t *testing.T, path string, headers ...string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, f.server.URL+path, nil)
	require.NoError(t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *testFixture) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := f.client.Post(f.server.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *testFixture) login(t *testing.T) {
	t.Helper()
	resp := f.postJSON(t, server.RouteAPILogin, agents.Credentials{Email: alice.Email, Password: "Secret123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestProtectedPageRedirectsToLogin(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.get(t, "/leads")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	htmx := f.get(t, "/leads", "HX-Request", "true")
	require.Equal(t, http.StatusNoContent, htmx.StatusCode)
	require.Equal(t, "/login", htmx.Header.Get("HX-Redirect"))

	login := f.get(t, "/login")
	require.Equal(t, http.StatusOK, login.StatusCode)
	require.Equal(t, "login", decode(t, login)["view"])
}

func TestLoginThenNavigate(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.postJSON(t, server.RouteAPILogin, agents.Credentials{Email: alice.Email, Password: "Secret123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "AUTHENTICATED", body["state"])

	login := f.get(t, "/login")
	require.Equal(t, http.StatusSeeOther, login.StatusCode)
	require.Equal(t, "/", login.Header.Get("Location"))

	unknown := f.get(t, "/no-such-page")
	require.Equal(t, http.StatusSeeOther, unknown.StatusCode)
	require.Equal(t, "/", unknown.Header.Get("Location"))

	page := f.get(t, "/leads")
	require.Equal(t, http.StatusOK, page.StatusCode)
	view := decode(t, page)
	assert.Equal(t, "leads", view["view"])
	data := view["data"].(map[string]any)
	assert.Equal(t, "ready", data["outcome"])
	assert.Len(t, data["data"], 1)
	chrome := view["chrome"].(map[string]any)
	assert.Equal(t, "Alice", chrome["agent"].(map[string]any)["name"])
}

func TestSessionEndpoint(t *testing.T) {
	f := setupTestFixture(t)

	before := decode(t, f.get(t, server.RouteAPISession))
	assert.Equal(t, false, before["authenticated"])
	assert.Equal(t, "UNAUTHENTICATED", before["state"])

	f.login(t)
	after := decode(t, f.get(t, server.RouteAPISession))
	assert.Equal(t, true, after["authenticated"])
	assert.Equal(t, "a1", after["agent"].(map[string]any)["id"])
}

func TestInvalidCredentials(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.postJSON(t, server.RouteAPILogin, agents.Credentials{Email: alice.Email, Password: "nope"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", decode(t, resp)["message"])

	form, err := f.client.PostForm(f.server.URL+server.RouteAPILogin, map[string][]string{"email": {alice.Email}, "password": {"nope"}})
	require.NoError(t, err)
	defer form.Body.Close()
	require.Equal(t, http.StatusSeeOther, form.StatusCode)
	require.True(t, strings.HasPrefix(form.Header.Get("Location"), "/login?error="))
}

func TestMissingDocumentIsUploadPrompt(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	resp := f.get(t, "/documents/L1/AADHAR")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode(t, resp)
	assert.Equal(t, "upload_required", view["data"].(map[string]any)["outcome"])
	assert.Equal(t, "Ravi", view["chrome"].(map[string]any)["leadName"])

	found := decode(t, f.get(t, "/documents/L1/PAN"))
	data := found["data"].(map[string]any)
	assert.Equal(t, "ready", data["outcome"])
	assert.Equal(t, "/api/documents/d1/image", data["data"].(map[string]any)["previewUrl"])
}

func TestPreviewURLSurvivesReservedCharacters(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.AddDocument("L1", leads.DocumentAadhar, "scan/7?v=2")
	f.login(t)

	data := decode(t, f.get(t, "/documents/L1/AADHAR"))["data"].(map[string]any)
	previewURL := data["data"].(map[string]any)["previewUrl"].(string)
	require.Equal(t, "/api/documents/scan%2F7%3Fv=2/image", previewURL)

	img := f.get(t, previewURL)
	require.Equal(t, http.StatusOK, img.StatusCode)
	body, err := io.ReadAll(img.Body)
	require.NoError(t, err)
	assert.Equal(t, "scan/7?v=2", string(body))
}

func TestUploadPageListsLeadsAndTypes(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	resp := f.get(t, "/upload")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode(t, resp)
	assert.Equal(t, "upload", view["view"])

	data := view["data"].(map[string]any)
	picker := data["leads"].(map[string]any)
	assert.Equal(t, "ready", picker["outcome"])
	options := picker["data"].([]any)
	require.Len(t, options, 1)
	assert.Equal(t, "L1", options[0].(map[string]any)["id"])
	assert.Len(t, data["documentTypes"], 3)
}

func TestCustomInsightPage(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	data := decode(t, f.get(t, "/custom-insight"))["data"].(map[string]any)
	types := data["documentTypes"].(map[string]any)
	assert.Equal(t, "ready", types["outcome"])
	first := types["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "REFERENCE_CALL", first["value"])
	assert.NotContains(t, first, "path")

	picked := decode(t, f.get(t, "/custom-insight?leadId=L1"))["data"].(map[string]any)
	assert.Equal(t, "L1", picked["leadId"])
	options := picked["documentTypes"].(map[string]any)["data"].([]any)
	assert.Equal(t, "/documents/L1/REFERENCE_CALL", options[0].(map[string]any)["path"])

	f.backend.Fail("DocumentTypes", apperrors.ErrServiceUnavailable)
	resp := f.get(t, "/custom-insight")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	failed := decode(t, resp)["data"].(map[string]any)
	assert.Equal(t, "error", failed["documentTypes"].(map[string]any)["outcome"])
	assert.Equal(t, "ready", failed["leads"].(map[string]any)["outcome"])
}

func TestBackendOutageIsRetryable(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.backend.Fail("RecentDocument", apperrors.ErrServiceUnavailable)

	resp := f.get(t, "/documents/L1/PAN")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	data := decode(t, resp)["data"].(map[string]any)
	assert.Equal(t, "error", data["outcome"])
	assert.Equal(t, true, data["retryable"])
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	resp := f.postJSON(t, server.RouteAPILogout, map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := f.get(t, "/leads")
	require.Equal(t, http.StatusSeeOther, page.StatusCode)
	require.Equal(t, "/login", page.Header.Get("Location"))
}

func TestTamperedCookieStartsFresh(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/leads", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "loggedInSessionId", Value: "not-a-token"})
	resp, err := http.DefaultTransport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLeadAPIRequiresAgent(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.postJSON(t, server.RouteAPILeads, leads.NewLead{Name: "Kiran"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "/login", decode(t, resp)["redirect"])

	f.login(t)
	created := f.postJSON(t, server.RouteAPILeads, leads.NewLead{Name: "Kiran", DOB: "1990-04-01"})
	require.Equal(t, http.StatusCreated, created.StatusCode)
	assert.Equal(t, "a1", decode(t, created)["agentId"])

	invalid := f.postJSON(t, server.RouteAPILeads, leads.NewLead{Name: "Kiran", DOB: "01/04/1990"})
	require.Equal(t, http.StatusBadRequest, invalid.StatusCode)
	assert.Equal(t, "dob must be YYYY-MM-DD", decode(t, invalid)["message"])
}

func TestUpload(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("leadId", "L1"))
	require.NoError(t, mw.WriteField("documentTypes", "Aadhaar"))
	part, err := mw.CreateFormFile("files", "aadhar.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := f.client.Post(f.server.URL+server.RouteAPIUpload, mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var refs []leads.Reference
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&refs))
	require.Len(t, refs, 1)
	assert.Equal(t, leads.DocumentAadhar, refs[0].Type)

	page := decode(t, f.get(t, "/documents/L1/AADHAR"))
	assert.Equal(t, "ready", page["data"].(map[string]any)["outcome"])
}

func TestOperationalRoutes(t *testing.T) {
	f := setupTestFixture(t)

	health := f.get(t, server.RouteHealthz)
	require.Equal(t, http.StatusOK, health.StatusCode)
	assert.Equal(t, "ok", decode(t, health)["status"])

	metrics := f.get(t, server.RouteMetrics)
	require.Equal(t, http.StatusOK, metrics.StatusCode)
}

func TestRequestIDIsEchoed(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.get(t, server.RouteAPISession)
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
