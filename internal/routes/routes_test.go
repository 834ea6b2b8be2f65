package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/experiencepoints/api/internal/app"
	"github.com/experiencepoints/api/internal/config"
	"github.com/experiencepoints/api/internal/testutil"
)

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

func newClient(t *testing.T) *apiClient {
	t.Helper()

	cfg := &config.Config{
		AppEnv:                 "development",
		AppURL:                 "https://xp.example",
		DBDriver:               "sqlite",
		JWTSecret:              "test-secret",
		JWTExpiry:              time.Hour,
		GoalDefaultDeadline:    90 * 24 * time.Hour,
		CORSAllowedOrigins:     []string{"*"},
		RateLimitAuthPerMinute: 1000,
	}

	a, err := app.Build(cfg, testutil.NewDB(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return &apiClient{t: t, handler: SetupRoutes(a)}
}

func (c *apiClient) do(method, path, token string, body any) (int, map[string]any) {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()

	c.handler.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (c *apiClient) register(username, template string) string {
	c.t.Helper()

	status, body := c.do(http.MethodPost, "/api/register", "", map[string]string{
		"username": username,
		"password": "pass1234",
		"template": template,
	})
	require.Equal(c.t, http.StatusOK, status, body)
	return body["token"].(string)
}

func TestRegisterAndLogin(t *testing.T) {
	c := newClient(t)

	status, body := c.do(http.MethodPost, "/api/register", "", map[string]string{
		"username": "alice123", "password": "pass1234", "template": "polyglot",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Registration successful", body["message"])
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "alice123", body["user"].(map[string]any)["username"])

	status, body = c.do(http.MethodPost, "/api/register", "", map[string]string{
		"username": "alice123", "password": "pass1234",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Username already exists", body["error"])

	status, body = c.do(http.MethodPost, "/api/register", "", map[string]string{
		"username": "bob_runner", "password": "onlyletters",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Password must contain both letters and numbers", body["error"])

	status, body = c.do(http.MethodPost, "/api/login", "", map[string]string{
		"username": "alice123", "password": "pass1234",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Login successful", body["message"])
	token := body["token"].(string)

	status, body = c.do(http.MethodPost, "/api/login", "", map[string]string{
		"username": "alice123", "password": "wrong1234",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid username or password", body["error"])

	status, body = c.do(http.MethodGet, "/api/goals", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["skills"], 3)
	assert.Len(t, body["financial"], 0)

	status, body = c.do(http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Logout successful", body["message"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	c := newClient(t)

	status, body := c.do(http.MethodGet, "/api/goals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Token is missing", body["error"])

	status, body = c.do(http.MethodGet, "/api/friends", "nonsense", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Token is invalid", body["error"])
}

func TestGoalLifecycle(t *testing.T) {
	c := newClient(t)
	alice := c.register("alice123", "")
	bob := c.register("bob_runner", "")

	status, body := c.do(http.MethodPost, "/api/goals", alice, map[string]any{
		"name": "Savings", "type": "financial", "target": 1000, "deadline": "2027-01-01",
	})
	require.Equal(t, http.StatusOK, status, body)
	goalID := int64(body["id"].(float64))
	assert.Equal(t, 0.0, body["current"])
	assert.Equal(t, "inherit", body["visibility"])
	assert.Len(t, body["history"], 1)

	status, body = c.do(http.MethodPost, "/api/goals", alice, map[string]any{"id": goalID, "current": 250})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 250.0, body["current"])
	assert.Len(t, body["history"], 2)

	status, body = c.do(http.MethodPost, "/api/goals", bob, map[string]any{"id": goalID, "current": 999})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Goal not found", body["error"])

	status, body = c.do(http.MethodPost, "/api/goals", alice, map[string]any{"name": "Chess", "type": "hobby"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid type", body["error"])

	status, body = c.do(http.MethodPost, "/api/goals", alice, map[string]any{"name": "Chess", "deadline": "soon"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid deadline format", body["error"])

	status, body = c.do(http.MethodPost, "/api/goals/visibility", alice, map[string]any{"goal_id": goalID, "visibility": "friends"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid visibility setting", body["error"])

	status, body = c.do(http.MethodPost, "/api/goals/visibility", alice, map[string]any{"goal_id": goalID, "visibility": "public"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "public", body["visibility"])

	status, _ = c.do(http.MethodDelete, fmt.Sprintf("/api/goals/%d", goalID), bob, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = c.do(http.MethodDelete, fmt.Sprintf("/api/goals/%d", goalID), alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Goal deleted successfully", body["message"])

	status, _ = c.do(http.MethodDelete, "/api/goals/abc", alice, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestShareLinks(t *testing.T) {
	c := newClient(t)
	alice := c.register("alice123", "polyglot")

	_, goals := c.do(http.MethodGet, "/api/goals", alice, nil)
	first := goals["skills"].([]any)[0].(map[string]any)

	status, body := c.do(http.MethodPost, "/api/profile/share", alice, map[string]any{
		"goal_ids": []any{first["id"]},
	})
	require.Equal(t, http.StatusOK, status)
	shareID := body["share_id"].(string)
	assert.Equal(t, "https://xp.example/share/"+shareID, body["share_url"])
	assert.Nil(t, body["expires_at"])

	status, body = c.do(http.MethodGet, "/api/share/"+shareID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice123", body["user"].(map[string]any)["username"])
	require.Len(t, body["goals"], 1)
	assert.Equal(t, first["id"], body["goals"].([]any)[0].(map[string]any)["id"])

	status, body = c.do(http.MethodGet, "/api/profile/shares", alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["shares"], 1)

	status, _ = c.do(http.MethodDelete, "/api/profile/shares/"+shareID, alice, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = c.do(http.MethodGet, "/api/share/"+shareID, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Share link not found or inactive", body["error"])
}

func TestPermanentProfile(t *testing.T) {
	c := newClient(t)
	alice := c.register("alice123", "polyglot")
	bob := c.register("bob_runner", "")

	status, body := c.do(http.MethodPost, "/api/profile/permanent-link", alice, nil)
	require.Equal(t, http.StatusOK, status)
	profileID := body["profile_id"].(string)
	assert.Equal(t, "https://xp.example/profile/"+profileID, body["profile_url"])

	_, again := c.do(http.MethodPost, "/api/profile/permanent-link", alice, nil)
	assert.Equal(t, profileID, again["profile_id"])

	status, body = c.do(http.MethodGet, "/api/profile/"+profileID, "", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "This profile is not public", body["error"])

	status, body = c.do(http.MethodPost, "/api/profile/visibility", alice, map[string]string{"visibility": "friends"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "friends", body["profile_visibility"])

	status, _ = c.do(http.MethodGet, "/api/profile/"+profileID, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)

	_, added := c.do(http.MethodPost, "/api/friends/add", bob, map[string]string{"username": "alice123"})
	status, _ = c.do(http.MethodPost, "/api/friends/respond", alice, map[string]any{
		"request_id": added["request_id"], "response": "accept",
	})
	require.Equal(t, http.StatusOK, status)

	status, body = c.do(http.MethodGet, "/api/profile/"+profileID, bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["goals"], 3)

	status, _ = c.do(http.MethodGet, "/api/profile/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestFriends(t *testing.T) {
	c := newClient(t)
	alice := c.register("alice123", "")
	bob := c.register("bob_runner", "")

	status, body := c.do(http.MethodPost, "/api/friends/add", bob, map[string]string{"username": "alice123"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Friend request sent", body["message"])
	requestID := body["request_id"]

	status, body = c.do(http.MethodPost, "/api/friends/add", alice, map[string]string{"username": "bob_runner"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Friend request already pending", body["error"])

	status, body = c.do(http.MethodPost, "/api/friends/add", alice, map[string]string{"username": "alice123"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Cannot add yourself as a friend", body["error"])

	status, body = c.do(http.MethodPost, "/api/friends/add", alice, map[string]string{"username": "ghost"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", body["error"])

	status, body = c.do(http.MethodGet, "/api/friends/requests", alice, nil)
	require.Equal(t, http.StatusOK, status)
	requests := body["requests"].([]any)
	require.Len(t, requests, 1)
	assert.Equal(t, "bob_runner", requests[0].(map[string]any)["username"])
	assert.Equal(t, requestID, requests[0].(map[string]any)["request_id"])

	status, body = c.do(http.MethodPost, "/api/friends/respond", alice, map[string]any{"request_id": requestID, "response": "maybe"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid response", body["error"])

	status, body = c.do(http.MethodPost, "/api/friends/respond", alice, map[string]any{"request_id": requestID, "response": "accept"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Friend request accepted", body["message"])

	for _, token := range []string{alice, bob} {
		status, body = c.do(http.MethodGet, "/api/friends", token, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, body["friends"], 1)
	}
}

func TestCatalogRoutes(t *testing.T) {
	c := newClient(t)
	token := c.register("alice123", "")

	status, body := c.do(http.MethodGet, "/api/templates", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["templates"], 7)

	status, body = c.do(http.MethodPost, "/api/facts", token, map[string]string{"searchTerm": "Weekend cycling club"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Cycling", body["activity"])
	assert.NotEmpty(t, body["fact"])

	status, body = c.do(http.MethodPost, "/api/facts", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No search term provided", body["error"])
}

func TestHealthAndFallbacks(t *testing.T) {
	c := newClient(t)

	status, body := c.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body = c.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Not found", body["error"])
}
