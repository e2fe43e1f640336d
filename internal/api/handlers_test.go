package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinpasricha/team-to-doers/internal/config"
	"github.com/kevinpasricha/team-to-doers/internal/database"
)

type todoResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{APIPort: 8081}
	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = filepath.Join(t.TempDir(), "api_test.db")
	cfg.Database.MaxRetries = 1
	cfg.Session.TTLHours = 24
	cfg.Session.CleanupMinutes = 60
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}

	store, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	apiInstance, err := NewApi(cfg, store)
	require.NoError(t, err)

	server := httptest.NewServer(apiInstance.Router)
	t.Cleanup(server.Close)
	return server
}

// newClient returns a client with its own cookie jar, i.e. its own
// browser session.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

// registerAndLogin creates a fresh user and returns a client holding
// its session cookie. The uuid suffix keeps fixtures from colliding.
func registerAndLogin(t *testing.T, server *httptest.Server, username string) *http.Client {
	t.Helper()

	client := newClient(t)
	email := fmt.Sprintf("%s-%s@x.com", username, uuid.NewString()[:8])

	resp := doJSON(t, client, http.MethodPost, server.URL+"/register", map[string]string{
		"username": username,
		"email":    email,
		"password": "password1",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode, "registration should succeed")

	resp = doJSON(t, client, http.MethodPost, server.URL+"/login", map[string]string{
		"username": username,
		"password": "password1",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "login should succeed")

	return client
}

func TestRegisterValidation(t *testing.T) {
	server := newTestServer(t)
	client := newClient(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing username", map[string]string{"email": "a@x.com", "password": "password1"}},
		{"missing email", map[string]string{"username": "alice", "password": "password1"}},
		{"missing password", map[string]string{"username": "alice", "email": "a@x.com"}},
		{"bad email", map[string]string{"username": "alice", "email": "not-an-email", "password": "password1"}},
		{"short password", map[string]string{"username": "alice", "email": "a@x.com", "password": "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, client, http.MethodPost, server.URL+"/register", tt.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	server := newTestServer(t)
	client := newClient(t)

	resp := doJSON(t, client, http.MethodPost, server.URL+"/register", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "password1",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("duplicate username", func(t *testing.T) {
		resp := doJSON(t, client, http.MethodPost, server.URL+"/register", map[string]string{
			"username": "alice", "email": "different@x.com", "password": "password1",
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Username already taken", body["error"])
	})

	t.Run("duplicate email", func(t *testing.T) {
		resp := doJSON(t, client, http.MethodPost, server.URL+"/register", map[string]string{
			"username": "bob", "email": "a@x.com", "password": "password1",
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Email already registered", body["error"])
	})
}

func TestLoginInvalidCredentials(t *testing.T) {
	server := newTestServer(t)
	client := newClient(t)

	resp := doJSON(t, client, http.MethodPost, server.URL+"/register", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "password1",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	readError := func(resp *http.Response) string {
		defer resp.Body.Close()
		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body["error"]
	}

	wrongPassword := doJSON(t, client, http.MethodPost, server.URL+"/login", map[string]string{
		"username": "alice", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, wrongPassword.StatusCode)

	unknownUser := doJSON(t, client, http.MethodPost, server.URL+"/login", map[string]string{
		"username": "nobody", "password": "password1",
	})
	assert.Equal(t, http.StatusBadRequest, unknownUser.StatusCode)

	// Same message either way, no user enumeration
	assert.Equal(t, readError(wrongPassword), readError(unknownUser))
}

func TestLoginSetsHttpOnlyCookie(t *testing.T) {
	server := newTestServer(t)
	client := newClient(t)

	resp := doJSON(t, client, http.MethodPost, server.URL+"/register", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "password1",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, client, http.MethodPost, server.URL+"/login", map[string]string{
		"username": "alice", "password": "password1",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "session_token" {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "login should set the session cookie")
	assert.True(t, sessionCookie.HttpOnly)
	assert.NotEmpty(t, sessionCookie.Value)
}

func TestDashboard(t *testing.T) {
	server := newTestServer(t)

	t.Run("greets the logged-in user", func(t *testing.T) {
		client := registerAndLogin(t, server, "alice")
		resp := doJSON(t, client, http.MethodGet, server.URL+"/dashboard", nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "Welcome, alice!", string(body))
	})

	t.Run("rejects anonymous requests", func(t *testing.T) {
		resp := doJSON(t, newClient(t), http.MethodGet, server.URL+"/dashboard", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestTodoLifecycle(t *testing.T) {
	server := newTestServer(t)
	client := registerAndLogin(t, server, "alice")

	// Create
	resp := doJSON(t, client, http.MethodPost, server.URL+"/todos", map[string]string{
		"title": "T", "description": "D", "dueDate": "2025-05-20",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created todoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.NotZero(t, created.ID)
	assert.Equal(t, "T", created.Title)
	assert.Equal(t, "D", created.Description)
	assert.Equal(t, "2025-05-20", created.DueDate)

	// List contains it
	resp = doJSON(t, client, http.MethodGet, server.URL+"/todos", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var todos []todoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&todos))
	resp.Body.Close()
	require.Len(t, todos, 1)
	assert.Equal(t, created.ID, todos[0].ID)

	// Delete
	resp = doJSON(t, client, http.MethodDelete, fmt.Sprintf("%s/todos/%d", server.URL, created.ID), nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// List is empty again
	resp = doJSON(t, client, http.MethodGet, server.URL+"/todos", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&todos))
	resp.Body.Close()
	assert.Empty(t, todos)
}

func TestUpdateTodo(t *testing.T) {
	server := newTestServer(t)
	client := registerAndLogin(t, server, "alice")

	resp := doJSON(t, client, http.MethodPost, server.URL+"/todos", map[string]string{
		"title": "Test Todo", "description": "This is a test todo", "dueDate": "2025-05-20",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created todoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	resp = doJSON(t, client, http.MethodPut, fmt.Sprintf("%s/todos/%d", server.URL, created.ID), map[string]string{
		"title": "Updated Todo", "description": "This todo has been updated", "dueDate": "2025-06-15",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated todoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	resp.Body.Close()
	assert.Equal(t, "Updated Todo", updated.Title)
	assert.Equal(t, "This todo has been updated", updated.Description)
	assert.Equal(t, "2025-06-15", updated.DueDate)
}

func TestUpdateNonexistentTodo(t *testing.T) {
	server := newTestServer(t)
	client := registerAndLogin(t, server, "alice")

	resp := doJSON(t, client, http.MethodPut, server.URL+"/todos/999999", map[string]string{
		"title": "T", "description": "D", "dueDate": "2025-05-20",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTodoValidation(t *testing.T) {
	server := newTestServer(t)
	client := registerAndLogin(t, server, "alice")

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing title", map[string]string{"title": "", "description": "D", "dueDate": "2025-05-20"}},
		{"missing description", map[string]string{"title": "T", "description": "", "dueDate": "2025-05-20"}},
		{"missing due date", map[string]string{"title": "T", "description": "D", "dueDate": ""}},
		{"malformed due date", map[string]string{"title": "T", "description": "D", "dueDate": "not-a-date"}},
		{"impossible due date", map[string]string{"title": "T", "description": "D", "dueDate": "2025-13-45"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, client, http.MethodPost, server.URL+"/todos", tt.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	// Nothing was created by the rejected requests
	resp := doJSON(t, client, http.MethodGet, server.URL+"/todos", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var todos []todoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&todos))
	resp.Body.Close()
	assert.Empty(t, todos)
}

func TestTodosRequireSession(t *testing.T) {
	server := newTestServer(t)
	anonymous := newClient(t)

	resp := doJSON(t, anonymous, http.MethodPost, server.URL+"/todos", map[string]string{
		"title": "T", "description": "D", "dueDate": "2025-05-20",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, anonymous, http.MethodGet, server.URL+"/todos", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The rejected create had no side effect
	owner := registerAndLogin(t, server, "alice")
	resp = doJSON(t, owner, http.MethodGet, server.URL+"/todos", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var todos []todoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&todos))
	resp.Body.Close()
	assert.Empty(t, todos)
}

func TestOwnershipIsolation(t *testing.T) {
	server := newTestServer(t)
	alice := registerAndLogin(t, server, "alice")
	bob := registerAndLogin(t, server, "bob")

	resp := doJSON(t, alice, http.MethodPost, server.URL+"/todos", map[string]string{
		"title": "Alice's Todo", "description": "private", "dueDate": "2025-05-20",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created todoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	// Bob never sees it
	resp = doJSON(t, bob, http.MethodGet, server.URL+"/todos", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bobTodos []todoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bobTodos))
	resp.Body.Close()
	assert.Empty(t, bobTodos)

	// Bob's mutations fail exactly like a missing todo
	resp = doJSON(t, bob, http.MethodPut, fmt.Sprintf("%s/todos/%d", server.URL, created.ID), map[string]string{
		"title": "stolen", "description": "d", "dueDate": "2025-05-20",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, bob, http.MethodDelete, fmt.Sprintf("%s/todos/%d", server.URL, created.ID), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Alice still has her todo, unchanged
	resp = doJSON(t, alice, http.MethodGet, server.URL+"/todos", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var aliceTodos []todoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&aliceTodos))
	resp.Body.Close()
	require.Len(t, aliceTodos, 1)
	assert.Equal(t, "Alice's Todo", aliceTodos[0].Title)
}

func TestLogout(t *testing.T) {
	server := newTestServer(t)
	client := registerAndLogin(t, server, "alice")

	resp := doJSON(t, client, http.MethodPost, server.URL+"/logout", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The session no longer validates
	resp = doJSON(t, client, http.MethodGet, server.URL+"/dashboard", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Logging out again, or with no session at all, still succeeds
	resp = doJSON(t, client, http.MethodPost, server.URL+"/logout", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, newClient(t), http.MethodPost, server.URL+"/logout", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHeartbeat(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/heartbeat")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
