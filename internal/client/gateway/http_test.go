package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkovs/keepsake/internal/common"
	"github.com/avolkovs/keepsake/internal/logging"
	"github.com/avolkovs/keepsake/internal/server/config"
	"github.com/avolkovs/keepsake/internal/server/httpapi"
	"github.com/avolkovs/keepsake/internal/server/shared/db"
	"github.com/avolkovs/keepsake/internal/server/shares"
	"github.com/avolkovs/keepsake/internal/server/users"
	"github.com/avolkovs/keepsake/internal/server/vault"
)

// newTestBackend runs the real HTTP API over in-memory repositories.
func newTestBackend(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "gateway-test-secret"

	mgr := db.NewInMemoryRepositoryManager()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	api := httpapi.New(
		logger,
		users.NewService(mgr.Users(), mgr.RefreshTokens(), cfg),
		vault.NewService(mgr.Trees(), mgr.Blobs()),
		shares.NewService(mgr.Shares()),
		[]byte(cfg.SecretKey),
	)

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T) *HTTPClient {
	t.Helper()
	return NewHTTPClient(newTestBackend(t).URL, 5*time.Second)
}

func registerTestUser(t *testing.T, c *HTTPClient) {
	t.Helper()
	require.NoError(t, c.Register(context.Background(), "alice", "alice@example.com", "password123"))
	require.True(t, c.Authenticated())
}

func TestHTTPClient_RegisterAndTree(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	assert.False(t, c.Authenticated())
	registerTestUser(t, c)

	tree, err := c.GetTree(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `["default"]`, tree)

	require.NoError(t, c.PutTree(ctx, "opaque-tree-blob"))
	tree, err = c.GetTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, "opaque-tree-blob", tree)
}

func TestHTTPClient_Register_Duplicate(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	registerTestUser(t, c)

	err := c.Register(ctx, "alice", "alice@example.com", "password123")
	assert.ErrorIs(t, err, common.ErrorConflict)
}

func TestHTTPClient_Login(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	registerTestUser(t, c)
	c.Logout()
	assert.False(t, c.Authenticated())

	assert.ErrorIs(t, c.Login(ctx, "alice", "wrong-password"), common.ErrorUnauthorized)
	require.NoError(t, c.Login(ctx, "alice", "password123"))
	assert.True(t, c.Authenticated())
}

func TestHTTPClient_Content(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	registerTestUser(t, c)

	require.NoError(t, c.PutContent(ctx, "notes/todo", "ciphertext"))

	got, err := c.GetContent(ctx, "notes/todo")
	require.NoError(t, err)
	assert.Equal(t, "ciphertext", got)

	_, err = c.GetContent(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	// deletes are idempotent
	require.NoError(t, c.DeleteContent(ctx, "notes/todo"))
	require.NoError(t, c.DeleteContent(ctx, "notes/todo"))
}

func TestHTTPClient_Rename(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	registerTestUser(t, c)

	require.NoError(t, c.PutContent(ctx, "a", "blob"))

	tree, err := c.Rename(ctx, "a", "b")
	require.NoError(t, err)
	assert.NotEmpty(t, tree)

	got, err := c.GetContent(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "blob", got)

	_, err = c.Rename(ctx, "missing", "anywhere")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestHTTPClient_ChangePassword(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	registerTestUser(t, c)

	assert.ErrorIs(t, c.ChangePassword(ctx, "wrong", "newpassword123"), common.ErrorUnauthorized)
	require.NoError(t, c.ChangePassword(ctx, "password123", "newpassword123"))

	c.Logout()
	require.NoError(t, c.Login(ctx, "alice", "newpassword123"))
}

func TestHTTPClient_Shares(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	registerTestUser(t, c)

	id, err := c.CreateShare(ctx, ShareRequest{
		Strategy:       "multipleread",
		MaxDate:        time.Now().Add(time.Hour),
		Password:       "hunter2",
		IV:             "00112233445566778899aabbccddeeff",
		EncodedContent: "encrypted-share",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	list, err := c.ListShares(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].Identifier)
	assert.True(t, list[0].Protected)

	_, _, err = c.FetchShare(ctx, id, "")
	assert.ErrorIs(t, err, common.ErrPasswordRequired)

	content, iv, err := c.FetchShare(ctx, id, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "encrypted-share", content)
	assert.Equal(t, "00112233445566778899aabbccddeeff", iv)

	require.NoError(t, c.DeleteShare(ctx, id))
	_, _, err = c.FetchShare(ctx, id, "hunter2")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

// TestHTTPClient_RefreshOnUnauthorized drives a fake backend so the
// 401-refresh-retry sequence is deterministic.
func TestHTTPClient_RefreshOnUnauthorized(t *testing.T) {
	var refreshCalls, treeCalls int

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/user/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "stale", "refresh_token": "refresh-1",
		})
	})
	mux.HandleFunc("POST /api/user/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["refresh_token"] != "refresh-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "fresh", "refresh_token": "refresh-2",
		})
	})
	mux.HandleFunc("GET /filetree", func(w http.ResponseWriter, r *http.Request) {
		treeCalls++
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"file_tree": `["default"]`})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewHTTPClient(srv.URL, 5*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Login(ctx, "alice", "password123"))

	tree, err := c.GetTree(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `["default"]`, tree)
	assert.Equal(t, 1, refreshCalls)
	assert.Equal(t, 2, treeCalls)
}

func TestHTTPClient_Ping(t *testing.T) {
	c := newTestClient(t)
	assert.NoError(t, c.Ping(context.Background()))

	dead := NewHTTPClient("http://127.0.0.1:1", time.Second)
	assert.Error(t, dead.Ping(context.Background()))
}
