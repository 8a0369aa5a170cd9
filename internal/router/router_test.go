package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"newsdesk/internal/auth"
	"newsdesk/internal/config"
	"newsdesk/internal/db"
	"newsdesk/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoPassword = "password123"

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	require.NoError(t, db.SeedDemo(conn, demoPassword))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		JWTSecret:      "test-secret",
		SessionSecret:  "test-session-secret",
		TokenTTL:       time.Hour,
		RequestTimeout: 5 * time.Second,
	}
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	require.NoError(t, err)
	return New(cfg, conn, services.NewPortal(conn), tokens)
}

func do(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func login(t *testing.T, r http.Handler, username, password string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/auth/login", "", gin.H{"login": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decodeBody(t, w)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func errorKind(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	e, ok := decodeBody(t, w)["error"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	kind, _ := e["kind"].(string)
	return kind
}

func TestHealth(t *testing.T) {
	r := setupRouter(t)
	w := do(t, r, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthFlow(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "newcomer", "email": "newcomer@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decodeBody(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "reader", user["role"])
	assert.NotContains(t, user, "password")

	token := login(t, r, "newcomer", "secret1")
	w = do(t, r, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "newcomer", decodeBody(t, w)["user"].(map[string]interface{})["username"])

	w = do(t, r, http.MethodPost, "/api/auth/login", "", gin.H{"login": "newcomer", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthenticated", errorKind(t, w))

	w = do(t, r, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodGet, "/api/articles", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestArticleLifecycle(t *testing.T) {
	r := setupRouter(t)
	journalist := login(t, r, "journalist1", demoPassword)
	reader := login(t, r, "reader1", demoPassword)

	body := gin.H{
		"title":       "Council approves new bike lanes",
		"summary":     "Vote passes 7-2",
		"content":     "The **council** voted on Tuesday.",
		"category_id": 1,
		"status":      "published",
	}
	w := do(t, r, http.MethodPost, "/api/articles", reader, body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "permission_denied", errorKind(t, w))

	w = do(t, r, http.MethodPost, "/api/articles", journalist, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	article := decodeBody(t, w)["article"].(map[string]interface{})
	slug := article["slug"].(string)
	assert.Equal(t, "council-approves-new-bike-lanes", slug)
	assert.NotNil(t, article["published_at"])

	w = do(t, r, http.MethodPost, "/api/articles", journalist, body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", errorKind(t, w))

	w = do(t, r, http.MethodGet, "/api/articles/"+slug, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decodeBody(t, w)["article"].(map[string]interface{})
	assert.Equal(t, float64(1), detail["views_count"])
	assert.Contains(t, detail["content_html"], "<strong>council</strong>")

	w = do(t, r, http.MethodPost, "/api/articles/"+slug+"/like", reader, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decodeBody(t, w)["active"])

	w = do(t, r, http.MethodPost, "/api/articles/"+slug+"/comments", reader, gin.H{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", errorKind(t, w))

	w = do(t, r, http.MethodPatch, "/api/articles/"+slug, reader, gin.H{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodDelete, "/api/articles/"+slug, journalist, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/articles/"+slug, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", errorKind(t, w))
}

func TestMalformedBody(t *testing.T) {
	r := setupRouter(t)
	token := login(t, r, "editor", demoPassword)

	req := httptest.NewRequest(http.MethodPost, "/api/tags", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", errorKind(t, w))
}

func TestSearchAndTaxonomy(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodGet, "/api/search?q=roundup&per_page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decodeBody(t, w)
	assert.Equal(t, float64(6), res["total"])
	assert.Len(t, res["hits"], 2)

	w = do(t, r, http.MethodGet, "/api/categories/technology", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	editor := login(t, r, "editor", demoPassword)
	w = do(t, r, http.MethodDelete, "/api/categories/technology", editor, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", errorKind(t, w))
}
