package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chmgroup/mediahub-backend/middleware"
)

// The decode and auth paths return before the handler touches storage, so
// they are testable with a nil DB on the context.

func newSyncTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook/sync", func(c *gin.Context) {
		c.Set("db", (*gorm.DB)(nil))
		c.Next()
	}, SyncContent)
	return r
}

func postSync(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/sync", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSyncContentRejectsMalformedJSON(t *testing.T) {
	r := newSyncTestRouter()

	w := postSync(r, `{"clips": [`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
}

func TestSyncContentRejectsWrongShape(t *testing.T) {
	r := newSyncTestRouter()

	// Well-formed JSON, but clips is not an array.
	w := postSync(r, `{"clips": "nope"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.NotNil(t, resp["details"])
}

func TestRequireAPIKey(t *testing.T) {
	t.Setenv("WEBHOOK_API_KEY", "secret-key")

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook/sync", middleware.RequireAPIKey(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// Missing key
	req := httptest.NewRequest(http.MethodPost, "/webhook/sync", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Wrong key
	req = httptest.NewRequest(http.MethodPost, "/webhook/sync", nil)
	req.Header.Set("X-API-Key", "wrong")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Correct key
	req = httptest.NewRequest(http.MethodPost, "/webhook/sync", nil)
	req.Header.Set("X-API-Key", "secret-key")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAPIKeyRejectsWhenUnconfigured(t *testing.T) {
	t.Setenv("WEBHOOK_API_KEY", "")

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook/sync", middleware.RequireAPIKey(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/webhook/sync", nil)
	req.Header.Set("X-API-Key", "")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
