package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmgroup/mediahub-backend/config"
	"github.com/chmgroup/mediahub-backend/services"
)

func newGenerateTestRouter(t *testing.T, userID, role string) *gin.Engine {
	t.Helper()
	mr := miniredis.RunT(t)
	orig := config.Redis
	config.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { config.Redis = orig })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/reports/generate", func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}, GenerateReport)
	return r
}

func seedUpload(t *testing.T, id, fileType, owner string) {
	t.Helper()
	err := services.SaveUpload(context.Background(), services.UploadedFile{
		ID:           id,
		OriginalName: id + ".src",
		FileType:     fileType,
		Path:         "uploads/" + id,
		UploadedBy:   owner,
		UploadedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
}

func postGenerate(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/reports/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateReportRequiresBothFiles(t *testing.T) {
	r := newGenerateTestRouter(t, "user-1", "editor")

	w := postGenerate(r, `{"transcript_file_id": "f1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postGenerate(r, `{"survey_file_id": "f2"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateReportRejectsMismatchedFileType(t *testing.T) {
	r := newGenerateTestRouter(t, "user-1", "editor")
	seedUpload(t, "f1", "transcript", "user-1")
	seedUpload(t, "f2", "transcript", "user-1")

	// f2 is a transcript upload referenced as the survey.
	w := postGenerate(r, `{"transcript_file_id": "f1", "survey_file_id": "f2"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	details := resp["details"].(map[string]interface{})
	assert.Equal(t, "survey_file_id", details["field"])
}

func TestGenerateReportRejectsSwappedRoles(t *testing.T) {
	r := newGenerateTestRouter(t, "user-1", "editor")
	seedUpload(t, "f1", "survey", "user-1")

	w := postGenerate(r, `{"transcript_file_id": "f1", "survey_file_id": "f1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	details := resp["details"].(map[string]interface{})
	assert.Equal(t, "transcript_file_id", details["field"])
}

func TestGenerateReportForbidsForeignUploads(t *testing.T) {
	r := newGenerateTestRouter(t, "user-1", "editor")
	seedUpload(t, "f1", "transcript", "someone-else")

	w := postGenerate(r, `{"transcript_file_id": "f1", "survey_file_id": "f2"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGenerateReportUnknownUpload(t *testing.T) {
	r := newGenerateTestRouter(t, "user-1", "editor")

	w := postGenerate(r, `{"transcript_file_id": "missing", "survey_file_id": "also-missing"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
