package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB returns a gorm handle backed by sqlmock, for asserting the SQL a
// handler issues and feeding it canned rows.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return gdb, mock
}

func getJSON(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestAnalyticsSummaryCountsAndTotals(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectQuery(`COUNT\(id\) AS post_count`).WillReturnRows(
		sqlmock.NewRows([]string{
			"post_count", "total_views", "total_likes",
			"total_comments", "total_shares", "total_impressions",
		}).AddRow(12, 5000, 300, 40, 25, 90000))
	mock.ExpectQuery(`count\(\*\) FROM "clips"`).WillReturnRows(
		sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`count\(\*\) FROM "shoots"`).WillReturnRows(
		sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`MAX\(stats_synced_at\)`).WillReturnRows(
		sqlmock.NewRows([]string{"max"}).AddRow(nil))
	mock.ExpectQuery(`status AS key`).WillReturnRows(
		sqlmock.NewRows([]string{"key", "count"}).AddRow("published", 5).AddRow("draft", 2))
	mock.ExpectQuery(`platform AS key, COUNT\(id\) AS count FROM "clips"`).WillReturnRows(
		sqlmock.NewRows([]string{"key", "count"}).AddRow("youtube", 4).AddRow("linkedin", 3))
	mock.ExpectQuery(`platform AS key, COUNT\(id\) AS count FROM "posts"`).WillReturnRows(
		sqlmock.NewRows([]string{"key", "count"}).AddRow("youtube", 12))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/analytics/summary", func(c *gin.Context) {
		c.Set("db", gdb)
		c.Next()
	}, AnalyticsSummary)

	w, resp := getJSON(t, r, "/analytics/summary")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.EqualValues(t, 12, resp["post_count"])
	assert.EqualValues(t, 7, resp["clip_count"])
	assert.EqualValues(t, 3, resp["shoot_count"])
	assert.EqualValues(t, 5000, resp["total_views"])
	assert.EqualValues(t, 90000, resp["total_impressions"])
	assert.Equal(t, map[string]interface{}{"youtube": float64(4), "linkedin": float64(3)},
		resp["clips_by_platform"])
	assert.Equal(t, map[string]interface{}{"youtube": float64(12)}, resp["posts_by_platform"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncStatusIncludesImpressions(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectQuery(`count\(\*\) FROM "clips"`).WillReturnRows(
		sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`count\(\*\) FROM "posts"`).WillReturnRows(
		sqlmock.NewRows([]string{"count"}).AddRow(6))
	mock.ExpectQuery(`count\(\*\) FROM "shoots"`).WillReturnRows(
		sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`status, COUNT\(id\) AS count`).WillReturnRows(
		sqlmock.NewRows([]string{"status", "count"}).AddRow("published", 2))
	mock.ExpectQuery(`platform, COUNT\(id\) AS count`).WillReturnRows(
		sqlmock.NewRows([]string{"platform", "count"}).AddRow("youtube", 6))
	mock.ExpectQuery(`SUM\(view_count\)`).WillReturnRows(
		sqlmock.NewRows([]string{
			"total_views", "total_likes", "total_comments",
			"total_shares", "total_impressions",
		}).AddRow(100, 10, 2, 1, 4200))
	mock.ExpectQuery(`MAX\(synced_at\)`).WillReturnRows(
		sqlmock.NewRows([]string{"max"}).AddRow(nil))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/webhook/status", func(c *gin.Context) {
		c.Set("db", gdb)
		c.Next()
	}, SyncStatus)

	w, resp := getJSON(t, r, "/webhook/status")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.EqualValues(t, 6, resp["posts"])
	assert.EqualValues(t, 100, resp["total_views"])
	assert.EqualValues(t, 4200, resp["total_impressions"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
