package controllers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chmgroup/mediahub-backend/models"
	"github.com/chmgroup/mediahub-backend/services"
)

// SyncContent receives the automation pipeline's batched content payload.
// Item-level failures are reported in the result body with a 200 status;
// only unreadable requests and a dead database produce an error status.
func SyncContent(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Unable to read request body")
		return
	}

	var req services.SyncRequest
	if err := json.Unmarshal(body, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "body"
			}
			respondInvalidParam(c, field, "Request body has the wrong shape")
			return
		}
		respondError(c, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	sqlDB, err := db.DB()
	if err != nil || sqlDB.Ping() != nil {
		respondError(c, http.StatusInternalServerError, "Storage is unavailable")
		return
	}

	result := services.NewSyncService(db).Sync(req)
	c.JSON(http.StatusOK, result)
}

// SyncStatus gives the pipeline a quick read on what the portal has stored.
func SyncStatus(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var clipCount, postCount, shootCount int64
	db.Model(&models.Clip{}).Count(&clipCount)
	db.Model(&models.Post{}).Count(&postCount)
	db.Model(&models.Shoot{}).Count(&shootCount)

	type statusRow struct {
		Status string
		Count  int64
	}
	var statusRows []statusRow
	db.Model(&models.Clip{}).
		Select("status, COUNT(id) AS count").
		Group("status").
		Scan(&statusRows)
	byStatus := make(map[string]int64, len(statusRows))
	for _, r := range statusRows {
		byStatus[r.Status] = r.Count
	}

	type platformRow struct {
		Platform string
		Count    int64
	}
	var platformRows []platformRow
	db.Model(&models.Post{}).
		Select("platform, COUNT(id) AS count").
		Group("platform").
		Scan(&platformRows)
	byPlatform := make(map[string]int64, len(platformRows))
	for _, r := range platformRows {
		byPlatform[r.Platform] = r.Count
	}

	var engagement struct {
		TotalViews       int64
		TotalLikes       int64
		TotalComments    int64
		TotalShares      int64
		TotalImpressions int64
	}
	db.Model(&models.Post{}).Select(
		"COALESCE(SUM(view_count), 0) AS total_views",
		"COALESCE(SUM(like_count), 0) AS total_likes",
		"COALESCE(SUM(comment_count), 0) AS total_comments",
		"COALESCE(SUM(share_count), 0) AS total_shares",
		"COALESCE(SUM(impression_count), 0) AS total_impressions",
	).Scan(&engagement)

	var lastSyncRow sql.NullTime
	db.Model(&models.Clip{}).Select("MAX(synced_at)").Scan(&lastSyncRow)
	var lastSync *time.Time
	if lastSyncRow.Valid {
		t := lastSyncRow.Time.UTC()
		lastSync = &t
	}

	c.JSON(http.StatusOK, gin.H{
		"clips":             clipCount,
		"posts":             postCount,
		"shoots":            shootCount,
		"clips_by_status":   byStatus,
		"posts_by_platform": byPlatform,
		"total_views":       engagement.TotalViews,
		"total_likes":       engagement.TotalLikes,
		"total_comments":    engagement.TotalComments,
		"total_shares":      engagement.TotalShares,
		"total_impressions": engagement.TotalImpressions,
		"last_sync":         lastSync,
	})
}
