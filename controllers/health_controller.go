package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chmgroup/mediahub-backend/config"
	"github.com/chmgroup/mediahub-backend/ws"
)

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Health reports the state of each backing service. The process stays up
// even when redis is missing, so the payload distinguishes degraded from down.
func Health(c *gin.Context) {
	dbStatus := "ok"
	if sqlDB, err := config.DB.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "unavailable"
	}

	redisStatus := "not configured"
	if config.Redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := config.Redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unavailable"
		} else {
			redisStatus = "ok"
		}
	}

	status := http.StatusOK
	if dbStatus != "ok" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":    dbStatus,
		"database":  dbStatus,
		"redis":     redisStatus,
		"websocket": ws.H.GetStats(),
		"time":      time.Now().UTC().Format(time.RFC3339),
	})
}
