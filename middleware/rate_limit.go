package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/chmgroup/mediahub-backend/config"
)

// RateLimit is a fixed-window per-IP limiter backed by redis (INCR + EXPIRE).
// When redis is not configured the limiter is a no-op.
func RateLimit(max int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.Redis == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("mediahub:ratelimit:%s:%s", c.FullPath(), c.ClientIP())
		ctx := c.Request.Context()

		count, err := config.Redis.Incr(ctx, key).Result()
		if err != nil {
			// Fail open: a broken limiter must not take the API down
			logrus.WithError(err).Warn("rate limiter unavailable")
			c.Next()
			return
		}
		if count == 1 {
			config.Redis.Expire(ctx, key, window)
		}

		if count > max {
			ttl, _ := config.Redis.TTL(ctx, key).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       "Too many requests. Please try again later.",
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
