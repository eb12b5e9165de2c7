package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// RequireAPIKey gates machine-to-machine endpoints (webhook sync, pipeline
// callback) behind the static X-API-Key header. Constant-time comparison so
// the key cannot be probed byte by byte.
func RequireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := os.Getenv("WEBHOOK_API_KEY")
		provided := c.GetHeader("X-API-Key")

		if expected == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid API key"})
			c.Abort()
			return
		}
		c.Next()
	}
}
