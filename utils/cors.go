package utils

import (
	"os"
	"strings"
)

// CORSOrigins returns the browser origins allowed to call the API, from the
// comma-separated CORS_ORIGINS env var. Defaults to the local Vite dev server.
func CORSOrigins() []string {
	raw := os.Getenv("CORS_ORIGINS")
	if raw == "" {
		return []string{"http://localhost:5173"}
	}
	origins := strings.Split(raw, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

// OriginAllowed reports whether a request Origin header is in the allowed
// list. Requests without an Origin header (non-browser clients) are allowed.
func OriginAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	for _, allowed := range CORSOrigins() {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	return false
}
