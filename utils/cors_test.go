package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORSOriginsDefault(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "")
	assert.Equal(t, []string{"http://localhost:5173"}, CORSOrigins())
}

func TestCORSOriginsFromEnv(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://portal.example.com, https://staging.example.com")
	assert.Equal(t,
		[]string{"https://portal.example.com", "https://staging.example.com"},
		CORSOrigins())
}

func TestOriginAllowed(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://portal.example.com")

	assert.True(t, OriginAllowed("https://portal.example.com"))
	assert.True(t, OriginAllowed("HTTPS://PORTAL.EXAMPLE.COM"))
	assert.True(t, OriginAllowed(""), "non-browser clients send no Origin")
	assert.False(t, OriginAllowed("https://evil.example.com"))
	assert.False(t, OriginAllowed("http://portal.example.com"))
}
