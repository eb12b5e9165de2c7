package ws

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpgraderCheckOrigin(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://portal.example.com")

	req, err := http.NewRequest(http.MethodGet, "/ws/reports/abc", nil)
	require.NoError(t, err)

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, upgrader.CheckOrigin(req))

	req.Header.Set("Origin", "https://portal.example.com")
	assert.True(t, upgrader.CheckOrigin(req))

	// Non-browser clients send no Origin header.
	req.Header.Del("Origin")
	assert.True(t, upgrader.CheckOrigin(req))
}
