package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, clientID, remote string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remote
	if clientID != "" {
		req.Header.Set(ClientIDHeader, clientID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	r := newRouter(rl)

	require.Equal(t, http.StatusNoContent, do(r, "alice", "10.0.0.1:1000"))
	require.Equal(t, http.StatusTooManyRequests, do(r, "alice", "10.0.0.1:1000"))
	// a different client is independent
	require.Equal(t, http.StatusNoContent, do(r, "bob", "10.0.0.1:1000"))

	// without the header the remote address is the key
	require.Equal(t, http.StatusNoContent, do(r, "", "10.0.0.2:1000"))
	require.Equal(t, http.StatusTooManyRequests, do(r, "", "10.0.0.2:2000"))

	now = now.Add(time.Second)
	require.Equal(t, http.StatusNoContent, do(r, "alice", "10.0.0.1:1000"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	r := newRouter(NewRateLimiter(0))
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusNoContent, do(r, "alice", "10.0.0.1:1000"))
	}
}

func TestRateLimiter_ForgetsIdleClients(t *testing.T) {
	rl := NewRateLimiter(time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	r := newRouter(rl)

	for _, ip := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1"} {
		require.Equal(t, http.StatusNoContent, do(r, "", ip))
	}
	require.Len(t, rl.clients, 3)

	now = now.Add(500 * time.Millisecond)
	require.Equal(t, http.StatusNoContent, do(r, "alice", "10.0.0.9:1"))
	require.Len(t, rl.clients, 4)

	// the three addresses are past their window; alice is not
	now = now.Add(700 * time.Millisecond)
	require.Equal(t, http.StatusNoContent, do(r, "bob", "10.0.0.9:1"))
	require.Len(t, rl.clients, 2)
	require.Contains(t, rl.clients, "alice")
	require.Contains(t, rl.clients, "bob")
}
