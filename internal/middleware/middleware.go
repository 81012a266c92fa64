package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const ClientIDHeader = "X-Client-ID"

// RateLimiter lets each client through at most once per limit.
// Clients are told apart by X-Client-ID, or by remote address without it.
type RateLimiter struct {
	clients   map[string]time.Time
	mu        sync.Mutex
	limit     time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewRateLimiter(limit time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]time.Time),
		limit:   limit,
		now:     time.Now,
	}
}

func (r *RateLimiter) allow(client string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if now.Sub(r.lastSweep) >= r.limit {
		r.sweep(now)
	}
	last, exists := r.clients[client]
	if exists && now.Sub(last) < r.limit {
		return false
	}
	r.clients[client] = now
	return true
}

// sweep drops clients whose window has passed. allow runs it at most once
// per limit.
func (r *RateLimiter) sweep(now time.Time) {
	for client, last := range r.clients {
		if now.Sub(last) >= r.limit {
			delete(r.clients, client)
		}
	}
	r.lastSweep = now
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.limit <= 0 {
			c.Next()
			return
		}
		clientID := c.GetHeader(ClientIDHeader)
		if clientID == "" {
			clientID = "ip:" + c.ClientIP()
		}
		if !r.allow(clientID) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
