package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AshwinGadhvi/BoloForm/pkg/logger"
)

// clientWindow tracks one client's request count in its current
// fixed window.
type clientWindow struct {
	count int
	start time.Time
}

// rateLimiter counts requests per client IP over fixed windows. Each
// client's window resets independently, so a burst from one address
// never buys headroom for another.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	limit   int
	window  time.Duration
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		clients: make(map[string]*clientWindow),
		limit:   limit,
		window:  window,
	}
}

// allow records one request for ip and reports whether it is within
// the limit. Expired entries are dropped as they are touched, which
// keeps the map bounded by the set of currently active clients.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cw, ok := rl.clients[ip]
	if !ok || now.Sub(cw.start) > rl.window {
		rl.clients[ip] = &clientWindow{count: 1, start: now}
		return true
	}
	if cw.count >= rl.limit {
		return false
	}
	cw.count++
	return true
}

// RateLimit rejects a client's requests beyond limit per window.
// Burns are the expensive operation behind this surface, so the limit
// applies uniformly rather than per route.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	rl := newRateLimiter(limit, window)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.allow(ip) {
			logger.WithContext(c.Request.Context()).Warn("rate limit exceeded", "client_ip", ip)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}
		c.Next()
	}
}
