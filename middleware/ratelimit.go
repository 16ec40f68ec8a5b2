package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleFor = 10 * time.Minute

type clientLimiter struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// RateLimit enforces a per-client-IP token bucket of r requests per second
// with burst b. Buckets idle past limiterIdleFor are pruned opportunistically
// on lookups, so the map stays proportional to recently active clients
// without a background goroutine.
func RateLimit(r rate.Limit, b int) gin.HandlerFunc {
	var (
		mu        sync.Mutex
		clients   = make(map[string]*clientLimiter)
		lastPrune = time.Now()
	)

	take := func(ip string) bool {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		if now.Sub(lastPrune) > limiterIdleFor {
			for k, cl := range clients {
				if now.Sub(cl.lastSeen) > limiterIdleFor {
					delete(clients, k)
				}
			}
			lastPrune = now
		}

		cl, ok := clients[ip]
		if !ok {
			cl = &clientLimiter{bucket: rate.NewLimiter(r, b)}
			clients[ip] = cl
		}
		cl.lastSeen = now
		return cl.bucket.Allow()
	}

	return func(c *gin.Context) {
		if !take(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
