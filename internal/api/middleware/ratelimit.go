package middleware

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/fishmad/grokstatev3-sub001/internal/config"
)

// clientLimiter stores the rate limiter for a specific client.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterMiddleware manages per-client rate limiting for the export
// trigger endpoints.
type RateLimiterMiddleware struct {
	clients map[string]*clientLimiter
	mu      sync.Mutex
	cfg     *config.Config
}

// NewRateLimiterMiddleware creates a new RateLimiterMiddleware.
func NewRateLimiterMiddleware(cfg *config.Config) *RateLimiterMiddleware {
	rm := &RateLimiterMiddleware{
		clients: make(map[string]*clientLimiter),
		cfg:     cfg,
	}
	// Background goroutine to clean up old client entries
	go rm.cleanupClients()
	return rm
}

// getClientLimiter retrieves or creates the rate limiter for a client IP.
func (rm *RateLimiterMiddleware) getClientLimiter(identifier string) *rate.Limiter {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	client, exists := rm.clients[identifier]
	if !exists {
		client = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(rm.cfg.RateLimitRefillRate), rm.cfg.RateLimitBucketSize),
		}
		rm.clients[identifier] = client
	}
	client.lastSeen = time.Now()
	return client.limiter
}

// cleanupClients periodically removes old client entries from the map.
func (rm *RateLimiterMiddleware) cleanupClients() {
	for {
		time.Sleep(10 * time.Minute)
		rm.mu.Lock()
		count := 0
		for id, client := range rm.clients {
			if time.Since(client.lastSeen) > 30*time.Minute {
				delete(rm.clients, id)
				count++
			}
		}
		rm.mu.Unlock()
		if count > 0 {
			log.Printf("Rate limiter cleanup removed %d old client entries.", count)
		}
	}
}

// Limit creates the Gin middleware handler.
func (rm *RateLimiterMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rm.getClientLimiter(c.ClientIP())
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
