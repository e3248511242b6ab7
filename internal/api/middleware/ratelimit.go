package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ──────────────────────────────────────────────────────────────────────────────
// Per-IP token bucket rate limiting
// ──────────────────────────────────────────────────────────────────────────────

const (
	minBurst   = 10               // smallest bucket capacity, absorbs login bursts
	evictEvery = 5 * time.Minute  // sweep cadence for the bucket map
	staleAfter = 10 * time.Minute // idle time before a bucket is dropped
)

// ipBucket tracks the token balance for one client IP.
type ipBucket struct {
	mu       sync.Mutex
	tokens   float64
	lastFill time.Time
}

// ipLimiter maps client IPs to their buckets.  Refill rate is fixed at
// construction; capacity is max(minBurst, rate).
type ipLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*ipBucket
	rate    float64
	cap     float64
}

func newIPLimiter(rps int) *ipLimiter {
	capacity := float64(rps)
	if capacity < minBurst {
		capacity = minBurst
	}
	return &ipLimiter{
		buckets: make(map[string]*ipBucket),
		rate:    float64(rps),
		cap:     capacity,
	}
}

// take refills the IP's bucket for the elapsed time and spends one token.
// Returns false when the bucket is empty.
func (rl *ipLimiter) take(ip string) bool {
	rl.mu.RLock()
	b, ok := rl.buckets[ip]
	rl.mu.RUnlock()

	if !ok {
		rl.mu.Lock()
		if b, ok = rl.buckets[ip]; !ok {
			// First request from this IP gets a full bucket.
			b = &ipBucket{tokens: rl.cap, lastFill: time.Now()}
			rl.buckets[ip] = b
		}
		rl.mu.Unlock()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastFill).Seconds() * rl.rate
	if b.tokens > rl.cap {
		b.tokens = rl.cap
	}
	b.lastFill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep periodically drops buckets that have been idle past staleAfter, so
// the map does not accumulate one entry per IP ever seen.
func (rl *ipLimiter) sweep() {
	ticker := time.NewTicker(evictEvery)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-staleAfter)
		rl.mu.Lock()
		for ip, b := range rl.buckets {
			b.mu.Lock()
			if b.lastFill.Before(cutoff) {
				delete(rl.buckets, ip)
			}
			b.mu.Unlock()
		}
		rl.mu.Unlock()
	}
}

// RateLimitMiddleware caps each client IP at rps requests per second with a
// short burst allowance.  Over-limit requests get 429.
func RateLimitMiddleware(rps int) gin.HandlerFunc {
	rl := newIPLimiter(rps)
	go rl.sweep()

	return func(c *gin.Context) {
		if !rl.take(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests — please slow down",
			})
			return
		}
		c.Next()
	}
}
