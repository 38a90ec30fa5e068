package middleware

import (
	"net/http"
	"sync"
	"time"

	"retailpos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ipBucket holds the request count for a single client IP inside the
// current window.
type ipBucket struct {
	mu        sync.Mutex
	count     int
	windowEnd time.Time
}

// ipLimiter is a per-IP sliding-window counter. Kept in memory: a POS
// backend serves one store from one instance, so there is no shared state
// to coordinate across replicas.
type ipLimiter struct {
	mu      sync.Mutex
	buckets map[string]*ipBucket
	limit   int
	window  time.Duration
}

func newIPLimiter(limit int, window time.Duration) *ipLimiter {
	l := &ipLimiter{
		buckets: make(map[string]*ipBucket),
		limit:   limit,
		window:  window,
	}
	go l.purgeLoop()
	return l
}

// allow counts one request for ip and reports whether it stays under the
// limit, along with the moment the window resets.
func (l *ipLimiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{}
		l.buckets[ip] = b
	}
	l.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if now.After(b.windowEnd) {
		b.count = 0
		b.windowEnd = now.Add(l.window)
	}
	b.count++
	return b.count <= l.limit, b.windowEnd
}

const purgeInterval = 5 * time.Minute

// purgeLoop drops buckets whose window has expired so one-off clients do
// not accumulate in the map forever.
func (l *ipLimiter) purgeLoop() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		l.mu.Lock()
		purged := 0
		for ip, b := range l.buckets {
			b.mu.Lock()
			if now.After(b.windowEnd) {
				delete(l.buckets, ip)
				purged++
			}
			b.mu.Unlock()
		}
		remaining := len(l.buckets)
		l.mu.Unlock()

		if purged > 0 {
			log.Debug().
				Int("entries_purged", purged).
				Int("entries_remaining", remaining).
				Msg("rate limiter buckets purged")
		}
	}
}

// RateLimiter rejects clients that exceed limit requests per window with
// 429 and a Retry-After header.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := newIPLimiter(limit, window)

	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, try again in a moment"))
			return
		}
		c.Next()
	}
}
