package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/tinks231/bizbooks/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window rate limiter ─────────────────────────────────────────────────
// Typing in a row fires one input request per keystroke, so the limit is per
// client IP and generous.

type rateEntry struct {
	mu        sync.Mutex
	count     int
	windowEnd time.Time
}

// RateLimiter counts requests per client IP in fixed windows.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*rateEntry
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1000
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{limit: limit, window: window, now: time.Now, entries: make(map[string]*rateEntry)}
}

// allow records one request from key and reports whether it is within the
// limit, along with the end of the current window.
func (l *RateLimiter) allow(key string) (bool, time.Time) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &rateEntry{}
		l.entries[key] = e
	}
	l.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	now := l.now()
	if now.After(e.windowEnd) {
		e.count = 0
		e.windowEnd = now.Add(l.window)
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

// Middleware rejects requests over the limit with 429.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP())
		if !ok {
			retry := int(windowEnd.Sub(l.now()).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, try again shortly"))
			return
		}
		c.Next()
	}
}

// Purge drops entries whose window has ended and returns how many it dropped.
func (l *RateLimiter) Purge() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	purged := 0
	for key, e := range l.entries {
		e.mu.Lock()
		if now.After(e.windowEnd) {
			delete(l.entries, key)
			purged++
		}
		e.mu.Unlock()
	}
	return purged
}

// StartPurger runs Purge every interval until ctx is done, so clients that
// never return do not accumulate.
func (l *RateLimiter) StartPurger(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := l.Purge(); n > 0 {
					log.Debug().Int("entries_purged", n).Msg("rate limiter purged")
				}
			}
		}
	}()
}
