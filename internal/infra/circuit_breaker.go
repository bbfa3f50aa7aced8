package infra

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Guards the Redis catalog cache. While open, cache calls fail fast and the
// catalog service reads straight from Postgres instead of waiting on timeouts.
//
//   closed ──(N consecutive failures)──▶ open ──(cool-down)──▶ half-open
//   half-open ──(M successes)──▶ closed,  half-open ──(failure)──▶ open

// BreakerState is the current position of a breaker.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerOpen is returned by Do while the breaker is open.
var ErrBreakerOpen = errors.New("circuit breaker is open")

// BreakerConfig holds the trip and recovery thresholds.
type BreakerConfig struct {
	Name          string
	TripAfter     int           // consecutive failures that open the breaker
	CloseAfter    int           // consecutive half-open successes that close it
	CoolDown      time.Duration // time spent open before a probe is let through
	CountCanceled bool          // count context.Canceled as a failure
}

// CacheBreakerConfig is tuned for a local Redis: trip fast, probe soon.
func CacheBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:       "catalog-cache",
		TripAfter:  3,
		CloseAfter: 1,
		CoolDown:   15 * time.Second,
	}
}

// Breaker is safe for concurrent use.
type Breaker struct {
	cfg BreakerConfig
	now func() time.Time

	mu        sync.Mutex
	state     BreakerState
	failures  int
	successes int
	openedAt  time.Time
}

// NewBreaker returns a closed breaker. Zero thresholds take the cache defaults.
func NewBreaker(cfg BreakerConfig) *Breaker {
	def := CacheBreakerConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.TripAfter <= 0 {
		cfg.TripAfter = def.TripAfter
	}
	if cfg.CloseAfter <= 0 {
		cfg.CloseAfter = def.CloseAfter
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = def.CoolDown
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

// State reports the breaker position, moving open → half-open once the
// cool-down has elapsed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.state
}

// Do runs fn unless the breaker is open. fn's error is returned unchanged.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	b.mu.Lock()
	b.advance()
	if b.state == BreakerOpen {
		b.mu.Unlock()
		return ErrBreakerOpen
	}
	b.mu.Unlock()

	err := fn(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case err == nil:
		b.recordSuccess()
	case errors.Is(err, context.Canceled) && !b.cfg.CountCanceled:
		// caller went away; says nothing about the backend
	default:
		b.recordFailure()
	}
	return err
}

// advance must be called under lock.
func (b *Breaker) advance() {
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.cfg.CoolDown {
		b.transition(BreakerHalfOpen)
	}
}

func (b *Breaker) recordFailure() {
	switch b.state {
	case BreakerClosed:
		b.failures++
		if b.failures >= b.cfg.TripAfter {
			b.transition(BreakerOpen)
		}
	case BreakerHalfOpen:
		b.transition(BreakerOpen)
	}
}

func (b *Breaker) recordSuccess() {
	switch b.state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.successes++
		if b.successes >= b.cfg.CloseAfter {
			b.transition(BreakerClosed)
		}
	}
}

func (b *Breaker) transition(to BreakerState) {
	from := b.state
	b.state = to
	b.failures = 0
	b.successes = 0
	if to == BreakerOpen {
		b.openedAt = b.now()
	}
	log.Warn().
		Str("breaker", b.cfg.Name).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("circuit breaker state change")
}
