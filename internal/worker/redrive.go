package worker

// redrive.go
// Periodically moves parked jobs back onto their queue with a fresh attempt
// budget. A job is redriven at most MaxRedrives times. Ticks are skipped while
// the cache breaker is open, since catalog refreshes would only fail again.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/tinks231/bizbooks/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	redriveInterval  = time.Minute
	redriveBatchSize = 20
)

// RedriveConfig holds the dependencies of the redrive loop.
type RedriveConfig struct {
	Dispatcher *Dispatcher
	Breaker    *infra.Breaker // optional
	Queues     []string
	Interval   time.Duration
}

// StartRedrive launches the redrive goroutine. It stops when ctx is done.
func StartRedrive(ctx context.Context, cfg RedriveConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = redriveInterval
	}
	if len(cfg.Queues) == 0 {
		cfg.Queues = []string{QueueCatalogRefresh}
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("redrive: shutting down")
				return
			case <-ticker.C:
				if cfg.Breaker != nil && cfg.Breaker.State() == infra.BreakerOpen {
					log.Debug().Msg("redrive: cache breaker open, skipping tick")
					continue
				}
				for _, q := range cfg.Queues {
					if n := cfg.Dispatcher.Redrive(ctx, q, redriveBatchSize); n > 0 {
						log.Info().Str("queue", q).Int("count", n).Msg("redrive: jobs re-queued")
					}
				}
			}
		}
	}()
}

// Redrive moves up to limit parked jobs back onto queue and returns how many
// moved. Entries that may not be redriven are moved to the held list instead.
// An entry whose move fails is put back at the tail it was popped from.
func (d *Dispatcher) Redrive(ctx context.Context, queue string, limit int) int {
	moved := 0
	for moved < limit {
		raw, err := d.rdb.RPop(ctx, DLQPrefix+queue).Bytes()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("redrive: pop failed")
			break
		}

		var entry DLQEntry
		if err := json.Unmarshal(raw, &entry); err != nil || !entry.redrivable() {
			if err := d.rdb.LPush(ctx, heldKey(queue), raw).Err(); err != nil {
				d.restore(ctx, queue, raw, err)
				break
			}
			log.Warn().Str("queue", queue).Str("reason", entry.Reason).Msg("redrive: entry held")
			continue
		}

		job := redriven(entry.Job)
		if err := d.push(ctx, queue, job); err != nil {
			d.restore(ctx, queue, raw, err)
			break
		}
		moved++
	}
	return moved
}

// redriven returns job with a fresh attempt budget, counting the redrive.
func redriven(job Job) Job {
	job.Attempts = 0
	job.Redrives++
	return job
}

func (d *Dispatcher) restore(ctx context.Context, queue string, raw []byte, cause error) {
	log.Error().Err(cause).Str("queue", queue).Msg("redrive: move failed, restoring entry")
	if err := d.rdb.RPush(ctx, DLQPrefix+queue, raw).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Bytes("entry", raw).Msg("redrive: entry lost")
	}
}
