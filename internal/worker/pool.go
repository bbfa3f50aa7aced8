package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueCatalogRefresh = "jobs:catalog_refresh"

	JobCatalogRefresh = "catalog_refresh"

	// MaxAttempts is how many times a job runs before it is dead-lettered.
	MaxAttempts = 3
	// MaxRedrives is how many times a parked job is handed back to its queue
	// before it is held for good.
	MaxRedrives = 5

	popErrorBackoff = 2 * time.Second
)

var (
	errUnknownJob = errors.New("unknown job type")
	// ErrPermanent marks a failure no retry can fix. Such jobs are held, not redriven.
	ErrPermanent = errors.New("permanent job failure")
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
	Redrives int             `json:"redrives,omitempty"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueCatalogRefresh asks the pool to rebuild a tenant's catalog snapshot.
func (d *Dispatcher) EnqueueCatalogRefresh(ctx context.Context, tenantID uint) error {
	return d.enqueue(ctx, QueueCatalogRefresh, JobCatalogRefresh, CatalogRefreshPayload{TenantID: tenantID})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return d.push(ctx, queue, Job{Type: jobType, Payload: data})
}

func (d *Dispatcher) push(ctx context.Context, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers are the job processors, wired at the composition root.
type Handlers struct {
	CatalogRefresh *CatalogRefreshWorker
}

// handle runs the processor for job.Type.
func (h *Handlers) handle(ctx context.Context, job Job) error {
	switch job.Type {
	case JobCatalogRefresh:
		if h.CatalogRefresh == nil {
			return fmt.Errorf("%w: %s (no handler)", errUnknownJob, job.Type)
		}
		return h.CatalogRefresh.Process(ctx, job.Payload)
	default:
		return fmt.Errorf("%w: %s", errUnknownJob, job.Type)
	}
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *Handlers, numWorkers int) {
	d := NewDispatcher(rdb)
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, d, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, d *Dispatcher, handlers *Handlers, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := d.rdb.BRPop(ctx, 5*time.Second, QueueCatalogRefresh).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || ctx.Err() != nil {
					continue
				}
				log.Warn().Err(err).Int("worker", id).Msg("job queue unavailable, backing off")
				pause(ctx, popErrorBackoff)
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, d, handlers, result[0], result[1])
		}
	}
}

// pause waits for d or until ctx is done, and reports whether the full wait elapsed.
func pause(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// processJob runs one job. Failures are re-queued until MaxAttempts, then
// dead-lettered.
func processJob(ctx context.Context, d *Dispatcher, handlers *Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		d.deadLetter(ctx, queue, Job{Payload: json.RawMessage(raw)}, "malformed envelope", true)
		return
	}

	job.Attempts++
	err := handlers.handle(ctx, job)
	if err == nil {
		log.Debug().Str("type", job.Type).Str("queue", queue).Int("attempt", job.Attempts).Msg("job done")
		return
	}

	log.Warn().Err(err).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job failed")
	permanent := errors.Is(err, errUnknownJob) || errors.Is(err, ErrPermanent)
	if permanent || job.Attempts >= MaxAttempts {
		d.deadLetter(ctx, queue, job, err.Error(), permanent)
		return
	}
	if err := d.push(ctx, queue, job); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("failed to re-queue job")
	}
}
