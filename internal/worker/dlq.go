package worker

// dlq.go: dead letter queue
// Jobs that keep failing are parked in dlq:{queue} until the redrive loop
// moves them back. Permanent failures and jobs out of redrives go to
// dlq:{queue}:held and stay there for inspection.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix  = "dlq:"
	HeldSuffix = ":held"
)

// DLQEntry wraps a failed job with the reason it was parked.
type DLQEntry struct {
	Queue    string    `json:"queue"`
	Job      Job       `json:"job"`
	Reason   string    `json:"reason"`
	FailedAt  time.Time `json:"failed_at"`
	Permanent bool      `json:"permanent,omitempty"`
}

// redrivable reports whether the redrive loop may hand the job back to its queue.
func (e DLQEntry) redrivable() bool {
	return !e.Permanent && e.Job.Type != "" && e.Job.Redrives < MaxRedrives
}

// dlqKey is the list an entry is parked in.
func dlqKey(queue string, e DLQEntry) string {
	if e.redrivable() {
		return DLQPrefix + queue
	}
	return heldKey(queue)
}

func heldKey(queue string) string { return DLQPrefix + queue + HeldSuffix }

func (d *Dispatcher) deadLetter(ctx context.Context, queue string, job Job, reason string, permanent bool) {
	entry := DLQEntry{Queue: queue, Job: job, Reason: reason, FailedAt: time.Now().UTC(), Permanent: permanent}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}
	if err := d.rdb.LPush(ctx, dlqKey(queue, entry), data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: push failed")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", job.Attempts).
		Int("redrives", job.Redrives).
		Bool("held", !entry.redrivable()).
		Msg("dlq: job parked")
}

// DLQLength returns the number of parked jobs for queue.
func (d *Dispatcher) DLQLength(ctx context.Context, queue string) (int64, error) {
	return d.rdb.LLen(ctx, DLQPrefix+queue).Result()
}
