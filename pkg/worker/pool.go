// Package worker runs the side effects of a chat turn (archiving and event
// publishing) on a bounded pool of goroutines, off the request path.
//
// Memory writes are not done here: they complete synchronously before the
// chat reply is returned.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/mindneox/recall/pkg/archive"
	"github.com/mindneox/recall/pkg/eventstream"
	"github.com/mindneox/recall/pkg/metrics"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
	defaultJobTimeout        = 10 * time.Second
)

// Job outcomes reported to metrics.
const (
	OutcomeProcessed = "processed"
	OutcomeFailed    = "failed"
	OutcomeDropped   = "dropped"
)

// Job is one recorded turn awaiting its side effects.
type Job struct {
	Record   archive.Record
	Keywords []string
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Archive stores the turn durably. Optional.
	Archive archive.Driver

	// Publisher emits a turn event. Optional.
	Publisher eventstream.Publisher

	// Source is stamped on every published event.
	Source eventstream.EventSource

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// JobTimeout bounds the side effects of one job.
	JobTimeout time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Pool processes side-effect jobs asynchronously.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaultJobTimeout
	}
	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job. It returns false when the queue is full or the pool
// is closed, in which case the job is dropped.
func (p *Pool) Enqueue(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.config.Metrics.ObserveWorkerJob(OutcomeDropped)
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			"user_id", job.Record.UserID,
			"session_id", job.Record.SessionID,
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			"user_id", job.Record.UserID,
			"session_id", job.Record.SessionID,
		)
		p.config.Metrics.ObserveWorkerJob(OutcomeDropped)
		return false
	}
}

// Close stops accepting jobs and waits for in-flight jobs to drain.
// Call it during shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

// processJob archives the turn and publishes its event. Both are attempted
// even if the first fails.
func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
	defer cancel()

	var errs []error

	if p.config.Archive != nil {
		if err := p.config.Archive.Save(ctx, job.Record); err != nil {
			errs = append(errs, fmt.Errorf("archive: %w", err))
		}
	}

	if p.config.Publisher != nil {
		rec := job.Record
		event := eventstream.NewTurnRecordedEvent(p.config.Source, eventstream.TurnPayload{
			UserID:            rec.UserID,
			SessionID:         rec.SessionID,
			UserMessage:       rec.UserMessage,
			AssistantResponse: rec.AssistantResponse,
			HasContext:        rec.HasContext,
			Keywords:          job.Keywords,
			RecordedAt:        rec.Timestamp,
		})
		if err := p.config.Publisher.PublishTurn(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("publish: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		p.logger.Error("turn side effects failed",
			"user_id", job.Record.UserID,
			"record_id", job.Record.ID,
			"error", err,
		)
		p.config.Metrics.ObserveWorkerJob(OutcomeFailed)
		return
	}

	p.logger.Debug("turn side effects done", "record_id", job.Record.ID)
	p.config.Metrics.ObserveWorkerJob(OutcomeProcessed)
}
