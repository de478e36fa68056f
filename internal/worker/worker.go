// Package worker drains submitted tasks off a channel and flushes
// their notifications to Kafka in batches.
package worker

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"qgate/internal/logger"
	"qgate/internal/metrics"
	"qgate/internal/models"
)

// Publisher defines the interface for publishing task notifications
type Publisher interface {
	Notify(ctx context.Context, task *models.Task) error
	NotifyBatch(ctx context.Context, tasks []*models.Task) error
}

// Pool manages workers that batch task notifications to a Publisher.
type Pool struct {
	publisher    Publisher
	taskChan     chan *models.Task
	workers      int
	batchSize    int
	batchTimeout time.Duration

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	// Metrics
	processed atomic.Uint64
	failed    atomic.Uint64
}

// Config holds worker pool configuration
type Config struct {
	Publisher    Publisher
	TaskChan     chan *models.Task
	Workers      int
	BatchSize    int
	BatchTimeout time.Duration
}

// NewPool creates a new worker pool
func NewPool(cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 100 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		publisher:    cfg.Publisher,
		taskChan:     cfg.TaskChan,
		workers:      cfg.Workers,
		batchSize:    cfg.BatchSize,
		batchTimeout: cfg.BatchTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start begins draining task notifications
func (p *Pool) Start() {
	log := logger.WithComponent("worker_pool")
	log.Info().
		Int("workers", p.workers).
		Int("batch_size", p.batchSize).
		Dur("batch_timeout", p.batchTimeout).
		Msg("starting worker pool")

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop gracefully stops all workers
func (p *Pool) Stop() {
	log := logger.WithComponent("worker_pool")
	log.Info().Msg("stopping worker pool")
	p.cancel()
	p.wg.Wait()
	log.Info().Msg("worker pool stopped")
}

// worker accumulates tasks and flushes them on size or timeout
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	log := logger.WithComponent("worker").With().Int("worker_id", id).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("worker panic recovered")
			metrics.PanicsRecovered.WithLabelValues("worker").Inc()
		}
	}()

	log.Info().Msg("worker started")
	defer log.Info().Msg("worker stopped")

	batch := make([]*models.Task, 0, p.batchSize)
	timer := time.NewTimer(p.batchTimeout)
	defer timer.Stop()

	for {
		select {
		case <-p.ctx.Done():
			// drain tasks already queued before exiting
			for {
				select {
				case task, ok := <-p.taskChan:
					if !ok {
						p.flush(batch)
						return
					}
					batch = append(batch, task)
					if len(batch) >= p.batchSize {
						p.flush(batch)
						batch = batch[:0]
					}
				default:
					p.flush(batch)
					return
				}
			}

		case task, ok := <-p.taskChan:
			if !ok {
				// Channel closed, flush and exit
				p.flush(batch)
				return
			}

			batch = append(batch, task)
			if len(batch) >= p.batchSize {
				p.flush(batch)
				batch = batch[:0]
				timer.Reset(p.batchTimeout)
			}

		case <-timer.C:
			if len(batch) > 0 {
				p.flush(batch)
				batch = batch[:0]
			}
			timer.Reset(p.batchTimeout)
		}
	}
}

// flush publishes a batch of task notifications
func (p *Pool) flush(batch []*models.Task) {
	if len(batch) == 0 {
		return
	}

	log := logger.WithComponent("worker")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := p.publisher.NotifyBatch(ctx, batch)
	if err != nil {
		log.Error().
			Err(err).
			Int("batch_size", len(batch)).
			Msg("failed to flush notifications")

		p.failed.Add(uint64(len(batch)))
		metrics.WorkerFailedTotal.Add(float64(len(batch)))

		// Fallback: try publishing individually
		p.notifyIndividually(batch)
		return
	}

	p.processed.Add(uint64(len(batch)))
	metrics.WorkerProcessedTotal.Add(float64(len(batch)))
}

// notifyIndividually retries each task separately after a failed batch
func (p *Pool) notifyIndividually(batch []*models.Task) {
	log := logger.WithComponent("worker")
	log.Warn().Int("count", len(batch)).Msg("attempting individual publish for failed batch")

	for _, task := range batch {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := p.publisher.Notify(ctx, task)
		cancel()

		if err != nil {
			log.Error().
				Err(err).
				Str("task_id", task.ID).
				Str("project_id", task.ProjectID).
				Msg("failed to publish task notification individually")
			continue
		}

		// Don't count twice - subtract from failed, add to processed
		p.failed.Add(^uint64(0))
		p.processed.Add(1)
	}
}

// Stats returns worker pool statistics
func (p *Pool) Stats() Stats {
	return Stats{
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
	}
}

// Stats holds worker pool metrics
type Stats struct {
	Processed uint64
	Failed    uint64
}
