// Package queue announces submitted tasks to external executors over a
// Kafka topic. The queue of record lives in Postgres; Kafka only wakes
// the executors up.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"qgate/internal/config"
	"qgate/internal/logger"
	"qgate/internal/metrics"
	"qgate/internal/models"
)

// Notifier errors
var (
	ErrNotifierClosed  = errors.New("notifier is closed")
	ErrSerializeFailed = errors.New("failed to serialize task notification")
)

// Notifier publishes task notifications to Kafka with retry and backoff.
type Notifier struct {
	cfg    config.NotifierConfig
	topic  string
	writer *kafka.Writer
	closed atomic.Bool

	// Metrics
	published atomic.Uint64
	failed    atomic.Uint64
}

// NewNotifier creates a Kafka notifier for the given topic
func NewNotifier(brokers []string, topic string, cfg config.NotifierConfig) (*Notifier, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}
	if topic == "" {
		return nil, errors.New("topic is required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // Partition by project
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		MaxAttempts:  1, // retries are handled here, with backoff
	}

	return &Notifier{
		cfg:    cfg,
		topic:  topic,
		writer: writer,
	}, nil
}

// Notify publishes a single task notification
func (n *Notifier) Notify(ctx context.Context, task *models.Task) error {
	if n.closed.Load() {
		return ErrNotifierClosed
	}

	msg, err := taskMessage(task)
	if err != nil {
		n.failed.Add(1)
		return err
	}

	if err := n.writeWithRetry(ctx, msg); err != nil {
		n.failed.Add(1)
		metrics.NotifierPublishTotal.WithLabelValues("failed").Inc()
		return err
	}

	n.published.Add(1)
	metrics.NotifierPublishTotal.WithLabelValues("success").Inc()
	return nil
}

// NotifyBatch publishes multiple task notifications in one write
func (n *Notifier) NotifyBatch(ctx context.Context, tasks []*models.Task) error {
	if n.closed.Load() {
		return ErrNotifierClosed
	}
	if len(tasks) == 0 {
		return nil
	}

	log := logger.WithComponent("notifier")
	start := time.Now()

	messages := make([]kafka.Message, 0, len(tasks))
	for _, task := range tasks {
		msg, err := taskMessage(task)
		if err != nil {
			log.Error().
				Err(err).
				Str("task_id", task.ID).
				Msg("failed to serialize task notification")
			n.failed.Add(1)
			metrics.NotifierPublishTotal.WithLabelValues("failed").Inc()
			continue
		}
		messages = append(messages, msg)
	}
	if len(messages) == 0 {
		return nil
	}

	err := n.writeWithRetry(ctx, messages...)
	duration := time.Since(start)
	metrics.NotifierPublishDuration.Observe(duration.Seconds())

	if err != nil {
		log.Error().
			Err(err).
			Int("batch_size", len(messages)).
			Dur("duration", duration).
			Msg("failed to publish task notifications")
		n.failed.Add(uint64(len(messages)))
		metrics.NotifierPublishTotal.WithLabelValues("failed").Add(float64(len(messages)))
		return err
	}

	log.Debug().
		Int("batch_size", len(messages)).
		Dur("duration", duration).
		Msg("task notifications published")

	n.published.Add(uint64(len(messages)))
	metrics.NotifierPublishTotal.WithLabelValues("success").Add(float64(len(messages)))
	return nil
}

// writeWithRetry writes messages with exponential backoff retry
func (n *Notifier) writeWithRetry(ctx context.Context, messages ...kafka.Message) error {
	log := logger.WithComponent("notifier")
	var lastErr error
	backoff := n.cfg.RetryBackoff

	for attempt := 0; attempt <= n.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Warn().
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("retrying kafka publish")
			metrics.NotifierPublishRetries.Inc()

			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := n.writer.WriteMessages(ctx, messages...)
		if err == nil {
			return nil
		}

		lastErr = err
		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Msg("kafka publish attempt failed")

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", n.cfg.MaxRetries+1, lastErr)
}

// Close closes the underlying writer
func (n *Notifier) Close() error {
	if n.closed.Swap(true) {
		return nil // Already closed
	}
	return n.writer.Close()
}

// Stats returns notifier statistics
func (n *Notifier) Stats() NotifierStats {
	return NotifierStats{
		Published: n.published.Load(),
		Failed:    n.failed.Load(),
	}
}

// NotifierStats holds notifier metrics
type NotifierStats struct {
	Published uint64
	Failed    uint64
}

// HealthCheck verifies the notifier is usable
func (n *Notifier) HealthCheck(ctx context.Context) error {
	if n.closed.Load() {
		return ErrNotifierClosed
	}
	_ = n.writer.Stats()
	return nil
}

func taskMessage(task *models.Task) (kafka.Message, error) {
	data, err := json.Marshal(task)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("%w: %v", ErrSerializeFailed, err)
	}

	return kafka.Message{
		Key:   []byte(task.ProjectID), // Partition by project
		Value: data,
		Headers: []kafka.Header{
			{Key: "task_id", Value: []byte(task.ID)},
			{Key: "task_type", Value: []byte(task.Type)},
		},
		Time: task.SubmittedAt,
	}, nil
}
