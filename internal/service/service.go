// Package service wires the evaluation endpoints, the store, the
// notifier and the resync worker pool into one running unit.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qgate/internal/config"
	"qgate/internal/handlers"
	"qgate/internal/logger"
	"qgate/internal/metrics"
	"qgate/internal/middleware"
	"qgate/internal/models"
	"qgate/internal/queue"
	"qgate/internal/resync"
	"qgate/internal/store"
	"qgate/internal/worker"
)

// Service is the high-level coordinator for evaluation, storage and
// task notification.
type Service struct {
	cfg        *config.Config
	store      *store.Store
	notifier   *queue.Notifier
	workerPool *worker.Pool
	resyncer   *resync.Resyncer
	httpServer *http.Server
	taskChan   chan *models.Task
	wg         sync.WaitGroup
}

// New constructs a Service with given config.
func New(cfg *config.Config) *Service {
	return &Service{
		cfg:      cfg,
		taskChan: make(chan *models.Task, cfg.Resync.QueueSize),
	}
}

// Run starts background goroutines and blocks until context cancelled.
func (s *Service) Run(ctx context.Context) error {
	log := logger.WithComponent("service")
	log.Info().Msg("service starting")

	st, err := store.New(ctx, s.cfg.Postgres.DSN)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize store")
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	s.store = st
	defer s.store.Close()

	if err := s.initNotifier(); err != nil {
		log.Error().Err(err).Msg("failed to initialize notifier")
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}
	defer s.notifier.Close()

	s.initWorkerPool()
	s.workerPool.Start()

	s.resyncer = resync.New(s.store, s.taskChan)

	s.initHTTPServer()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info().Str("addr", s.cfg.HTTPAddr).Msg("starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.reportStats(ctx)
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	return s.shutdown()
}

// initNotifier initializes the Kafka notifier
func (s *Service) initNotifier() error {
	log := logger.WithComponent("service")
	notifier, err := queue.NewNotifier(
		s.cfg.Kafka.Brokers,
		s.cfg.Kafka.Topic,
		s.cfg.Kafka.Notifier,
	)
	if err != nil {
		return err
	}

	s.notifier = notifier
	log.Info().
		Strs("brokers", s.cfg.Kafka.Brokers).
		Str("topic", s.cfg.Kafka.Topic).
		Msg("kafka notifier initialized")
	return nil
}

// initWorkerPool initializes the notification worker pool
func (s *Service) initWorkerPool() {
	log := logger.WithComponent("service")
	s.workerPool = worker.NewPool(worker.Config{
		Publisher:    s.notifier,
		TaskChan:     s.taskChan,
		Workers:      s.cfg.Resync.Workers,
		BatchSize:    s.cfg.Resync.BatchSize,
		BatchTimeout: s.cfg.Resync.BatchTimeout,
	})
	log.Info().Int("workers", s.cfg.Resync.Workers).Msg("worker pool initialized")
}

// initHTTPServer initializes the HTTP server with handlers
func (s *Service) initHTTPServer() {
	mux := http.NewServeMux()

	mux.Handle("/evaluate", middleware.Chain(
		handlers.NewEvaluateHandler(),
		middleware.Recovery,
		middleware.Logging,
	))
	mux.Handle("/gate", middleware.Chain(
		handlers.NewGateHandler(),
		middleware.Recovery,
		middleware.Logging,
	))
	mux.Handle("/resync", middleware.Chain(
		handlers.NewResyncHandler(s.resyncer),
		middleware.Recovery,
		middleware.Logging,
	))

	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/stats", s.statsHandler)
	mux.Handle("/metrics", promhttp.Handler())

	metrics.WorkerQueueCapacity.Set(float64(cap(s.taskChan)))

	s.httpServer = &http.Server{
		Addr:         s.cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// shutdown performs graceful shutdown
func (s *Service) shutdown() error {
	log := logger.WithComponent("service")
	log.Info().Msg("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("stopping HTTP server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("closing task channel")
	close(s.taskChan)

	done := make(chan struct{})
	go func() {
		s.workerPool.Stop()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("workers stopped gracefully")
	case <-time.After(15 * time.Second):
		log.Warn().Msg("worker shutdown timeout - forcing exit")
	}

	log.Info().Msg("closing kafka notifier")
	if err := s.notifier.Close(); err != nil {
		log.Error().Err(err).Msg("notifier close error")
	}

	s.wg.Wait()

	log.Info().Msg("service stopped gracefully")
	return nil
}

// reportStats periodically logs statistics
func (s *Service) reportStats(ctx context.Context) {
	log := logger.WithComponent("service")
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			workerStats := s.workerPool.Stats()
			notifierStats := s.notifier.Stats()

			metrics.WorkerQueueSize.Set(float64(len(s.taskChan)))

			log.Info().
				Uint64("worker_processed", workerStats.Processed).
				Uint64("worker_failed", workerStats.Failed).
				Uint64("notifier_published", notifierStats.Published).
				Uint64("notifier_failed", notifierStats.Failed).
				Int("queue_size", len(s.taskChan)).
				Msg("stats")
		}
	}
}

// healthHandler handles health check requests
func (s *Service) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		http.Error(w, fmt.Sprintf("unhealthy: %v", err), http.StatusServiceUnavailable)
		return
	}
	if err := s.notifier.HealthCheck(ctx); err != nil {
		http.Error(w, fmt.Sprintf("unhealthy: %v", err), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

// statsHandler returns current statistics
func (s *Service) statsHandler(w http.ResponseWriter, r *http.Request) {
	workerStats := s.workerPool.Stats()
	notifierStats := s.notifier.Stats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{
		"worker": {
			"processed": %d,
			"failed": %d
		},
		"notifier": {
			"published": %d,
			"failed": %d
		},
		"channel": {
			"buffered": %d,
			"capacity": %d
		}
	}`,
		workerStats.Processed,
		workerStats.Failed,
		notifierStats.Published,
		notifierStats.Failed,
		len(s.taskChan),
		cap(s.taskChan),
	)
}
