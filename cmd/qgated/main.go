package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qgate/internal/config"
	"qgate/internal/logger"
	"qgate/internal/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.FromEnv()
	logger.Init(cfg.LogLevel)

	svc := service.New(cfg)

	// run service in background
	go func() {
		if err := svc.Run(ctx); err != nil {
			log.Printf("service exited: %v", err)
			cancel()
		}
	}()

	// wait for termination signals
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigs:
		log.Println("shutting down")
		cancel()
	case <-ctx.Done():
	}

	// give graceful shutdown some time
	time.Sleep(500 * time.Millisecond)
	log.Println("exited")
}
