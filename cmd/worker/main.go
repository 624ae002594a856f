package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"nomadtax_backend/internal/forwarder"
	"nomadtax_backend/platform/config"
	"nomadtax_backend/platform/logger"
)

// The worker consumes queued webhook deliveries. It only makes sense with
// Redis configured; without it the API delivers directly and this process
// exits immediately.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not configured; nothing to consume, exiting")
		return
	}

	worker, err := forwarder.NewWorker(cfg, log)
	if err != nil {
		log.Error("failed to initialize forwarder worker", "error", err)
		panic("failed to initialize forwarder worker: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("forwarder worker started", "queue", cfg.AsynqQueueName, "concurrency", cfg.AsynqConcurrency)
	worker.Run(ctx)
	log.Info("forwarder worker stopped")
}
