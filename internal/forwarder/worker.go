package forwarder

import (
	"context"
	"fmt"

	"nomadtax_backend/platform/config"
	"nomadtax_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes queued webhook deliveries.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	service *Service
	log     *logger.Logger
}

type workerConfig interface {
	config.SchedulerConfig
	config.ForwarderConfig
}

func NewWorker(cfg workerConfig, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		// The worker delivers directly; it never re-enqueues.
		service: New(cfg, nil, log),
		log:     log,
	}
	w.mux.HandleFunc(TaskDeliver, w.handleDeliver)

	return w, nil
}

func (w *Worker) handleDeliver(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseDeliverPayload(task)
	if err != nil {
		return err
	}
	if err := w.service.Deliver(ctx, payload); err != nil {
		w.log.ForwardEvent(payload.Type, "retrying", err)
		return err
	}
	w.log.ForwardEvent(payload.Type, "delivered", nil)
	return nil
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("forwarder worker stopped", "error", err)
	}
}
