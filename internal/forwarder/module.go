package forwarder

import (
	apphttp "nomadtax_backend/internal/http"
	"nomadtax_backend/platform/config"
	"nomadtax_backend/platform/logger"
)

// Module is the forwarder bounded context module implementing http.Module.
type Module struct {
	service *Service
	queue   *Queue
	handler *Handler
}

type moduleConfig interface {
	config.ForwarderConfig
	config.SchedulerConfig
}

// NewModule wires the forwarder. When Redis is not configured the queue is
// skipped and deliveries run directly.
func NewModule(cfg moduleConfig, log *logger.Logger) *Module {
	var queue *Queue
	var enqueuer Enqueuer
	if cfg.GetRedisURL() != "" {
		q, err := NewQueue(cfg)
		if err != nil {
			log.Warn("forwarder queue unavailable, falling back to direct delivery", "error", err)
		} else {
			queue = q
			enqueuer = q
		}
	}

	svc := New(cfg, enqueuer, log)
	return &Module{
		service: svc,
		queue:   queue,
		handler: NewHandler(svc),
	}
}

// Service exposes the forwarder for other modules to publish through.
func (m *Module) Service() *Service { return m.service }

// Close releases the queue connection.
func (m *Module) Close() error { return m.queue.Close() }

// Name returns the module identifier.
func (m *Module) Name() string { return "forwarder" }

// RegisterRoutes mounts the public event intake with the public rate
// limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/events")
	if ctx.PublicRateLimiter != nil {
		group.Use(ctx.PublicRateLimiter.RateLimit())
	}
	group.POST("", m.handler.HandleEvent)
}

var _ apphttp.Module = (*Module)(nil)
