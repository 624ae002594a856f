// Package quiz provides the lead-qualification quiz bounded context module.
package quiz

import (
	"nomadtax_backend/internal/events"
	apphttp "nomadtax_backend/internal/http"
	"nomadtax_backend/internal/quiz/domain"
	"nomadtax_backend/internal/quiz/handler"
	"nomadtax_backend/internal/quiz/repository"
	"nomadtax_backend/internal/quiz/service"
	"nomadtax_backend/platform/config"
	"nomadtax_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the quiz bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the quiz stack: repository, scoring strategy from config,
// service, handler.
func NewModule(pool *pgxpool.Pool, bus events.Bus, forwarder service.Forwarder, cfg config.QuizConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	strategy := domain.StrategyFor(cfg.GetScoringPolicy())
	svc := service.New(repo, strategy, bus, forwarder, log)

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "quiz" }

// RegisterRoutes mounts the public quiz routes under /api/v1/quiz with the
// stricter public rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/quiz")
	if ctx.PublicRateLimiter != nil {
		group.Use(ctx.PublicRateLimiter.RateLimit())
	}
	m.handler.RegisterRoutes(group)
}
