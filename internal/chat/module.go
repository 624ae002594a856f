package chat

import (
	apphttp "nomadtax_backend/internal/http"
	"nomadtax_backend/platform/config"
	"nomadtax_backend/platform/logger"
)

// Module is the chat bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule wires the chat relay.
func NewModule(cfg config.ChatConfig, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(New(cfg, log))}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "chat" }

// RegisterRoutes mounts the public chat route with the public rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/chat")
	if ctx.PublicRateLimiter != nil {
		group.Use(ctx.PublicRateLimiter.RateLimit())
	}
	group.POST("/stream", m.handler.HandleStream)
}

var _ apphttp.Module = (*Module)(nil)
