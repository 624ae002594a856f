// Package leads provides the admin lead-management bounded context module.
package leads

import (
	"nomadtax_backend/internal/events"
	apphttp "nomadtax_backend/internal/http"
	"nomadtax_backend/internal/leads/handler"
	"nomadtax_backend/internal/leads/repository"
	"nomadtax_backend/internal/leads/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the admin leads stack.
func NewModule(pool *pgxpool.Pool, bus events.Bus) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus)
	return &Module{handler: handler.New(svc)}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "leads" }

// RegisterRoutes mounts the admin lead routes. The admin group already
// carries JWT auth and the admin role check.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/leads"))
}
