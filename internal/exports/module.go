package exports

import (
	apphttp "nomadtax_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the exports bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	repo    *Repository
}

// NewModule creates and initializes the exports module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := NewRepository(pool)
	return &Module{
		handler: NewHandler(repo),
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "exports" }

// RegisterRoutes mounts export routes. The CSV endpoint uses basic auth so
// spreadsheet imports can reach it without a JWT; credential management
// lives under the admin group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	publicGroup := ctx.V1.Group("/exports")
	publicGroup.Use(BasicAuthMiddleware(m.repo))
	publicGroup.GET("/leads.csv", m.handler.ExportLeadsCSV)

	adminGroup := ctx.Admin.Group("/exports/credentials")
	adminGroup.POST("", m.handler.HandleUpsertCredential)
	adminGroup.GET("", m.handler.HandleListCredentials)
	adminGroup.DELETE("/:username", m.handler.HandleDeleteCredential)
}

var _ apphttp.Module = (*Module)(nil)
