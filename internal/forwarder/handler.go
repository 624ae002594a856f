package forwarder

import (
	"net/http"

	"nomadtax_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// EventRequest is a client-side analytics event to forward. The public
// intake only accepts the three site event families; internal publishers go
// through Service.Forward directly with their own type names.
type EventRequest struct {
	Type string         `json:"type" binding:"required,oneof=quiz contact newsletter"`
	Data map[string]any `json:"data"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// HandleEvent accepts a client event. The response is always 200 with the
// delivery status; an unconfigured webhook reports "skipped" rather than an
// error so clients need no configuration awareness.
func (h *Handler) HandleEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	status := h.svc.Forward(c.Request.Context(), req.Type, req.Data)
	httpkit.OK(c, gin.H{"status": status})
}
