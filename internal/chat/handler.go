package chat

import (
	"net/http"

	"nomadtax_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// HandleStream relays one completion request. Errors are reported as JSON
// before any streaming starts; once the upstream body opens, chunks pass
// through verbatim with a flush after every read.
func (h *Handler) HandleStream(c *gin.Context) {
	var req StreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	body, contentType, err := h.svc.Stream(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	defer body.Close()

	c.Writer.Header().Set("Content-Type", contentType)
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	buf := make([]byte, 4096)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, writeErr := c.Writer.Write(buf[:n]); writeErr != nil {
				return
			}
			c.Writer.Flush()
		}
		if readErr != nil {
			// Mid-stream failures cannot change the status anymore; the
			// connection just ends, EOF or not.
			return
		}
	}
}
