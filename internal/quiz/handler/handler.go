package handler

import (
	"net/http"

	"nomadtax_backend/internal/quiz/domain"
	"nomadtax_backend/internal/quiz/service"
	"nomadtax_backend/internal/quiz/transport"
	"nomadtax_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
}

const msgInvalidRequest = "invalid request"

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/steps", h.Steps)
	rg.POST("/sessions", h.StartSession)
	rg.POST("/sessions/:id/answers", h.RecordAnswer)
	rg.POST("/sessions/:id/submit", h.Submit)
}

// Steps returns the flow definition for the client to render.
func (h *Handler) Steps(c *gin.Context) {
	flow := domain.DefaultFlow()
	resp := transport.StepsResponse{Steps: make([]transport.StepDTO, 0, len(flow))}
	for _, step := range flow {
		dto := transport.StepDTO{
			Key:           step.Key,
			Kind:          string(step.Kind),
			Prompt:        step.Prompt,
			Labels:        step.Labels,
			MaxSelections: step.MaxSelections,
			MaxLength:     step.MaxLength,
		}
		for _, opt := range step.Options {
			dto.Options = append(dto.Options, transport.OptionDTO{Value: opt.Value, Label: opt.Label})
		}
		resp.Steps = append(resp.Steps, dto)
	}
	httpkit.JSON(c, http.StatusOK, resp)
}

func (h *Handler) StartSession(c *gin.Context) {
	var req transport.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	resp, err := h.svc.StartSession(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, resp)
}

func (h *Handler) RecordAnswer(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	stored, err := h.svc.RecordAnswer(c.Request.Context(), sessionID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	status := "recorded"
	if !stored {
		status = "dropped"
	}
	httpkit.Accepted(c, gin.H{"status": status})
}

func (h *Handler) Submit(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	resp, err := h.svc.Submit(c.Request.Context(), sessionID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, resp)
}
