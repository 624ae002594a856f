// Package service implements the admin-side lead operations: listing,
// detail, pipeline status changes, and dashboard metrics.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nomadtax_backend/internal/events"
	"nomadtax_backend/internal/leads/repository"
	"nomadtax_backend/internal/leads/transport"
	"nomadtax_backend/platform/apperr"

	"github.com/google/uuid"
)

// Statuses a lead moves through. There are no transition rules beyond the
// enum itself; admins can move leads freely.
var ValidStatuses = []string{"new", "contacted", "booked", "converted", "not_interested"}

const (
	defaultPageSize = 25
	maxPageSize     = 200
)

// Repository is the consumer-driven data access interface.
type Repository interface {
	List(ctx context.Context, params repository.ListParams) ([]repository.Lead, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	ResponsesForLead(ctx context.Context, sessionID uuid.UUID) ([]repository.Response, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (repository.Lead, string, error)
	Metrics(ctx context.Context) (repository.Metrics, error)
}

type Service struct {
	repo Repository
	bus  events.Bus
}

func New(repo Repository, bus events.Bus) *Service {
	return &Service{repo: repo, bus: bus}
}

// List returns a filtered, paged lead listing.
func (s *Service) List(ctx context.Context, q transport.ListQuery) (transport.ListResponse, error) {
	params, page, pageSize, err := buildListParams(q)
	if err != nil {
		return transport.ListResponse{}, err
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.ListResponse{}, fmt.Errorf("list leads: %w", err)
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, toLeadResponse(lead))
	}

	return transport.ListResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Get returns one lead together with its stored quiz answers.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.DetailResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.DetailResponse{}, apperr.NotFound("lead not found")
		}
		return transport.DetailResponse{}, fmt.Errorf("get lead: %w", err)
	}

	responses, err := s.repo.ResponsesForLead(ctx, lead.SessionID)
	if err != nil {
		return transport.DetailResponse{}, fmt.Errorf("load responses: %w", err)
	}

	detail := transport.DetailResponse{
		LeadResponse: toLeadResponse(lead),
		Responses:    make([]transport.ResponseEntry, 0, len(responses)),
	}
	for _, r := range responses {
		detail.Responses = append(detail.Responses, transport.ResponseEntry{
			QuestionKey: r.QuestionKey,
			Answer:      json.RawMessage(r.Answer),
			CreatedAt:   r.CreatedAt,
		})
	}
	return detail, nil
}

// UpdateStatus moves a lead to a new pipeline status and publishes the
// change.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req transport.UpdateStatusRequest) (transport.LeadResponse, error) {
	lead, oldStatus, err := s.repo.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, fmt.Errorf("update status: %w", err)
	}

	if oldStatus != lead.Status {
		s.bus.Publish(ctx, events.LeadStatusChanged{
			LeadID:    lead.ID,
			OldStatus: oldStatus,
			NewStatus: lead.Status,
		})
	}
	return toLeadResponse(lead), nil
}

// Metrics returns the dashboard summary.
func (s *Service) Metrics(ctx context.Context) (transport.MetricsResponse, error) {
	m, err := s.repo.Metrics(ctx)
	if err != nil {
		return transport.MetricsResponse{}, fmt.Errorf("lead metrics: %w", err)
	}
	resp := transport.MetricsResponse{
		Total:        m.Total,
		Qualified:    m.Qualified,
		Last30Days:   m.Last30Days,
		AverageScore: m.AverageScore,
		ByStatus:     m.ByStatus,
	}
	if m.Total > 0 {
		resp.QualifiedRate = float64(m.Qualified) / float64(m.Total)
	}
	return resp, nil
}

func buildListParams(q transport.ListQuery) (repository.ListParams, int, int, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	params := repository.ListParams{
		Search:    q.Search,
		Qualified: q.Qualified,
		Offset:    (page - 1) * pageSize,
		Limit:     pageSize,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
	if q.Status != "" {
		if !statusValid(q.Status) {
			return repository.ListParams{}, 0, 0, apperr.Validation(fmt.Sprintf("unknown status %q", q.Status))
		}
		params.Status = &q.Status
	}
	if q.From != "" {
		from, err := time.Parse("2006-01-02", q.From)
		if err != nil {
			return repository.ListParams{}, 0, 0, apperr.Validation("from must be YYYY-MM-DD")
		}
		params.CreatedAtFrom = &from
	}
	if q.To != "" {
		to, err := time.Parse("2006-01-02", q.To)
		if err != nil {
			return repository.ListParams{}, 0, 0, apperr.Validation("to must be YYYY-MM-DD")
		}
		// inclusive end of day
		to = to.Add(24*time.Hour - time.Nanosecond)
		params.CreatedAtTo = &to
	}
	return params, page, pageSize, nil
}

func statusValid(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func toLeadResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:        lead.ID,
		SessionID: lead.SessionID,
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Residence: lead.Residence,
		Qualified: lead.Qualified,
		Score:     lead.Score,
		Reasons:   lead.Reasons,
		Status:    lead.Status,
		Source:    lead.Source,
		CreatedAt: lead.CreatedAt,
		UpdatedAt: lead.UpdatedAt,
	}
}
