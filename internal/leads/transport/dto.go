// Package transport defines the wire shapes for the admin leads API.
package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ListQuery binds the admin list filters from the query string.
type ListQuery struct {
	Search    string `form:"search" binding:"omitempty,max=200"`
	Status    string `form:"status" binding:"omitempty,max=32"`
	Qualified *bool  `form:"qualified"`
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" binding:"omitempty,min=1,max=200"`
	SortBy    string `form:"sortBy" binding:"omitempty,max=32"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

// LeadResponse is one lead in admin views.
type LeadResponse struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"sessionId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Residence *string   `json:"residence,omitempty"`
	Qualified bool      `json:"qualified"`
	Score     int       `json:"score"`
	Reasons   []string  `json:"reasons"`
	Status    string    `json:"status"`
	Source    *string   `json:"source,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListResponse pages leads.
type ListResponse struct {
	Items    []LeadResponse `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

// ResponseEntry is one quiz answer in the lead detail view. Answer is raw
// JSON as submitted.
type ResponseEntry struct {
	QuestionKey string          `json:"questionKey"`
	Answer      json.RawMessage `json:"answer"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// DetailResponse is a lead with its full answer history.
type DetailResponse struct {
	LeadResponse
	Responses []ResponseEntry `json:"responses"`
}

// UpdateStatusRequest moves a lead through the pipeline.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new contacted booked converted not_interested"`
}

// MetricsResponse summarizes the pipeline.
type MetricsResponse struct {
	Total         int            `json:"total"`
	Qualified     int            `json:"qualified"`
	QualifiedRate float64        `json:"qualifiedRate"`
	Last30Days    int            `json:"last30Days"`
	AverageScore  float64        `json:"averageScore"`
	ByStatus      map[string]int `json:"byStatus"`
}
