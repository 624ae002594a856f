// Package repository provides admin-side data access over the leads
// produced by quiz submissions.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Lead is the admin view of a stored lead.
type Lead struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Name      string
	Email     string
	Phone     *string
	Residence *string
	Qualified bool
	Score     int
	Reasons   []string
	Status    string
	Source    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Response is one stored quiz answer attached to a lead's session.
type Response struct {
	QuestionKey string
	Answer      []byte
	CreatedAt   time.Time
}

// ListParams filter and page the admin lead list.
type ListParams struct {
	Search        string
	Status        *string
	Qualified     *bool
	CreatedAtFrom *time.Time
	CreatedAtTo   *time.Time
	Offset        int
	Limit         int
	SortBy        string
	SortOrder     string
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	whereClause, args, argIdx := buildListWhere(params)

	var total int
	countQuery := "SELECT COUNT(*) FROM quiz_leads l WHERE " + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortColumn := mapSortColumn(params.SortBy)
	sortOrder := "DESC"
	if params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	args = append(args, params.Limit, params.Offset)

	query := fmt.Sprintf(`
		SELECT l.id, l.session_id, l.name, l.email, l.phone, l.residence,
			l.qualified, l.score, l.reasons, l.status, l.source, l.created_at, l.updated_at
		FROM quiz_leads l
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(
			&lead.ID, &lead.SessionID, &lead.Name, &lead.Email, &lead.Phone, &lead.Residence,
			&lead.Qualified, &lead.Score, &lead.Reasons, &lead.Status, &lead.Source,
			&lead.CreatedAt, &lead.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}

	return leads, total, rows.Err()
}

func buildListWhere(params ListParams) (string, []interface{}, int) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(l.name ILIKE $%d OR l.email ILIKE $%d OR l.phone ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	if params.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Qualified != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.qualified = $%d", argIdx))
		args = append(args, *params.Qualified)
		argIdx++
	}
	if params.CreatedAtFrom != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.created_at >= $%d", argIdx))
		args = append(args, *params.CreatedAtFrom)
		argIdx++
	}
	if params.CreatedAtTo != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.created_at <= $%d", argIdx))
		args = append(args, *params.CreatedAtTo)
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

// mapSortColumn whitelists sortable columns; anything else falls back to
// creation time.
func mapSortColumn(sortBy string) string {
	switch sortBy {
	case "name":
		return "l.name"
	case "email":
		return "l.email"
	case "score":
		return "l.score"
	case "status":
		return "l.status"
	default:
		return "l.created_at"
	}
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	var lead Lead
	err := r.pool.QueryRow(ctx, `
		SELECT id, session_id, name, email, phone, residence,
			qualified, score, reasons, status, source, created_at, updated_at
		FROM quiz_leads
		WHERE id = $1
	`, id).Scan(
		&lead.ID, &lead.SessionID, &lead.Name, &lead.Email, &lead.Phone, &lead.Residence,
		&lead.Qualified, &lead.Score, &lead.Reasons, &lead.Status, &lead.Source,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// ResponsesForLead returns the stored quiz answers behind a lead, oldest
// first.
func (r *Repository) ResponsesForLead(ctx context.Context, sessionID uuid.UUID) ([]Response, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT question_key, answer, created_at
		FROM quiz_responses
		WHERE session_id = $1
		ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Response, 0)
	for rows.Next() {
		var item Response
		if err := rows.Scan(&item.QuestionKey, &item.Answer, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateStatus moves a lead to a new status and returns the previous one.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (Lead, string, error) {
	var lead Lead
	var oldStatus string
	err := r.pool.QueryRow(ctx, `
		UPDATE quiz_leads l SET status = $2, updated_at = now()
		FROM (SELECT id, status FROM quiz_leads WHERE id = $1 FOR UPDATE) old
		WHERE l.id = old.id
		RETURNING l.id, l.session_id, l.name, l.email, l.phone, l.residence,
			l.qualified, l.score, l.reasons, l.status, l.source, l.created_at, l.updated_at,
			old.status
	`, id, status).Scan(
		&lead.ID, &lead.SessionID, &lead.Name, &lead.Email, &lead.Phone, &lead.Residence,
		&lead.Qualified, &lead.Score, &lead.Reasons, &lead.Status, &lead.Source,
		&lead.CreatedAt, &lead.UpdatedAt, &oldStatus,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, "", ErrNotFound
	}
	return lead, oldStatus, err
}

// Metrics summarizes the lead pipeline for the admin dashboard.
type Metrics struct {
	Total        int
	Qualified    int
	Last30Days   int
	AverageScore float64
	ByStatus     map[string]int
}

func (r *Repository) Metrics(ctx context.Context) (Metrics, error) {
	m := Metrics{ByStatus: make(map[string]int)}

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE qualified),
			COUNT(*) FILTER (WHERE created_at >= now() - interval '30 days'),
			COALESCE(AVG(score), 0)
		FROM quiz_leads
	`).Scan(&m.Total, &m.Qualified, &m.Last30Days, &m.AverageScore)
	if err != nil {
		return Metrics{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM quiz_leads GROUP BY status
	`)
	if err != nil {
		return Metrics{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Metrics{}, err
		}
		m.ByStatus[status] = count
	}
	return m, rows.Err()
}
