// Package repository persists quiz responses and the leads distilled from
// them. Responses are an append-style audit of what each session answered;
// leads are the scored result of a submission.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound            = errors.New("lead not found")
	ErrDuplicateSubmission = errors.New("session already submitted")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Response is one stored step answer.
type Response struct {
	ID          uuid.UUID
	SessionID   uuid.UUID
	QuestionKey string
	Answer      []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Lead is a scored quiz submission.
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

// UpsertResponse stores a step answer, replacing any earlier answer for the
// same session and question. Answer must be valid JSON.
func (r *Repository) UpsertResponse(ctx context.Context, sessionID uuid.UUID, questionKey string, answer []byte) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO quiz_responses (session_id, question_key, answer)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, question_key)
		DO UPDATE SET answer = EXCLUDED.answer, updated_at = now()
	`, sessionID, questionKey, answer)
	return err
}

// ResponsesBySession returns all stored answers for a session in question
// order of arrival.
func (r *Repository) ResponsesBySession(ctx context.Context, sessionID uuid.UUID) ([]Response, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, question_key, answer, created_at, updated_at
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
		if err := rows.Scan(&item.ID, &item.SessionID, &item.QuestionKey, &item.Answer, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CreateLeadParams carries everything needed to record a submission.
type CreateLeadParams struct {
	SessionID uuid.UUID
	Name      string
	Email     string
	Phone     *string
	Residence *string
	Qualified bool
	Score     int
	Reasons   []string
	Source    *string
}

// CreateLead inserts the scored lead. A second submission for the same
// session returns ErrDuplicateSubmission.
func (r *Repository) CreateLead(ctx context.Context, params CreateLeadParams) (Lead, error) {
	var lead Lead
	err := r.pool.QueryRow(ctx, `
		INSERT INTO quiz_leads (session_id, name, email, phone, residence, qualified, score, reasons, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, session_id, name, email, phone, residence, qualified, score, reasons, status, source, created_at, updated_at
	`,
		params.SessionID, params.Name, params.Email, params.Phone, params.Residence,
		params.Qualified, params.Score, params.Reasons, params.Source,
	).Scan(
		&lead.ID, &lead.SessionID, &lead.Name, &lead.Email, &lead.Phone, &lead.Residence,
		&lead.Qualified, &lead.Score, &lead.Reasons, &lead.Status, &lead.Source,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Lead{}, ErrDuplicateSubmission
		}
		return Lead{}, err
	}
	return lead, nil
}

// LeadBySession fetches the lead created from a session, if any.
func (r *Repository) LeadBySession(ctx context.Context, sessionID uuid.UUID) (Lead, error) {
	var lead Lead
	err := r.pool.QueryRow(ctx, `
		SELECT id, session_id, name, email, phone, residence, qualified, score, reasons, status, source, created_at, updated_at
		FROM quiz_leads
		WHERE session_id = $1
	`, sessionID).Scan(
		&lead.ID, &lead.SessionID, &lead.Name, &lead.Email, &lead.Phone, &lead.Residence,
		&lead.Qualified, &lead.Score, &lead.Reasons, &lead.Status, &lead.Source,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}
