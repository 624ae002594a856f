// Package exports provides the CSV lead export and the basic-auth
// credentials that guard it. The CSV endpoint exists for spreadsheet and
// CRM imports that cannot carry a JWT.
package exports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrCredentialNotFound = errors.New("export credential not found")

// Credential is a basic-auth identity for the export endpoint. The password
// is stored as a bcrypt hash and never leaves the database.
type Credential struct {
	ID         uuid.UUID
	Username   string
	Password   string // bcrypt hash
	CreatedBy  *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
	LastUsedAt *time.Time
}

// ExportRow is one lead in the CSV export.
type ExportRow struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Residence *string
	Qualified bool
	Score     int
	Status    string
	Source    *string
	CreatedAt time.Time
}

// Repository provides data access for export operations.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertCredential creates or replaces the credential for a username.
func (r *Repository) UpsertCredential(ctx context.Context, username, passwordHash string, createdBy *uuid.UUID) (Credential, error) {
	var cred Credential
	err := r.pool.QueryRow(ctx, `
		INSERT INTO export_credentials (username, password_hash, created_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (username)
		DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = now()
		RETURNING id, username, password_hash, created_by, created_at, updated_at, last_used_at
	`, username, passwordHash, createdBy).Scan(
		&cred.ID, &cred.Username, &cred.Password, &cred.CreatedBy,
		&cred.CreatedAt, &cred.UpdatedAt, &cred.LastUsedAt,
	)
	return cred, err
}

// CredentialByUsername fetches a credential for auth checks.
func (r *Repository) CredentialByUsername(ctx context.Context, username string) (Credential, error) {
	var cred Credential
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, created_by, created_at, updated_at, last_used_at
		FROM export_credentials
		WHERE username = $1
	`, username).Scan(
		&cred.ID, &cred.Username, &cred.Password, &cred.CreatedBy,
		&cred.CreatedAt, &cred.UpdatedAt, &cred.LastUsedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credential{}, ErrCredentialNotFound
	}
	return cred, err
}

// ListCredentials returns all credentials without password hashes exposed to
// callers beyond this package.
func (r *Repository) ListCredentials(ctx context.Context) ([]Credential, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, password_hash, created_by, created_at, updated_at, last_used_at
		FROM export_credentials
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Credential, 0)
	for rows.Next() {
		var cred Credential
		if err := rows.Scan(
			&cred.ID, &cred.Username, &cred.Password, &cred.CreatedBy,
			&cred.CreatedAt, &cred.UpdatedAt, &cred.LastUsedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, cred)
	}
	return items, rows.Err()
}

// DeleteCredential removes a credential by username.
func (r *Repository) DeleteCredential(ctx context.Context, username string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM export_credentials WHERE username = $1`, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

// TouchLastUsed records a successful auth. Best effort.
func (r *Repository) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE export_credentials SET last_used_at = now() WHERE id = $1
	`, id)
	return err
}

// LeadsForExport streams leads matching the date range and optional
// qualified filter, oldest first.
func (r *Repository) LeadsForExport(ctx context.Context, from, to *time.Time, qualified *bool) ([]ExportRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, COALESCE(phone, ''), residence, qualified, score, status, source, created_at
		FROM quiz_leads
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		  AND ($3::boolean IS NULL OR qualified = $3)
		ORDER BY created_at ASC
	`, from, to, qualified)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]ExportRow, 0)
	for rows.Next() {
		var row ExportRow
		if err := rows.Scan(
			&row.ID, &row.Name, &row.Email, &row.Phone, &row.Residence,
			&row.Qualified, &row.Score, &row.Status, &row.Source, &row.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, row)
	}
	return items, rows.Err()
}
