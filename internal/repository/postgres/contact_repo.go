package postgres

import (
	"context"
	"errors"
	"fmt"

	"contact-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the subset of *pgxpool.Pool the repository needs.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ContactRepository stores contact submissions in the contact_submissions table.
// Rows are only ever inserted.
type ContactRepository struct {
	db querier
}

var (
	_ domain.ContactRepository = (*ContactRepository)(nil)
	_ domain.ContactReader     = (*ContactRepository)(nil)
)

func NewContactRepository(db querier) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create inserts a new row with a fresh UUID and fills in ID and CreatedAt.
// Submitting the same payload twice yields two rows.
func (r *ContactRepository) Create(ctx context.Context, s *domain.ContactSubmission) error {
	id := uuid.NewString()
	query := `INSERT INTO contact_submissions (id, name, email, subject, message)
              VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	err := r.db.QueryRow(ctx, query, id, s.Name, s.Email, s.Subject, s.Message).Scan(&s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return fmt.Errorf("contact submission rejected: %s (SQLSTATE %s)", pgErr.Message, pgErr.Code)
		}
		return fmt.Errorf("insert contact submission: %w", err)
	}

	s.ID = id
	return nil
}

// List returns submissions ordered newest first.
func (r *ContactRepository) List(ctx context.Context, opts domain.ContactListOptions) ([]*domain.ContactSubmission, error) {
	query := `SELECT id, name, email, subject, message, created_at
              FROM contact_submissions
              ORDER BY created_at DESC, id
              LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("list contact submissions: %w", err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[domain.ContactSubmission])
	if err != nil {
		return nil, fmt.Errorf("scan contact submissions: %w", err)
	}
	return items, nil
}
