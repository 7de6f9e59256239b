package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-workflow/internal/domain"
)

type rejectionRepository struct {
	db Querier
}

// NewRejectionRepository constructs repository.
func NewRejectionRepository(db Querier) RejectionRepository {
	return &rejectionRepository{db: db}
}

func (r *rejectionRepository) Create(ctx context.Context, rejection *domain.Rejection) error {
	const query = `
        INSERT INTO rejections (ticket_id, rejected_by_user_id, reason)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		rejection.TicketID,
		rejection.RejectedBy,
		rejection.Reason,
	).Scan(&rejection.ID, &rejection.CreatedAt)
}

func (r *rejectionRepository) GetByID(ctx context.Context, id string) (*domain.Rejection, error) {
	const query = `
        SELECT id, ticket_id, rejected_by_user_id, reason, created_at
        FROM rejections WHERE id=$1`
	var rejection domain.Rejection
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&rejection.ID,
		&rejection.TicketID,
		&rejection.RejectedBy,
		&rejection.Reason,
		&rejection.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rejection, nil
}

func (r *rejectionRepository) CountByTicket(ctx context.Context, ticketID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM rejections WHERE ticket_id=$1`, ticketID).Scan(&count)
	return count, err
}

func (r *rejectionRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Rejection, error) {
	const query = `
        SELECT id, ticket_id, rejected_by_user_id, reason, created_at
        FROM rejections WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Rejection
	for rows.Next() {
		var rejection domain.Rejection
		if err := rows.Scan(
			&rejection.ID,
			&rejection.TicketID,
			&rejection.RejectedBy,
			&rejection.Reason,
			&rejection.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rejection)
	}
	return result, rows.Err()
}

func (r *rejectionRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM rejections WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
