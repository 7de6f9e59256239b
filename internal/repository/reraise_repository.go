package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-workflow/internal/domain"
)

type reRaiseRepository struct {
	db Querier
}

// NewReRaiseRepository constructs repository.
func NewReRaiseRepository(db Querier) ReRaiseRepository {
	return &reRaiseRepository{db: db}
}

func (r *reRaiseRepository) Create(ctx context.Context, reRaise *domain.ReRaise) error {
	const query = `
        INSERT INTO re_raises (ticket_id, re_raised_by_user_id, reason, re_raised_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		reRaise.TicketID,
		reRaise.ReRaisedBy,
		reRaise.Reason,
		reRaise.ReRaisedAt,
	).Scan(&reRaise.ID, &reRaise.CreatedAt)
}

func (r *reRaiseRepository) GetByID(ctx context.Context, id string) (*domain.ReRaise, error) {
	const query = `
        SELECT id, ticket_id, re_raised_by_user_id, reason, re_raised_at, created_at
        FROM re_raises WHERE id=$1`
	var reRaise domain.ReRaise
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&reRaise.ID,
		&reRaise.TicketID,
		&reRaise.ReRaisedBy,
		&reRaise.Reason,
		&reRaise.ReRaisedAt,
		&reRaise.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &reRaise, nil
}

func (r *reRaiseRepository) CountByTicket(ctx context.Context, ticketID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM re_raises WHERE ticket_id=$1`, ticketID).Scan(&count)
	return count, err
}

func (r *reRaiseRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.ReRaise, error) {
	const query = `
        SELECT id, ticket_id, re_raised_by_user_id, reason, re_raised_at, created_at
        FROM re_raises WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ReRaise
	for rows.Next() {
		var reRaise domain.ReRaise
		if err := rows.Scan(
			&reRaise.ID,
			&reRaise.TicketID,
			&reRaise.ReRaisedBy,
			&reRaise.Reason,
			&reRaise.ReRaisedAt,
			&reRaise.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, reRaise)
	}
	return result, rows.Err()
}

func (r *reRaiseRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM re_raises WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
