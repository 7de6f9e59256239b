package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-workflow/internal/domain"
)

type resolutionRepository struct {
	db Querier
}

// NewResolutionRepository constructs repository.
func NewResolutionRepository(db Querier) ResolutionRepository {
	return &resolutionRepository{db: db}
}

func (r *resolutionRepository) Create(ctx context.Context, resolution *domain.Resolution) error {
	const query = `
        INSERT INTO resolutions (ticket_id, resolved_by_user_id, reason)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		resolution.TicketID,
		resolution.ResolvedBy,
		resolution.Reason,
	).Scan(&resolution.ID, &resolution.CreatedAt)
}

func (r *resolutionRepository) GetByID(ctx context.Context, id string) (*domain.Resolution, error) {
	const query = `
        SELECT id, ticket_id, resolved_by_user_id, reason, created_at
        FROM resolutions WHERE id=$1`
	var resolution domain.Resolution
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&resolution.ID,
		&resolution.TicketID,
		&resolution.ResolvedBy,
		&resolution.Reason,
		&resolution.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &resolution, nil
}

func (r *resolutionRepository) CountByTicket(ctx context.Context, ticketID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM resolutions WHERE ticket_id=$1`, ticketID).Scan(&count)
	return count, err
}

func (r *resolutionRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Resolution, error) {
	const query = `
        SELECT id, ticket_id, resolved_by_user_id, reason, created_at
        FROM resolutions WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Resolution
	for rows.Next() {
		var resolution domain.Resolution
		if err := rows.Scan(
			&resolution.ID,
			&resolution.TicketID,
			&resolution.ResolvedBy,
			&resolution.Reason,
			&resolution.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, resolution)
	}
	return result, rows.Err()
}

func (r *resolutionRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM resolutions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
