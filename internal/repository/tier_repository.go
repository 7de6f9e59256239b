package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-workflow/internal/domain"
)

type tierRepository struct {
	db Querier
}

// NewTierRepository constructs repository.
func NewTierRepository(db Querier) TierRepository {
	return &tierRepository{db: db}
}

func (r *tierRepository) Create(ctx context.Context, tier *domain.Tier) error {
	const query = `
        INSERT INTO tiers (ticket_id, level, handler_user_id, status, remarks, assigned_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		tier.TicketID,
		tier.Level,
		tier.HandlerID,
		tier.Status,
		tier.Remarks,
		tier.AssignedAt,
	).Scan(&tier.ID)
}

func (r *tierRepository) CurrentByTicket(ctx context.Context, ticketID string) (*domain.Tier, error) {
	const query = `
        SELECT id, ticket_id, level, handler_user_id, status, remarks, assigned_at
        FROM tiers WHERE ticket_id=$1 ORDER BY assigned_at DESC LIMIT 1`
	return r.fetchSingle(ctx, query, ticketID)
}

func (r *tierRepository) LatestByStatus(ctx context.Context, ticketID string, status domain.TierStatus) (*domain.Tier, error) {
	const query = `
        SELECT id, ticket_id, level, handler_user_id, status, remarks, assigned_at
        FROM tiers WHERE ticket_id=$1 AND status=$2 ORDER BY assigned_at DESC LIMIT 1`
	return r.fetchSingle(ctx, query, ticketID, status)
}

func (r *tierRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Tier, error) {
	var tier domain.Tier
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&tier.ID,
		&tier.TicketID,
		&tier.Level,
		&tier.HandlerID,
		&tier.Status,
		&tier.Remarks,
		&tier.AssignedAt,
	); err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *tierRepository) UpdateStatus(ctx context.Context, id string, status domain.TierStatus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE tiers SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *tierRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Tier, error) {
	const query = `
        SELECT id, ticket_id, level, handler_user_id, status, remarks, assigned_at
        FROM tiers WHERE ticket_id=$1 ORDER BY assigned_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Tier
	for rows.Next() {
		var tier domain.Tier
		if err := rows.Scan(
			&tier.ID,
			&tier.TicketID,
			&tier.Level,
			&tier.HandlerID,
			&tier.Status,
			&tier.Remarks,
			&tier.AssignedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, tier)
	}
	return result, rows.Err()
}
