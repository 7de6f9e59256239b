package repository

import (
	"context"

	"github.com/spec-kit/issue-workflow/internal/domain"
)

type escalationRepository struct {
	db Querier
}

// NewEscalationRepository constructs repository.
func NewEscalationRepository(db Querier) EscalationRepository {
	return &escalationRepository{db: db}
}

func (r *escalationRepository) Create(ctx context.Context, escalation *domain.Escalation) error {
	const query = `
        INSERT INTO escalations (ticket_id, from_tier, to_tier, reason, escalated_by_user_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		escalation.TicketID,
		escalation.FromTier,
		escalation.ToTier,
		escalation.Reason,
		escalation.EscalatedBy,
	).Scan(&escalation.ID, &escalation.CreatedAt)
}

func (r *escalationRepository) GetByID(ctx context.Context, id string) (*domain.Escalation, error) {
	const query = `
        SELECT id, ticket_id, from_tier, to_tier, reason, escalated_by_user_id, created_at
        FROM escalations WHERE id=$1`
	var escalation domain.Escalation
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&escalation.ID,
		&escalation.TicketID,
		&escalation.FromTier,
		&escalation.ToTier,
		&escalation.Reason,
		&escalation.EscalatedBy,
		&escalation.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &escalation, nil
}

func (r *escalationRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Escalation, error) {
	const query = `
        SELECT id, ticket_id, from_tier, to_tier, reason, escalated_by_user_id, created_at
        FROM escalations WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Escalation
	for rows.Next() {
		var escalation domain.Escalation
		if err := rows.Scan(
			&escalation.ID,
			&escalation.TicketID,
			&escalation.FromTier,
			&escalation.ToTier,
			&escalation.Reason,
			&escalation.EscalatedBy,
			&escalation.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, escalation)
	}
	return result, rows.Err()
}
