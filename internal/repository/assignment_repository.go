package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-workflow/internal/domain"
)

type assignmentRepository struct {
	db Querier
}

// NewAssignmentRepository constructs repository.
func NewAssignmentRepository(db Querier) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) error {
	const query = `
        INSERT INTO assignments (ticket_id, assignee_user_id, assigner_user_id, status, remarks)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		assignment.TicketID,
		assignment.AssigneeID,
		assignment.AssignerID,
		assignment.Status,
		assignment.Remarks,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt)
}

func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	const query = `
        SELECT id, ticket_id, assignee_user_id, assigner_user_id, status, remarks, created_at, updated_at
        FROM assignments WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *assignmentRepository) GetByTicketAndAssignee(ctx context.Context, ticketID, assigneeID string) (*domain.Assignment, error) {
	const query = `
        SELECT id, ticket_id, assignee_user_id, assigner_user_id, status, remarks, created_at, updated_at
        FROM assignments WHERE ticket_id=$1 AND assignee_user_id=$2`
	return r.fetchSingle(ctx, query, ticketID, assigneeID)
}

func (r *assignmentRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Assignment, error) {
	var assignment domain.Assignment
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&assignment.ID,
		&assignment.TicketID,
		&assignment.AssigneeID,
		&assignment.AssignerID,
		&assignment.Status,
		&assignment.Remarks,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Assignment, error) {
	const query = `
        SELECT id, ticket_id, assignee_user_id, assigner_user_id, status, remarks, created_at, updated_at
        FROM assignments WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Assignment
	for rows.Next() {
		var assignment domain.Assignment
		if err := rows.Scan(
			&assignment.ID,
			&assignment.TicketID,
			&assignment.AssigneeID,
			&assignment.AssignerID,
			&assignment.Status,
			&assignment.Remarks,
			&assignment.CreatedAt,
			&assignment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, assignment)
	}
	return result, rows.Err()
}

func (r *assignmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM assignments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
