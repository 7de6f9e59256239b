package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/events"
	"github.com/spec-kit/issue-workflow/internal/repository"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util"
)

// AssignCommand tasks an assignee with a ticket. At most one assignment may
// exist per (ticket, assignee) pair; a duplicate reports Conflict with the
// existing assignment id rather than overwriting.
type AssignCommand struct {
	TicketID      string
	AssigneeID    string
	AssignerID    string
	Remarks       string
	AttachmentIDs []string
}

func (c *AssignCommand) Name() string { return "assign" }

func (c *AssignCommand) Run(ctx context.Context, store *repository.Store) (*Effect, error) {
	ticket, err := loadTicket(ctx, store, c.TicketID)
	if err != nil {
		return nil, err
	}
	assignee, err := loadActiveUser(ctx, store, c.AssigneeID, "assignee")
	if err != nil {
		return nil, err
	}
	if _, err := loadActiveUser(ctx, store, c.AssignerID, "assigner"); err != nil {
		return nil, err
	}

	existing, err := store.Assignments.GetByTicketAndAssignee(ctx, c.TicketID, c.AssigneeID)
	if err != nil && !isNoRows(err) {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewConflict("assignment already exists", map[string]any{
			"assignment_id": existing.ID,
		})
	}

	assignment := &domain.Assignment{
		TicketID:   c.TicketID,
		AssigneeID: c.AssigneeID,
		AssignerID: c.AssignerID,
		Status:     domain.AssignmentStatusPending,
		Remarks:    strings.TrimSpace(c.Remarks),
	}
	// The unique index on (ticket_id, assignee_user_id) backstops the
	// check above against concurrent assigners.
	if err := store.Assignments.Create(ctx, assignment); err != nil {
		return nil, err
	}
	if err := store.Attachments.Link(ctx, domain.AttachmentOwnerAssignment, assignment.ID, c.AttachmentIDs); err != nil {
		return nil, err
	}

	ticket.Status = domain.TicketStatusPending
	if err := store.Tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	notes := fmt.Sprintf("assigned to %s", assignee.Name)
	if assignment.Remarks != "" {
		notes += ": " + assignment.Remarks
	}
	return &Effect{
		History: &domain.HistoryEntry{
			TicketID:     ticket.ID,
			ActorID:      c.AssignerID,
			Action:       domain.HistoryActionAssigned,
			StatusAtTime: ticket.Status,
			AssignmentID: &assignment.ID,
			Notes:        notes,
		},
		Events: []events.Event{{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			ActorID:  c.AssignerID,
			Payload: events.TicketAssignedPayload{
				AssignmentID: assignment.ID,
				AssigneeID:   assignment.AssigneeID,
				AssignerID:   assignment.AssignerID,
				Remarks:      assignment.Remarks,
			},
		}},
		Result: assignment,
	}, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
