package workflow

import (
	"context"
	"strings"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/events"
	"github.com/spec-kit/issue-workflow/internal/repository"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util"
)

// UnassignCommand removes an assignment. The row is hard-deleted: the
// history entry is the permanent record, the assignment row is a live
// pointer. Unassigning does not change the ticket's status.
type UnassignCommand struct {
	// Either AssignmentID, or TicketID+AssigneeID, locates the row.
	AssignmentID string
	TicketID     string
	AssigneeID   string
	ActorID      string
	Reason       string
}

// UnassignByID locates the assignment by its identifier.
func UnassignByID(assignmentID, actorID, reason string) *UnassignCommand {
	return &UnassignCommand{AssignmentID: assignmentID, ActorID: actorID, Reason: reason}
}

// UnassignByPair locates the assignment by its unique (ticket, assignee) pair.
func UnassignByPair(ticketID, assigneeID, actorID, reason string) *UnassignCommand {
	return &UnassignCommand{TicketID: ticketID, AssigneeID: assigneeID, ActorID: actorID, Reason: reason}
}

func (c *UnassignCommand) Name() string { return "unassign" }

func (c *UnassignCommand) Run(ctx context.Context, store *repository.Store) (*Effect, error) {
	if _, err := loadActiveUser(ctx, store, c.ActorID, "actor"); err != nil {
		return nil, err
	}

	assignment, err := c.locate(ctx, store)
	if err != nil {
		return nil, err
	}
	ticket, err := loadTicket(ctx, store, assignment.TicketID)
	if err != nil {
		return nil, err
	}

	if err := store.Attachments.Unlink(ctx, domain.AttachmentOwnerAssignment, assignment.ID); err != nil {
		return nil, err
	}
	if err := store.Assignments.Delete(ctx, assignment.ID); err != nil {
		return nil, err
	}

	reason := strings.TrimSpace(c.Reason)
	return &Effect{
		History: &domain.HistoryEntry{
			TicketID:     ticket.ID,
			ActorID:      c.ActorID,
			Action:       domain.HistoryActionUnassigned,
			StatusAtTime: ticket.Status,
			AssignmentID: &assignment.ID,
			Notes:        reason,
		},
		Events: []events.Event{{
			Type:     events.EventTicketUnassigned,
			TicketID: ticket.ID,
			ActorID:  c.ActorID,
			Payload: events.TicketUnassignedPayload{
				AssignmentID: assignment.ID,
				AssigneeID:   assignment.AssigneeID,
				Reason:       reason,
			},
		}},
		Result: assignment,
	}, nil
}

func (c *UnassignCommand) locate(ctx context.Context, store *repository.Store) (*domain.Assignment, error) {
	if c.AssignmentID != "" {
		assignment, err := store.Assignments.GetByID(ctx, c.AssignmentID)
		if err != nil {
			if isNoRows(err) {
				return nil, apperrors.NewNotFound("assignment", map[string]any{"assignment_id": c.AssignmentID})
			}
			return nil, err
		}
		return assignment, nil
	}

	if _, err := loadTicket(ctx, store, c.TicketID); err != nil {
		return nil, err
	}
	if _, err := loadActiveUser(ctx, store, c.AssigneeID, "assignee"); err != nil {
		return nil, err
	}
	assignment, err := store.Assignments.GetByTicketAndAssignee(ctx, c.TicketID, c.AssigneeID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("assignment", map[string]any{
				"ticket_id":   c.TicketID,
				"assignee_id": c.AssigneeID,
			})
		}
		return nil, err
	}
	return assignment, nil
}
