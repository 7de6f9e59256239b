package workflow

import (
	"context"
	"strings"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/events"
	"github.com/spec-kit/issue-workflow/internal/repository"
)

// RejectCommand records a rejection: the ticket and its current tier both
// become rejected.
type RejectCommand struct {
	TicketID      string
	Reason        string
	RejectedBy    string
	AttachmentIDs []string
}

func (c *RejectCommand) Name() string { return "reject" }

func (c *RejectCommand) Run(ctx context.Context, store *repository.Store) (*Effect, error) {
	ticket, err := loadTicket(ctx, store, c.TicketID)
	if err != nil {
		return nil, err
	}
	if _, err := loadActiveUser(ctx, store, c.RejectedBy, "rejector"); err != nil {
		return nil, err
	}

	rejection := &domain.Rejection{
		TicketID:   c.TicketID,
		RejectedBy: c.RejectedBy,
		Reason:     strings.TrimSpace(c.Reason),
	}
	if err := store.Rejections.Create(ctx, rejection); err != nil {
		return nil, err
	}
	if err := store.Attachments.Link(ctx, domain.AttachmentOwnerRejection, rejection.ID, c.AttachmentIDs); err != nil {
		return nil, err
	}

	ticket.Status = domain.TicketStatusRejected
	if err := store.Tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	if err := markCurrentTier(ctx, store, ticket.ID, domain.TierStatusRejected); err != nil {
		return nil, err
	}

	return &Effect{
		History: &domain.HistoryEntry{
			TicketID:     ticket.ID,
			ActorID:      c.RejectedBy,
			Action:       domain.HistoryActionRejected,
			StatusAtTime: ticket.Status,
			Notes:        rejection.Reason,
		},
		Events: []events.Event{{
			Type:     events.EventTicketRejected,
			TicketID: ticket.ID,
			ActorID:  c.RejectedBy,
			Payload: events.TicketOutcomePayload{
				OutcomeID: rejection.ID,
				Status:    ticket.Status,
				Reason:    rejection.Reason,
			},
		}},
		Result: rejection,
	}, nil
}
