package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/events"
	"github.com/spec-kit/issue-workflow/internal/repository"
)

// ReRaiseCommand reopens a resolved ticket at the same tier level: the
// current tier goes back to pending rather than a new tier being created.
type ReRaiseCommand struct {
	TicketID      string
	Reason        string
	ReRaisedBy    string
	ReRaisedAt    time.Time
	AttachmentIDs []string
}

func (c *ReRaiseCommand) Name() string { return "re_raise" }

func (c *ReRaiseCommand) Run(ctx context.Context, store *repository.Store) (*Effect, error) {
	ticket, err := loadTicket(ctx, store, c.TicketID)
	if err != nil {
		return nil, err
	}
	if _, err := loadActiveUser(ctx, store, c.ReRaisedBy, "re-raiser"); err != nil {
		return nil, err
	}

	reRaisedAt := c.ReRaisedAt
	if reRaisedAt.IsZero() {
		reRaisedAt = time.Now()
	}
	reRaise := &domain.ReRaise{
		TicketID:   c.TicketID,
		ReRaisedBy: c.ReRaisedBy,
		Reason:     strings.TrimSpace(c.Reason),
		ReRaisedAt: reRaisedAt,
	}
	if err := store.ReRaises.Create(ctx, reRaise); err != nil {
		return nil, err
	}
	if err := store.Attachments.Link(ctx, domain.AttachmentOwnerReRaise, reRaise.ID, c.AttachmentIDs); err != nil {
		return nil, err
	}

	ticket.Status = domain.TicketStatusReRaised
	if err := store.Tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	if err := markCurrentTier(ctx, store, ticket.ID, domain.TierStatusPending); err != nil {
		return nil, err
	}

	return &Effect{
		History: &domain.HistoryEntry{
			TicketID:     ticket.ID,
			ActorID:      c.ReRaisedBy,
			Action:       domain.HistoryActionReRaised,
			StatusAtTime: ticket.Status,
			Notes:        reRaise.Reason,
		},
		Events: []events.Event{{
			Type:     events.EventTicketReRaised,
			TicketID: ticket.ID,
			ActorID:  c.ReRaisedBy,
			Payload: events.TicketOutcomePayload{
				OutcomeID: reRaise.ID,
				Status:    ticket.Status,
				Reason:    reRaise.Reason,
			},
		}},
		Result: reRaise,
	}, nil
}
