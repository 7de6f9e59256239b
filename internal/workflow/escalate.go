package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/events"
	"github.com/spec-kit/issue-workflow/internal/repository"
)

// EscalateCommand hands a ticket from one tier to another. A new tier row
// is created at the target level with no handler yet; the ticket goes back
// to pending.
type EscalateCommand struct {
	TicketID      string
	FromTier      int
	ToTier        int
	Reason        string
	EscalatedBy   string
	AttachmentIDs []string
}

func (c *EscalateCommand) Name() string { return "escalate" }

func (c *EscalateCommand) Run(ctx context.Context, store *repository.Store) (*Effect, error) {
	ticket, err := loadTicket(ctx, store, c.TicketID)
	if err != nil {
		return nil, err
	}
	if _, err := loadActiveUser(ctx, store, c.EscalatedBy, "escalator"); err != nil {
		return nil, err
	}

	escalation := &domain.Escalation{
		TicketID:    c.TicketID,
		FromTier:    c.FromTier,
		ToTier:      c.ToTier,
		Reason:      strings.TrimSpace(c.Reason),
		EscalatedBy: c.EscalatedBy,
	}
	if err := store.Escalations.Create(ctx, escalation); err != nil {
		return nil, err
	}

	tier := &domain.Tier{
		TicketID:   c.TicketID,
		Level:      c.ToTier,
		HandlerID:  nil,
		Status:     domain.TierStatusPending,
		AssignedAt: time.Now(),
	}
	if err := store.Tiers.Create(ctx, tier); err != nil {
		return nil, err
	}
	if err := store.Attachments.Link(ctx, domain.AttachmentOwnerEscalation, escalation.ID, c.AttachmentIDs); err != nil {
		return nil, err
	}

	ticket.Status = domain.TicketStatusPending
	if err := store.Tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	notes := fmt.Sprintf("escalated from tier %d to tier %d", c.FromTier, c.ToTier)
	if escalation.Reason != "" {
		notes += ": " + escalation.Reason
	}
	return &Effect{
		History: &domain.HistoryEntry{
			TicketID:     ticket.ID,
			ActorID:      c.EscalatedBy,
			Action:       domain.HistoryActionPending,
			StatusAtTime: ticket.Status,
			EscalationID: &escalation.ID,
			Notes:        notes,
		},
		// Dispatched for metrics/audit consumers; no notification handler
		// subscribes to escalations.
		Events: []events.Event{{
			Type:     events.EventTicketEscalated,
			TicketID: ticket.ID,
			ActorID:  c.EscalatedBy,
			Payload: events.TicketEscalatedPayload{
				EscalationID: escalation.ID,
				FromTier:     escalation.FromTier,
				ToTier:       escalation.ToTier,
				Reason:       escalation.Reason,
			},
		}},
		Result: escalation,
	}, nil
}
