package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/events"
	"github.com/spec-kit/issue-workflow/internal/repository"
)

// ResolveCommand records a resolution: the ticket becomes resolved, the
// current tier's outcome is stamped resolved.
type ResolveCommand struct {
	TicketID      string
	Reason        string
	ResolvedBy    string
	AttachmentIDs []string
}

func (c *ResolveCommand) Name() string { return "resolve" }

func (c *ResolveCommand) Run(ctx context.Context, store *repository.Store) (*Effect, error) {
	ticket, err := loadTicket(ctx, store, c.TicketID)
	if err != nil {
		return nil, err
	}
	if _, err := loadActiveUser(ctx, store, c.ResolvedBy, "resolver"); err != nil {
		return nil, err
	}

	resolution := &domain.Resolution{
		TicketID:   c.TicketID,
		ResolvedBy: c.ResolvedBy,
		Reason:     strings.TrimSpace(c.Reason),
	}
	if err := store.Resolutions.Create(ctx, resolution); err != nil {
		return nil, err
	}
	if err := store.Attachments.Link(ctx, domain.AttachmentOwnerResolution, resolution.ID, c.AttachmentIDs); err != nil {
		return nil, err
	}

	now := time.Now()
	ticket.Status = domain.TicketStatusResolved
	ticket.ResolvedAt = &now
	if err := store.Tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	if err := markCurrentTier(ctx, store, ticket.ID, domain.TierStatusResolved); err != nil {
		return nil, err
	}

	return &Effect{
		History: &domain.HistoryEntry{
			TicketID:     ticket.ID,
			ActorID:      c.ResolvedBy,
			Action:       domain.HistoryActionResolved,
			StatusAtTime: ticket.Status,
			ResolutionID: &resolution.ID,
			Notes:        resolution.Reason,
		},
		Events: []events.Event{{
			Type:     events.EventTicketResolved,
			TicketID: ticket.ID,
			ActorID:  c.ResolvedBy,
			Payload: events.TicketOutcomePayload{
				OutcomeID: resolution.ID,
				Status:    ticket.Status,
				Reason:    resolution.Reason,
			},
		}},
		Result: resolution,
	}, nil
}

// markCurrentTier sets the status of the ticket's current tier (most recent
// by assigned_at). Tickets that never accumulated a tier are left alone.
func markCurrentTier(ctx context.Context, store *repository.Store, ticketID string, status domain.TierStatus) error {
	tier, err := store.Tiers.CurrentByTicket(ctx, ticketID)
	if err != nil {
		if isNoRows(err) {
			return nil
		}
		return err
	}
	return store.Tiers.UpdateStatus(ctx, tier.ID, status)
}
