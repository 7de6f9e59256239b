package workflow

import (
	"context"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/repository"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util"
)

// Reversal commands delete a terminal outcome record and roll the ticket's
// status back. They are the only sanctioned way out of a terminal state.
// The spec's history action set has no reversal action, so none of these
// append a history entry; the original transition's entry remains.

// DeleteResolutionCommand removes a resolution. If it was the only one for
// the ticket, the ticket reverts to in_progress and the resolved tier
// reverts to assigned; with other resolutions on record, the ticket status
// is left as-is.
type DeleteResolutionCommand struct {
	ResolutionID string
}

func (c *DeleteResolutionCommand) Name() string { return "delete_resolution" }

func (c *DeleteResolutionCommand) Run(ctx context.Context, store *repository.Store) (*Effect, error) {
	resolution, err := store.Resolutions.GetByID(ctx, c.ResolutionID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("resolution", map[string]any{"resolution_id": c.ResolutionID})
		}
		return nil, err
	}

	if err := store.Attachments.Unlink(ctx, domain.AttachmentOwnerResolution, resolution.ID); err != nil {
		return nil, err
	}
	if err := store.Resolutions.Delete(ctx, resolution.ID); err != nil {
		return nil, err
	}

	remaining, err := store.Resolutions.CountByTicket(ctx, resolution.TicketID)
	if err != nil {
		return nil, err
	}
	if remaining == 0 {
		ticket, err := loadTicket(ctx, store, resolution.TicketID)
		if err != nil {
			return nil, err
		}
		ticket.Status = domain.TicketStatusInProgress
		ticket.ResolvedAt = nil
		if err := store.Tickets.Update(ctx, ticket); err != nil {
			return nil, err
		}
		tier, err := store.Tiers.LatestByStatus(ctx, resolution.TicketID, domain.TierStatusResolved)
		if err != nil && !isNoRows(err) {
			return nil, err
		}
		if tier != nil {
			if err := store.Tiers.UpdateStatus(ctx, tier.ID, domain.TierStatusAssigned); err != nil {
				return nil, err
			}
		}
	}
	return &Effect{}, nil
}

// DeleteRejectionCommand removes a rejection. If no other rejections remain
// the ticket reverts to pending.
type DeleteRejectionCommand struct {
	RejectionID string
}

func (c *DeleteRejectionCommand) Name() string { return "delete_rejection" }

func (c *DeleteRejectionCommand) Run(ctx context.Context, store *repository.Store) (*Effect, error) {
	rejection, err := store.Rejections.GetByID(ctx, c.RejectionID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("rejection", map[string]any{"rejection_id": c.RejectionID})
		}
		return nil, err
	}

	if err := store.Attachments.Unlink(ctx, domain.AttachmentOwnerRejection, rejection.ID); err != nil {
		return nil, err
	}
	if err := store.Rejections.Delete(ctx, rejection.ID); err != nil {
		return nil, err
	}

	remaining, err := store.Rejections.CountByTicket(ctx, rejection.TicketID)
	if err != nil {
		return nil, err
	}
	if remaining == 0 {
		ticket, err := loadTicket(ctx, store, rejection.TicketID)
		if err != nil {
			return nil, err
		}
		ticket.Status = domain.TicketStatusPending
		if err := store.Tickets.Update(ctx, ticket); err != nil {
			return nil, err
		}
	}
	return &Effect{}, nil
}

// DeleteReRaiseCommand removes a re-raise. If no other re-raises remain the
// ticket reverts to resolved.
type DeleteReRaiseCommand struct {
	ReRaiseID string
}

func (c *DeleteReRaiseCommand) Name() string { return "delete_re_raise" }

func (c *DeleteReRaiseCommand) Run(ctx context.Context, store *repository.Store) (*Effect, error) {
	reRaise, err := store.ReRaises.GetByID(ctx, c.ReRaiseID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("re-raise", map[string]any{"re_raise_id": c.ReRaiseID})
		}
		return nil, err
	}

	if err := store.Attachments.Unlink(ctx, domain.AttachmentOwnerReRaise, reRaise.ID); err != nil {
		return nil, err
	}
	if err := store.ReRaises.Delete(ctx, reRaise.ID); err != nil {
		return nil, err
	}

	remaining, err := store.ReRaises.CountByTicket(ctx, reRaise.TicketID)
	if err != nil {
		return nil, err
	}
	if remaining == 0 {
		ticket, err := loadTicket(ctx, store, reRaise.TicketID)
		if err != nil {
			return nil, err
		}
		ticket.Status = domain.TicketStatusResolved
		if err := store.Tickets.Update(ctx, ticket); err != nil {
			return nil, err
		}
	}
	return &Effect{}, nil
}
