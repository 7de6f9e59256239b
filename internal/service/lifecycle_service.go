package service

import (
	"context"
	"time"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/repository"
	"github.com/spec-kit/issue-workflow/internal/workflow"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util"
)

// LifecycleService fronts the workflow engine: it builds transition
// commands, executes them, and assembles fully-joined aggregates from
// post-commit reads for caller convenience.
type LifecycleService struct {
	engine *workflow.Engine
	store  *repository.Store
}

// NewLifecycleService constructs the service. store must be a
// non-transactional store; it is only used for reads after commit.
func NewLifecycleService(engine *workflow.Engine, store *repository.Store) *LifecycleService {
	return &LifecycleService{engine: engine, store: store}
}

// AssignInput describes an assign request.
type AssignInput struct {
	TicketID      string
	AssigneeID    string
	AssignerID    string
	Remarks       string
	AttachmentIDs []string
}

// EscalateInput describes an escalate request.
type EscalateInput struct {
	TicketID      string
	FromTier      int
	ToTier        int
	Reason        string
	EscalatedBy   string
	AttachmentIDs []string
}

// OutcomeInput describes resolve, reject and re-raise requests.
type OutcomeInput struct {
	TicketID      string
	Reason        string
	ActorID       string
	Timestamp     time.Time
	AttachmentIDs []string
}

// AssignmentDetail is the joined read returned by Assign.
type AssignmentDetail struct {
	Assignment  domain.Assignment
	Ticket      domain.Ticket
	Assignee    domain.User
	Assigner    domain.User
	Attachments []domain.AttachmentReference
}

// UnassignSummary is the read returned by the unassign variants.
type UnassignSummary struct {
	AssignmentID string
	TicketID     string
	AssigneeID   string
	TicketStatus domain.TicketStatus
}

// EscalationDetail is the joined read returned by Escalate.
type EscalationDetail struct {
	Escalation  domain.Escalation
	Ticket      domain.Ticket
	Escalator   domain.User
	CurrentTier *domain.Tier
	Attachments []domain.AttachmentReference
}

// OutcomeDetail is the joined read returned by Resolve, Reject and ReRaise.
type OutcomeDetail struct {
	OutcomeID   string
	Kind        domain.AttachmentOwnerType
	Reason      string
	Ticket      domain.Ticket
	Actor       domain.User
	Attachments []domain.AttachmentReference
	CreatedAt   time.Time
}

// Assign executes the assign transition.
func (s *LifecycleService) Assign(ctx context.Context, input AssignInput) (*AssignmentDetail, error) {
	result, err := s.engine.Execute(ctx, &workflow.AssignCommand{
		TicketID:      input.TicketID,
		AssigneeID:    input.AssigneeID,
		AssignerID:    input.AssignerID,
		Remarks:       input.Remarks,
		AttachmentIDs: input.AttachmentIDs,
	})
	if err != nil {
		return nil, err
	}
	assignment, ok := result.(*domain.Assignment)
	if !ok {
		return nil, apperrors.NewInternalError(nil)
	}
	return s.assignmentDetail(ctx, assignment)
}

func (s *LifecycleService) assignmentDetail(ctx context.Context, assignment *domain.Assignment) (*AssignmentDetail, error) {
	ticket, err := s.store.Tickets.GetByID(ctx, assignment.TicketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	assignee, err := s.store.Users.GetByID(ctx, assignment.AssigneeID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	assigner, err := s.store.Users.GetByID(ctx, assignment.AssignerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	attachments, err := s.store.Attachments.ListByOwner(ctx, domain.AttachmentOwnerAssignment, assignment.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &AssignmentDetail{
		Assignment:  *assignment,
		Ticket:      *ticket,
		Assignee:    *assignee,
		Assigner:    *assigner,
		Attachments: attachments,
	}, nil
}

// UnassignByID executes the unassign transition located by assignment id.
func (s *LifecycleService) UnassignByID(ctx context.Context, assignmentID, actorID, reason string) (*UnassignSummary, error) {
	return s.unassign(ctx, workflow.UnassignByID(assignmentID, actorID, reason))
}

// UnassignByPair executes the unassign transition located by the unique
// (ticket, assignee) pair.
func (s *LifecycleService) UnassignByPair(ctx context.Context, ticketID, assigneeID, actorID, reason string) (*UnassignSummary, error) {
	return s.unassign(ctx, workflow.UnassignByPair(ticketID, assigneeID, actorID, reason))
}

func (s *LifecycleService) unassign(ctx context.Context, cmd *workflow.UnassignCommand) (*UnassignSummary, error) {
	result, err := s.engine.Execute(ctx, cmd)
	if err != nil {
		return nil, err
	}
	assignment, ok := result.(*domain.Assignment)
	if !ok {
		return nil, apperrors.NewInternalError(nil)
	}
	ticket, err := s.store.Tickets.GetByID(ctx, assignment.TicketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &UnassignSummary{
		AssignmentID: assignment.ID,
		TicketID:     ticket.ID,
		AssigneeID:   assignment.AssigneeID,
		TicketStatus: ticket.Status,
	}, nil
}

// Escalate executes the escalate transition.
func (s *LifecycleService) Escalate(ctx context.Context, input EscalateInput) (*EscalationDetail, error) {
	result, err := s.engine.Execute(ctx, &workflow.EscalateCommand{
		TicketID:      input.TicketID,
		FromTier:      input.FromTier,
		ToTier:        input.ToTier,
		Reason:        input.Reason,
		EscalatedBy:   input.EscalatedBy,
		AttachmentIDs: input.AttachmentIDs,
	})
	if err != nil {
		return nil, err
	}
	escalation, ok := result.(*domain.Escalation)
	if !ok {
		return nil, apperrors.NewInternalError(nil)
	}
	ticket, err := s.store.Tickets.GetByID(ctx, escalation.TicketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	escalator, err := s.store.Users.GetByID(ctx, escalation.EscalatedBy)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	tier, err := s.store.Tiers.CurrentByTicket(ctx, escalation.TicketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	attachments, err := s.store.Attachments.ListByOwner(ctx, domain.AttachmentOwnerEscalation, escalation.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &EscalationDetail{
		Escalation:  *escalation,
		Ticket:      *ticket,
		Escalator:   *escalator,
		CurrentTier: tier,
		Attachments: attachments,
	}, nil
}

// Resolve executes the resolve transition.
func (s *LifecycleService) Resolve(ctx context.Context, input OutcomeInput) (*OutcomeDetail, error) {
	result, err := s.engine.Execute(ctx, &workflow.ResolveCommand{
		TicketID:      input.TicketID,
		Reason:        input.Reason,
		ResolvedBy:    input.ActorID,
		AttachmentIDs: input.AttachmentIDs,
	})
	if err != nil {
		return nil, err
	}
	resolution, ok := result.(*domain.Resolution)
	if !ok {
		return nil, apperrors.NewInternalError(nil)
	}
	return s.outcomeDetail(ctx, domain.AttachmentOwnerResolution, resolution.ID, resolution.TicketID, resolution.ResolvedBy, resolution.Reason, resolution.CreatedAt)
}

// Reject executes the reject transition.
func (s *LifecycleService) Reject(ctx context.Context, input OutcomeInput) (*OutcomeDetail, error) {
	result, err := s.engine.Execute(ctx, &workflow.RejectCommand{
		TicketID:      input.TicketID,
		Reason:        input.Reason,
		RejectedBy:    input.ActorID,
		AttachmentIDs: input.AttachmentIDs,
	})
	if err != nil {
		return nil, err
	}
	rejection, ok := result.(*domain.Rejection)
	if !ok {
		return nil, apperrors.NewInternalError(nil)
	}
	return s.outcomeDetail(ctx, domain.AttachmentOwnerRejection, rejection.ID, rejection.TicketID, rejection.RejectedBy, rejection.Reason, rejection.CreatedAt)
}

// ReRaise executes the re-raise transition.
func (s *LifecycleService) ReRaise(ctx context.Context, input OutcomeInput) (*OutcomeDetail, error) {
	result, err := s.engine.Execute(ctx, &workflow.ReRaiseCommand{
		TicketID:      input.TicketID,
		Reason:        input.Reason,
		ReRaisedBy:    input.ActorID,
		ReRaisedAt:    input.Timestamp,
		AttachmentIDs: input.AttachmentIDs,
	})
	if err != nil {
		return nil, err
	}
	reRaise, ok := result.(*domain.ReRaise)
	if !ok {
		return nil, apperrors.NewInternalError(nil)
	}
	return s.outcomeDetail(ctx, domain.AttachmentOwnerReRaise, reRaise.ID, reRaise.TicketID, reRaise.ReRaisedBy, reRaise.Reason, reRaise.CreatedAt)
}

func (s *LifecycleService) outcomeDetail(ctx context.Context, kind domain.AttachmentOwnerType, outcomeID, ticketID, actorID, reason string, createdAt time.Time) (*OutcomeDetail, error) {
	ticket, err := s.store.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	actor, err := s.store.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	attachments, err := s.store.Attachments.ListByOwner(ctx, kind, outcomeID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &OutcomeDetail{
		OutcomeID:   outcomeID,
		Kind:        kind,
		Reason:      reason,
		Ticket:      *ticket,
		Actor:       *actor,
		Attachments: attachments,
		CreatedAt:   createdAt,
	}, nil
}

// DeleteResolution reverses a resolve.
func (s *LifecycleService) DeleteResolution(ctx context.Context, resolutionID string) error {
	_, err := s.engine.Execute(ctx, &workflow.DeleteResolutionCommand{ResolutionID: resolutionID})
	return err
}

// DeleteRejection reverses a reject.
func (s *LifecycleService) DeleteRejection(ctx context.Context, rejectionID string) error {
	_, err := s.engine.Execute(ctx, &workflow.DeleteRejectionCommand{RejectionID: rejectionID})
	return err
}

// DeleteReRaise reverses a re-raise.
func (s *LifecycleService) DeleteReRaise(ctx context.Context, reRaiseID string) error {
	_, err := s.engine.Execute(ctx, &workflow.DeleteReRaiseCommand{ReRaiseID: reRaiseID})
	return err
}
