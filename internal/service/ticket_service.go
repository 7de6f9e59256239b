package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/events"
	"github.com/spec-kit/issue-workflow/internal/repository"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util"
)

// TicketService covers ticket intake and read paths. All status mutation
// past intake goes through the workflow engine, never through here.
type TicketService struct {
	store      *repository.Store
	dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(store *repository.Store, dispatcher events.Dispatcher) *TicketService {
	return &TicketService{store: store, dispatcher: dispatcher}
}

// TicketCreateInput describes ticket intake payload.
type TicketCreateInput struct {
	CategoryID  string
	PriorityID  string
	Title       string
	Description string
}

// TicketDetail is the full aggregate view of one ticket.
type TicketDetail struct {
	Ticket      domain.Ticket
	Assignments []domain.Assignment
	Escalations []domain.Escalation
	Tiers       []domain.Tier
	Resolutions []domain.Resolution
	Rejections  []domain.Rejection
	ReRaises    []domain.ReRaise
	History     []domain.HistoryEntry
}

// CreateTicket creates a ticket for a reporter in the pending state.
func (s *TicketService) CreateTicket(ctx context.Context, reporterID string, input TicketCreateInput) (*domain.Ticket, error) {
	reporter, err := s.store.Users.GetByID(ctx, reporterID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !reporter.Active() {
		return nil, apperrors.NewInvalidActor("reporter is not active", map[string]any{"user_id": reporterID})
	}

	ticket := &domain.Ticket{
		ExternalKey: generateTicketKey(),
		CategoryID:  input.CategoryID,
		PriorityID:  input.PriorityID,
		ReporterID:  reporterID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusPending,
	}
	if err := s.store.Tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:       uuid.NewString(),
			Type:     events.EventTicketCreated,
			TicketID: ticket.ID,
			ActorID:  reporterID,
			Payload: events.TicketCreatedPayload{
				CategoryID: ticket.CategoryID,
				PriorityID: ticket.PriorityID,
				Title:      ticket.Title,
			},
		})
	}
	return ticket, nil
}

// GetTicketDetail returns the ticket with all related records joined.
func (s *TicketService) GetTicketDetail(ctx context.Context, ticketID string) (*TicketDetail, error) {
	ticket, err := s.store.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	assignments, err := s.store.Assignments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	escalations, err := s.store.Escalations.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	tiers, err := s.store.Tiers.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	resolutions, err := s.store.Resolutions.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	rejections, err := s.store.Rejections.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	reRaises, err := s.store.ReRaises.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	history, err := s.store.History.ListByTicket(ctx, ticketID, 100, 0)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TicketDetail{
		Ticket:      *ticket,
		Assignments: assignments,
		Escalations: escalations,
		Tiers:       tiers,
		Resolutions: resolutions,
		Rejections:  rejections,
		ReRaises:    reRaises,
		History:     history,
	}, nil
}

// ListTickets returns tickets matching the filter.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.store.Tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListHistory returns audit entries for a ticket.
func (s *TicketService) ListHistory(ctx context.Context, ticketID string, limit, offset int) ([]domain.HistoryEntry, error) {
	if _, err := s.store.Tickets.GetByID(ctx, ticketID); err != nil {
		return nil, apperrors.MapError(err)
	}
	history, err := s.store.History.ListByTicket(ctx, ticketID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return history, nil
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
