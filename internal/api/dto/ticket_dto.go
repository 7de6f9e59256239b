package dto

import (
	"time"

	"github.com/spec-kit/issue-workflow/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CategoryID  string `json:"category_id"`
	PriorityID  string `json:"priority_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TicketListQuery captures query filters for ticket listing.
type TicketListQuery struct {
	Status     string
	ReporterID string
	Page       int
	PageSize   int
}

// TicketSummary response.
type TicketSummary struct {
	ID          string              `json:"id"`
	ExternalKey string              `json:"external_key"`
	CategoryID  string              `json:"category_id"`
	PriorityID  string              `json:"priority_id"`
	ReporterID  string              `json:"reporter_id"`
	Title       string              `json:"title"`
	Status      domain.TicketStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// TicketDetailResponse provides the full aggregate view of one ticket.
type TicketDetailResponse struct {
	ID          string               `json:"id"`
	ExternalKey string               `json:"external_key"`
	CategoryID  string               `json:"category_id"`
	PriorityID  string               `json:"priority_id"`
	ReporterID  string               `json:"reporter_id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      domain.TicketStatus  `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	ResolvedAt  *time.Time           `json:"resolved_at"`
	Assignments []AssignmentResponse `json:"assignments"`
	Escalations []EscalationResponse `json:"escalations"`
	Tiers       []TierResponse       `json:"tiers"`
	Resolutions []OutcomeRecord      `json:"resolutions"`
	Rejections  []OutcomeRecord      `json:"rejections"`
	ReRaises    []OutcomeRecord      `json:"re_raises"`
	History     []HistoryResponse    `json:"history"`
}

// HistoryResponse is one audit entry.
type HistoryResponse struct {
	ID           string               `json:"id"`
	TicketID     string               `json:"ticket_id"`
	ActorID      string               `json:"actor_id"`
	Action       domain.HistoryAction `json:"action"`
	StatusAtTime domain.TicketStatus  `json:"status_at_time"`
	AssignmentID *string              `json:"assignment_id,omitempty"`
	EscalationID *string              `json:"escalation_id,omitempty"`
	ResolutionID *string              `json:"resolution_id,omitempty"`
	Notes        string               `json:"notes,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// NewTicketSummary maps a domain ticket to its list view.
func NewTicketSummary(t domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:          t.ID,
		ExternalKey: t.ExternalKey,
		CategoryID:  t.CategoryID,
		PriorityID:  t.PriorityID,
		ReporterID:  t.ReporterID,
		Title:       t.Title,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewHistoryResponse maps a domain history entry.
func NewHistoryResponse(h domain.HistoryEntry) HistoryResponse {
	return HistoryResponse{
		ID:           h.ID,
		TicketID:     h.TicketID,
		ActorID:      h.ActorID,
		Action:       h.Action,
		StatusAtTime: h.StatusAtTime,
		AssignmentID: h.AssignmentID,
		EscalationID: h.EscalationID,
		ResolutionID: h.ResolutionID,
		Notes:        h.Notes,
		CreatedAt:    h.CreatedAt,
	}
}
