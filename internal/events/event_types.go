package events

import (
	"time"

	"github.com/spec-kit/issue-workflow/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated    EventType = "ticket_created"
	EventTicketAssigned   EventType = "ticket_assigned"
	EventTicketUnassigned EventType = "ticket_unassigned"
	EventTicketEscalated  EventType = "ticket_escalated"
	EventTicketResolved   EventType = "ticket_resolved"
	EventTicketRejected   EventType = "ticket_rejected"
	EventTicketReRaised   EventType = "ticket_re_raised"
)

// Event represents a transition event emitted after commit.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id"`
	ActorID   string    `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CategoryID string `json:"category_id"`
	PriorityID string `json:"priority_id"`
	Title      string `json:"title"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignmentID string `json:"assignment_id"`
	AssigneeID   string `json:"assignee_id"`
	AssignerID   string `json:"assigner_id"`
	Remarks      string `json:"remarks,omitempty"`
}

// TicketUnassignedPayload payload.
type TicketUnassignedPayload struct {
	AssignmentID string `json:"assignment_id"`
	AssigneeID   string `json:"assignee_id"`
	Reason       string `json:"reason,omitempty"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	EscalationID string `json:"escalation_id"`
	FromTier     int    `json:"from_tier"`
	ToTier       int    `json:"to_tier"`
	Reason       string `json:"reason,omitempty"`
}

// TicketOutcomePayload covers resolve, reject and re-raise events.
type TicketOutcomePayload struct {
	OutcomeID string              `json:"outcome_id"`
	Status    domain.TicketStatus `json:"status"`
	Reason    string              `json:"reason,omitempty"`
}
