package domain

import "time"

// HistoryAction captures what a history entry records.
type HistoryAction string

const (
	HistoryActionAssigned   HistoryAction = "assigned"
	HistoryActionUnassigned HistoryAction = "unassigned"
	HistoryActionPending    HistoryAction = "pending"
	HistoryActionResolved   HistoryAction = "resolved"
	HistoryActionRejected   HistoryAction = "rejected"
	HistoryActionReRaised   HistoryAction = "re_raised"
)

// HistoryEntry is an immutable audit record of one transition. Exactly one
// entry is written per successful transition, inside the transition's
// transaction. Entries are never updated or deleted.
type HistoryEntry struct {
	ID           string
	TicketID     string
	ActorID      string
	Action       HistoryAction
	StatusAtTime TicketStatus
	AssignmentID *string
	EscalationID *string
	ResolutionID *string
	Notes        string
	CreatedAt    time.Time
}
