package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusRejected   TicketStatus = "rejected"
	TicketStatusReRaised   TicketStatus = "re_raised"
	TicketStatusClosed     TicketStatus = "closed"
)

// Ticket is the aggregate whose lifecycle the workflow engine owns.
// Status, ResolvedAt and the related Tier statuses are mutated only by
// transition commands.
type Ticket struct {
	ID          string
	ExternalKey string
	CategoryID  string
	PriorityID  string
	ReporterID  string
	Title       string
	Description string
	Status      TicketStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ResolvedAt  *time.Time
}

// Terminal reports whether the ticket left the active cycle. Re-entry is
// only possible by deleting the terminal outcome record.
func (t *Ticket) Terminal() bool {
	return t.Status == TicketStatusClosed || t.Status == TicketStatusRejected
}
