package domain

import "time"

// TierStatus enumerates outcome states at a handling level.
type TierStatus string

const (
	TierStatusPending  TierStatus = "pending"
	TierStatusAssigned TierStatus = "assigned"
	TierStatusResolved TierStatus = "resolved"
	TierStatusRejected TierStatus = "rejected"
)

// Tier represents a handling level for a ticket. A ticket accumulates one
// row per escalation; the current tier is the most recent by AssignedAt.
type Tier struct {
	ID         string
	TicketID   string
	Level      int
	HandlerID  *string
	Status     TierStatus
	Remarks    string
	AssignedAt time.Time
}
