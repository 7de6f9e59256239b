package domain

import "time"

// Escalation records a tier-to-tier handoff. Append-only.
type Escalation struct {
	ID          string
	TicketID    string
	FromTier    int
	ToTier      int
	Reason      string
	EscalatedBy string
	CreatedAt   time.Time
}
