package domain

import "time"

// Resolution records that a ticket was resolved. Historical rows are
// retained across resolve/unresolve cycles; deleting the only row reopens
// the ticket.
type Resolution struct {
	ID         string
	TicketID   string
	ResolvedBy string
	Reason     string
	CreatedAt  time.Time
}

// Rejection records that a ticket was rejected.
type Rejection struct {
	ID         string
	TicketID   string
	RejectedBy string
	Reason     string
	CreatedAt  time.Time
}

// ReRaise records that a resolved ticket was reopened by its reporter.
type ReRaise struct {
	ID         string
	TicketID   string
	ReRaisedBy string
	Reason     string
	ReRaisedAt time.Time
	CreatedAt  time.Time
}
