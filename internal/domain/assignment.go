package domain

import "time"

// AssignmentStatus enumerates assignment acceptance states.
type AssignmentStatus string

const (
	AssignmentStatusPending  AssignmentStatus = "pending"
	AssignmentStatusAccepted AssignmentStatus = "accepted"
)

// Assignment records that an assignee was tasked with a ticket by an
// assigner. It is a live pointer, not a log: Unassign hard-deletes the row
// and the history entry remains the permanent record. At most one row may
// exist per (ticket, assignee) pair.
type Assignment struct {
	ID         string
	TicketID   string
	AssigneeID string
	AssignerID string
	Status     AssignmentStatus
	Remarks    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
