package dto

import (
	"time"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/service"
)

// AssignRequest payload for creating an assignment.
type AssignRequest struct {
	AssigneeID    string   `json:"assignee_id"`
	Remarks       string   `json:"remarks"`
	AttachmentIDs []string `json:"attachment_ids"`
}

// UnassignRequest optional payload for the unassign variants.
type UnassignRequest struct {
	Reason string `json:"reason"`
}

// EscalateRequest payload for escalating a ticket to a higher tier.
type EscalateRequest struct {
	FromTier      int      `json:"from_tier"`
	ToTier        int      `json:"to_tier"`
	Reason        string   `json:"reason"`
	AttachmentIDs []string `json:"attachment_ids"`
}

// OutcomeRequest shared payload for resolve, reject and re-raise.
type OutcomeRequest struct {
	Reason        string     `json:"reason"`
	Timestamp     *time.Time `json:"timestamp"`
	AttachmentIDs []string   `json:"attachment_ids"`
}

// AssignmentResponse is the view of one assignment row.
type AssignmentResponse struct {
	ID         string                  `json:"id"`
	TicketID   string                  `json:"ticket_id"`
	AssigneeID string                  `json:"assignee_id"`
	AssignerID string                  `json:"assigner_id"`
	Status     domain.AssignmentStatus `json:"status"`
	Remarks    string                  `json:"remarks,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

// AssignmentDetailResponse is the joined read returned on assign.
type AssignmentDetailResponse struct {
	Assignment  AssignmentResponse   `json:"assignment"`
	Ticket      TicketSummary        `json:"ticket"`
	Assignee    UserResponse         `json:"assignee"`
	Assigner    UserResponse         `json:"assigner"`
	Attachments []AttachmentResponse `json:"attachments"`
}

// UnassignResponse confirms a removed assignment.
type UnassignResponse struct {
	AssignmentID string              `json:"assignment_id"`
	TicketID     string              `json:"ticket_id"`
	AssigneeID   string              `json:"assignee_id"`
	TicketStatus domain.TicketStatus `json:"ticket_status"`
}

// EscalationResponse is the view of one escalation row.
type EscalationResponse struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	FromTier    int       `json:"from_tier"`
	ToTier      int       `json:"to_tier"`
	Reason      string    `json:"reason,omitempty"`
	EscalatedBy string    `json:"escalated_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// EscalationDetailResponse is the joined read returned on escalate.
type EscalationDetailResponse struct {
	Escalation  EscalationResponse   `json:"escalation"`
	Ticket      TicketSummary        `json:"ticket"`
	Escalator   UserResponse         `json:"escalator"`
	CurrentTier *TierResponse        `json:"current_tier,omitempty"`
	Attachments []AttachmentResponse `json:"attachments"`
}

// TierResponse is the view of one handling tier.
type TierResponse struct {
	ID         string            `json:"id"`
	TicketID   string            `json:"ticket_id"`
	Level      int               `json:"level"`
	HandlerID  *string           `json:"handler_id,omitempty"`
	Status     domain.TierStatus `json:"status"`
	AssignedAt time.Time         `json:"assigned_at"`
}

// OutcomeRecord is the view of a resolution, rejection or re-raise row.
type OutcomeRecord struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	ActorID   string    `json:"actor_id"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OutcomeDetailResponse is the joined read returned on resolve, reject
// and re-raise.
type OutcomeDetailResponse struct {
	OutcomeID   string               `json:"outcome_id"`
	Kind        string               `json:"kind"`
	Reason      string               `json:"reason,omitempty"`
	Ticket      TicketSummary        `json:"ticket"`
	Actor       UserResponse         `json:"actor"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"created_at"`
}

// AttachmentResponse is the view of one attachment reference.
type AttachmentResponse struct {
	ID         string    `json:"id"`
	StorageKey string    `json:"storage_key"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAssignmentResponse maps a domain assignment.
func NewAssignmentResponse(a domain.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:         a.ID,
		TicketID:   a.TicketID,
		AssigneeID: a.AssigneeID,
		AssignerID: a.AssignerID,
		Status:     a.Status,
		Remarks:    a.Remarks,
		CreatedAt:  a.CreatedAt,
	}
}

// NewEscalationResponse maps a domain escalation.
func NewEscalationResponse(e domain.Escalation) EscalationResponse {
	return EscalationResponse{
		ID:          e.ID,
		TicketID:    e.TicketID,
		FromTier:    e.FromTier,
		ToTier:      e.ToTier,
		Reason:      e.Reason,
		EscalatedBy: e.EscalatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

// NewTierResponse maps a domain tier.
func NewTierResponse(t domain.Tier) TierResponse {
	return TierResponse{
		ID:         t.ID,
		TicketID:   t.TicketID,
		Level:      t.Level,
		HandlerID:  t.HandlerID,
		Status:     t.Status,
		AssignedAt: t.AssignedAt,
	}
}

// NewUserResponse maps a domain user.
func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
	}
}

// NewAttachmentResponses maps attachment references.
func NewAttachmentResponses(refs []domain.AttachmentReference) []AttachmentResponse {
	out := make([]AttachmentResponse, 0, len(refs))
	for _, ref := range refs {
		out = append(out, AttachmentResponse{
			ID:         ref.ID,
			StorageKey: ref.StorageKey,
			FileName:   ref.FileName,
			MimeType:   ref.MimeType,
			SizeBytes:  ref.SizeBytes,
			CreatedAt:  ref.CreatedAt,
		})
	}
	return out
}

// NewAssignmentDetailResponse maps the joined assign read.
func NewAssignmentDetailResponse(d *service.AssignmentDetail) AssignmentDetailResponse {
	return AssignmentDetailResponse{
		Assignment:  NewAssignmentResponse(d.Assignment),
		Ticket:      NewTicketSummary(d.Ticket),
		Assignee:    NewUserResponse(d.Assignee),
		Assigner:    NewUserResponse(d.Assigner),
		Attachments: NewAttachmentResponses(d.Attachments),
	}
}

// NewEscalationDetailResponse maps the joined escalate read.
func NewEscalationDetailResponse(d *service.EscalationDetail) EscalationDetailResponse {
	resp := EscalationDetailResponse{
		Escalation:  NewEscalationResponse(d.Escalation),
		Ticket:      NewTicketSummary(d.Ticket),
		Escalator:   NewUserResponse(d.Escalator),
		Attachments: NewAttachmentResponses(d.Attachments),
	}
	if d.CurrentTier != nil {
		tier := NewTierResponse(*d.CurrentTier)
		resp.CurrentTier = &tier
	}
	return resp
}

// NewOutcomeDetailResponse maps the joined outcome read.
func NewOutcomeDetailResponse(d *service.OutcomeDetail) OutcomeDetailResponse {
	return OutcomeDetailResponse{
		OutcomeID:   d.OutcomeID,
		Kind:        string(d.Kind),
		Reason:      d.Reason,
		Ticket:      NewTicketSummary(d.Ticket),
		Actor:       NewUserResponse(d.Actor),
		Attachments: NewAttachmentResponses(d.Attachments),
		CreatedAt:   d.CreatedAt,
	}
}
