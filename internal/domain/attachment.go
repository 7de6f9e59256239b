package domain

import "time"

// AttachmentOwnerType names the record an attachment is linked to.
type AttachmentOwnerType string

const (
	AttachmentOwnerAssignment AttachmentOwnerType = "assignment"
	AttachmentOwnerEscalation AttachmentOwnerType = "escalation"
	AttachmentOwnerResolution AttachmentOwnerType = "resolution"
	AttachmentOwnerRejection  AttachmentOwnerType = "rejection"
	AttachmentOwnerReRaise    AttachmentOwnerType = "re_raise"
)

// AttachmentReference is metadata for an uploaded file. Upload itself is
// external; transition commands only link existing references to the
// records they create.
type AttachmentReference struct {
	ID         string
	OwnerType  *AttachmentOwnerType
	OwnerID    *string
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
	CreatedAt  time.Time
}
