package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/issue-workflow/internal/domain"
)

type attachmentRepository struct {
	db Querier
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(db Querier) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Link(ctx context.Context, ownerType domain.AttachmentOwnerType, ownerID string, attachmentIDs []string) error {
	if len(attachmentIDs) == 0 {
		return nil
	}
	const query = `
        UPDATE attachment_references SET owner_type=$1, owner_id=$2
        WHERE id = ANY($3)`
	cmd, err := r.db.Exec(ctx, query, ownerType, ownerID, attachmentIDs)
	if err != nil {
		return err
	}
	if int(cmd.RowsAffected()) != len(attachmentIDs) {
		return fmt.Errorf("linked %d of %d attachments", cmd.RowsAffected(), len(attachmentIDs))
	}
	return nil
}

func (r *attachmentRepository) Unlink(ctx context.Context, ownerType domain.AttachmentOwnerType, ownerID string) error {
	const query = `
        UPDATE attachment_references SET owner_type=NULL, owner_id=NULL
        WHERE owner_type=$1 AND owner_id=$2`
	_, err := r.db.Exec(ctx, query, ownerType, ownerID)
	return err
}

func (r *attachmentRepository) ListByOwner(ctx context.Context, ownerType domain.AttachmentOwnerType, ownerID string) ([]domain.AttachmentReference, error) {
	const query = `
        SELECT id, owner_type, owner_id, storage_key, file_name, mime_type, size_bytes, created_at
        FROM attachment_references WHERE owner_type=$1 AND owner_id=$2 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AttachmentReference
	for rows.Next() {
		var attachment domain.AttachmentReference
		if err := rows.Scan(
			&attachment.ID,
			&attachment.OwnerType,
			&attachment.OwnerID,
			&attachment.StorageKey,
			&attachment.FileName,
			&attachment.MimeType,
			&attachment.SizeBytes,
			&attachment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}
