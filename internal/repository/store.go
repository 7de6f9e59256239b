package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-workflow/internal/domain"
)

// Querier is the subset of pgx used by repositories. Both *pgxpool.Pool and
// pgx.Tx satisfy it, so the same repository code runs standalone or inside a
// workflow transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

// UserRepository defines persistence access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// AssignmentRepository persists assignment rows. Delete is a hard delete;
// the history entry is the permanent record.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.Assignment) error
	GetByID(ctx context.Context, id string) (*domain.Assignment, error)
	GetByTicketAndAssignee(ctx context.Context, ticketID, assigneeID string) (*domain.Assignment, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Assignment, error)
	Delete(ctx context.Context, id string) error
}

// EscalationRepository persists escalation rows. Append-only.
type EscalationRepository interface {
	Create(ctx context.Context, escalation *domain.Escalation) error
	GetByID(ctx context.Context, id string) (*domain.Escalation, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Escalation, error)
}

// TierRepository persists handling-level rows.
type TierRepository interface {
	Create(ctx context.Context, tier *domain.Tier) error
	// CurrentByTicket returns the most recently assigned tier.
	CurrentByTicket(ctx context.Context, ticketID string) (*domain.Tier, error)
	// LatestByStatus returns the most recently assigned tier in the given status.
	LatestByStatus(ctx context.Context, ticketID string, status domain.TierStatus) (*domain.Tier, error)
	UpdateStatus(ctx context.Context, id string, status domain.TierStatus) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Tier, error)
}

// ResolutionRepository persists resolution outcome rows.
type ResolutionRepository interface {
	Create(ctx context.Context, resolution *domain.Resolution) error
	GetByID(ctx context.Context, id string) (*domain.Resolution, error)
	CountByTicket(ctx context.Context, ticketID string) (int, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Resolution, error)
	Delete(ctx context.Context, id string) error
}

// RejectionRepository persists rejection outcome rows.
type RejectionRepository interface {
	Create(ctx context.Context, rejection *domain.Rejection) error
	GetByID(ctx context.Context, id string) (*domain.Rejection, error)
	CountByTicket(ctx context.Context, ticketID string) (int, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Rejection, error)
	Delete(ctx context.Context, id string) error
}

// ReRaiseRepository persists re-raise outcome rows.
type ReRaiseRepository interface {
	Create(ctx context.Context, reRaise *domain.ReRaise) error
	GetByID(ctx context.Context, id string) (*domain.ReRaise, error)
	CountByTicket(ctx context.Context, ticketID string) (int, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.ReRaise, error)
	Delete(ctx context.Context, id string) error
}

// HistoryRepository appends immutable audit entries. There is deliberately
// no update or delete.
type HistoryRepository interface {
	Create(ctx context.Context, entry *domain.HistoryEntry) error
	ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]domain.HistoryEntry, error)
}

// AttachmentRepository links uploaded attachment references to the records
// transition commands create.
type AttachmentRepository interface {
	Link(ctx context.Context, ownerType domain.AttachmentOwnerType, ownerID string, attachmentIDs []string) error
	Unlink(ctx context.Context, ownerType domain.AttachmentOwnerType, ownerID string) error
	ListByOwner(ctx context.Context, ownerType domain.AttachmentOwnerType, ownerID string) ([]domain.AttachmentReference, error)
}

// Store bundles every repository bound to the same querier. A store built on
// a pgx.Tx sees and writes uncommitted transaction state.
type Store struct {
	Tickets     TicketRepository
	Users       UserRepository
	Assignments AssignmentRepository
	Escalations EscalationRepository
	Tiers       TierRepository
	Resolutions ResolutionRepository
	Rejections  RejectionRepository
	ReRaises    ReRaiseRepository
	History     HistoryRepository
	Attachments AttachmentRepository
}

// NewStore builds a Store with Postgres-backed repositories on db.
func NewStore(db Querier) *Store {
	return &Store{
		Tickets:     NewTicketRepository(db),
		Users:       NewUserRepository(db),
		Assignments: NewAssignmentRepository(db),
		Escalations: NewEscalationRepository(db),
		Tiers:       NewTierRepository(db),
		Resolutions: NewResolutionRepository(db),
		Rejections:  NewRejectionRepository(db),
		ReRaises:    NewReRaiseRepository(db),
		History:     NewHistoryRepository(db),
		Attachments: NewAttachmentRepository(db),
	}
}

// Runner owns the transaction boundary for workflow commands.
type Runner interface {
	// InTx runs fn inside one transaction. Any error rolls everything back.
	InTx(ctx context.Context, fn func(ctx context.Context, store *Store) error) error
	// Store returns a non-transactional store for post-commit reads.
	Store() *Store
}

type pgRunner struct {
	pool  *pgxpool.Pool
	store *Store
}

// NewRunner builds a pgx-backed Runner.
func NewRunner(pool *pgxpool.Pool) Runner {
	return &pgRunner{pool: pool, store: NewStore(pool)}
}

func (r *pgRunner) InTx(ctx context.Context, fn func(ctx context.Context, store *Store) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(ctx, NewStore(tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *pgRunner) Store() *Store {
	return r.store
}

// TicketFilter captures ticket search parameters.
type TicketFilter struct {
	ReporterID  *string
	CategoryID  *string
	PriorityID  *string
	Statuses    []domain.TicketStatus
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}
