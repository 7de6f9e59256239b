// Package memory provides an in-memory repository.Store and Runner. It backs
// the workflow tests, where transaction rollbacks and forced mid-transaction
// failures need to be observable without a database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/repository"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util"
)

// DB is an in-memory database implementing repository.Runner. InTx snapshots
// all state up front and restores it when the callback fails, mirroring a
// rolled-back transaction.
type DB struct {
	mu sync.Mutex

	tickets     map[string]domain.Ticket
	users       map[string]domain.User
	assignments map[string]domain.Assignment
	escalations map[string]domain.Escalation
	tiers       []domain.Tier
	resolutions map[string]domain.Resolution
	rejections  map[string]domain.Rejection
	reRaises    map[string]domain.ReRaise
	history     []domain.HistoryEntry
	attachments map[string]domain.AttachmentReference

	// HistoryInsertErr, when set, fails the next history insert. Used to
	// prove that a failed history append rolls back the whole transition.
	HistoryInsertErr error
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{
		tickets:     make(map[string]domain.Ticket),
		users:       make(map[string]domain.User),
		assignments: make(map[string]domain.Assignment),
		escalations: make(map[string]domain.Escalation),
		resolutions: make(map[string]domain.Resolution),
		rejections:  make(map[string]domain.Rejection),
		reRaises:    make(map[string]domain.ReRaise),
		attachments: make(map[string]domain.AttachmentReference),
	}
}

// Store returns a store view over the live data.
func (db *DB) Store() *repository.Store {
	return &repository.Store{
		Tickets:     &ticketRepo{db: db},
		Users:       &userRepo{db: db},
		Assignments: &assignmentRepo{db: db},
		Escalations: &escalationRepo{db: db},
		Tiers:       &tierRepo{db: db},
		Resolutions: &resolutionRepo{db: db},
		Rejections:  &rejectionRepo{db: db},
		ReRaises:    &reRaiseRepo{db: db},
		History:     &historyRepo{db: db},
		Attachments: &attachmentRepo{db: db},
	}
}

// InTx runs fn against the live data, restoring the pre-call snapshot when
// fn returns an error.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context, store *repository.Store) error) error {
	snapshot := db.snapshot()
	if err := fn(ctx, db.Store()); err != nil {
		db.restore(snapshot)
		return err
	}
	return nil
}

type state struct {
	tickets     map[string]domain.Ticket
	users       map[string]domain.User
	assignments map[string]domain.Assignment
	escalations map[string]domain.Escalation
	tiers       []domain.Tier
	resolutions map[string]domain.Resolution
	rejections  map[string]domain.Rejection
	reRaises    map[string]domain.ReRaise
	history     []domain.HistoryEntry
	attachments map[string]domain.AttachmentReference
}

func (db *DB) snapshot() state {
	db.mu.Lock()
	defer db.mu.Unlock()
	return state{
		tickets:     copyMap(db.tickets),
		users:       copyMap(db.users),
		assignments: copyMap(db.assignments),
		escalations: copyMap(db.escalations),
		tiers:       append([]domain.Tier(nil), db.tiers...),
		resolutions: copyMap(db.resolutions),
		rejections:  copyMap(db.rejections),
		reRaises:    copyMap(db.reRaises),
		history:     append([]domain.HistoryEntry(nil), db.history...),
		attachments: copyMap(db.attachments),
	}
}

func (db *DB) restore(s state) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.tickets = s.tickets
	db.users = s.users
	db.assignments = s.assignments
	db.escalations = s.escalations
	db.tiers = s.tiers
	db.resolutions = s.resolutions
	db.rejections = s.rejections
	db.reRaises = s.reRaises
	db.history = s.history
	db.attachments = s.attachments
}

func copyMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Seed helpers for tests.

// SeedUser stores a user and returns it.
func (db *DB) SeedUser(name string, status domain.UserStatus) *domain.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	user := domain.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     name + "@example.com",
		Status:    status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	db.users[user.ID] = user
	return &user
}

// SeedTicket stores a ticket and returns it.
func (db *DB) SeedTicket(reporterID string, status domain.TicketStatus) *domain.Ticket {
	db.mu.Lock()
	defer db.mu.Unlock()
	ticket := domain.Ticket{
		ID:          uuid.NewString(),
		ExternalKey: "TCK-" + uuid.NewString()[:8],
		CategoryID:  "general",
		PriorityID:  "medium",
		ReporterID:  reporterID,
		Title:       "seeded ticket",
		Status:      status,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	db.tickets[ticket.ID] = ticket
	return &ticket
}

// SeedTier stores a tier row and returns it.
func (db *DB) SeedTier(ticketID string, level int, status domain.TierStatus, assignedAt time.Time) *domain.Tier {
	db.mu.Lock()
	defer db.mu.Unlock()
	tier := domain.Tier{
		ID:         uuid.NewString(),
		TicketID:   ticketID,
		Level:      level,
		Status:     status,
		AssignedAt: assignedAt,
	}
	db.tiers = append(db.tiers, tier)
	return &tier
}

// SeedAttachment stores an unlinked attachment reference and returns it.
func (db *DB) SeedAttachment(fileName string) *domain.AttachmentReference {
	db.mu.Lock()
	defer db.mu.Unlock()
	att := domain.AttachmentReference{
		ID:         uuid.NewString(),
		StorageKey: "blob/" + fileName,
		FileName:   fileName,
		MimeType:   "application/octet-stream",
		CreatedAt:  time.Now(),
	}
	db.attachments[att.ID] = att
	return &att
}

// History returns a copy of all audit entries.
func (db *DB) History() []domain.HistoryEntry {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]domain.HistoryEntry(nil), db.history...)
}

// --- repository implementations ---

type ticketRepo struct{ db *DB }

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.db.tickets[ticket.ID] = *ticket
	return nil
}

func (r *ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	r.db.tickets[ticket.ID] = *ticket
	return nil
}

func (r *ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ticket, ok := r.db.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *ticketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.db.tickets {
		if filter.ReporterID != nil && ticket.ReporterID != *filter.ReporterID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		result = append(result, ticket)
	}
	return result, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type userRepo struct{ db *DB }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.db.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	user, ok := r.db.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, user := range r.db.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type assignmentRepo struct{ db *DB }

func (r *assignmentRepo) Create(_ context.Context, assignment *domain.Assignment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.assignments {
		if existing.TicketID == assignment.TicketID && existing.AssigneeID == assignment.AssigneeID {
			return apperrors.NewConflict("assignment already exists", map[string]any{
				"assignment_id": existing.ID,
			})
		}
	}
	assignment.ID = uuid.NewString()
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = assignment.CreatedAt
	r.db.assignments[assignment.ID] = *assignment
	return nil
}

func (r *assignmentRepo) GetByID(_ context.Context, id string) (*domain.Assignment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	assignment, ok := r.db.assignments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &assignment, nil
}

func (r *assignmentRepo) GetByTicketAndAssignee(_ context.Context, ticketID, assigneeID string) (*domain.Assignment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, assignment := range r.db.assignments {
		if assignment.TicketID == ticketID && assignment.AssigneeID == assigneeID {
			a := assignment
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *assignmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Assignment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var result []domain.Assignment
	for _, assignment := range r.db.assignments {
		if assignment.TicketID == ticketID {
			result = append(result, assignment)
		}
	}
	return result, nil
}

func (r *assignmentRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.assignments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.db.assignments, id)
	return nil
}

type escalationRepo struct{ db *DB }

func (r *escalationRepo) Create(_ context.Context, escalation *domain.Escalation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	escalation.ID = uuid.NewString()
	escalation.CreatedAt = time.Now()
	r.db.escalations[escalation.ID] = *escalation
	return nil
}

func (r *escalationRepo) GetByID(_ context.Context, id string) (*domain.Escalation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	escalation, ok := r.db.escalations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &escalation, nil
}

func (r *escalationRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Escalation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var result []domain.Escalation
	for _, escalation := range r.db.escalations {
		if escalation.TicketID == ticketID {
			result = append(result, escalation)
		}
	}
	return result, nil
}

type tierRepo struct{ db *DB }

func (r *tierRepo) Create(_ context.Context, tier *domain.Tier) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	tier.ID = uuid.NewString()
	r.db.tiers = append(r.db.tiers, *tier)
	return nil
}

func (r *tierRepo) CurrentByTicket(_ context.Context, ticketID string) (*domain.Tier, error) {
	return r.latest(ticketID, nil)
}

func (r *tierRepo) LatestByStatus(_ context.Context, ticketID string, status domain.TierStatus) (*domain.Tier, error) {
	return r.latest(ticketID, &status)
}

// latest picks the most recent matching tier by assigned_at, falling back
// to insertion order on equal timestamps.
func (r *tierRepo) latest(ticketID string, status *domain.TierStatus) (*domain.Tier, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var found *domain.Tier
	for i := range r.db.tiers {
		tier := r.db.tiers[i]
		if tier.TicketID != ticketID {
			continue
		}
		if status != nil && tier.Status != *status {
			continue
		}
		if found == nil || !tier.AssignedAt.Before(found.AssignedAt) {
			t := tier
			found = &t
		}
	}
	if found == nil {
		return nil, pgx.ErrNoRows
	}
	return found, nil
}

func (r *tierRepo) UpdateStatus(_ context.Context, id string, status domain.TierStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.tiers {
		if r.db.tiers[i].ID == id {
			r.db.tiers[i].Status = status
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *tierRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Tier, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var result []domain.Tier
	for _, tier := range r.db.tiers {
		if tier.TicketID == ticketID {
			result = append(result, tier)
		}
	}
	return result, nil
}

type resolutionRepo struct{ db *DB }

func (r *resolutionRepo) Create(_ context.Context, resolution *domain.Resolution) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	resolution.ID = uuid.NewString()
	resolution.CreatedAt = time.Now()
	r.db.resolutions[resolution.ID] = *resolution
	return nil
}

func (r *resolutionRepo) GetByID(_ context.Context, id string) (*domain.Resolution, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	resolution, ok := r.db.resolutions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &resolution, nil
}

func (r *resolutionRepo) CountByTicket(_ context.Context, ticketID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	count := 0
	for _, resolution := range r.db.resolutions {
		if resolution.TicketID == ticketID {
			count++
		}
	}
	return count, nil
}

func (r *resolutionRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Resolution, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var result []domain.Resolution
	for _, resolution := range r.db.resolutions {
		if resolution.TicketID == ticketID {
			result = append(result, resolution)
		}
	}
	return result, nil
}

func (r *resolutionRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.resolutions[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.db.resolutions, id)
	return nil
}

type rejectionRepo struct{ db *DB }

func (r *rejectionRepo) Create(_ context.Context, rejection *domain.Rejection) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	rejection.ID = uuid.NewString()
	rejection.CreatedAt = time.Now()
	r.db.rejections[rejection.ID] = *rejection
	return nil
}

func (r *rejectionRepo) GetByID(_ context.Context, id string) (*domain.Rejection, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	rejection, ok := r.db.rejections[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &rejection, nil
}

func (r *rejectionRepo) CountByTicket(_ context.Context, ticketID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	count := 0
	for _, rejection := range r.db.rejections {
		if rejection.TicketID == ticketID {
			count++
		}
	}
	return count, nil
}

func (r *rejectionRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Rejection, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var result []domain.Rejection
	for _, rejection := range r.db.rejections {
		if rejection.TicketID == ticketID {
			result = append(result, rejection)
		}
	}
	return result, nil
}

func (r *rejectionRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.rejections[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.db.rejections, id)
	return nil
}

type reRaiseRepo struct{ db *DB }

func (r *reRaiseRepo) Create(_ context.Context, reRaise *domain.ReRaise) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	reRaise.ID = uuid.NewString()
	reRaise.CreatedAt = time.Now()
	r.db.reRaises[reRaise.ID] = *reRaise
	return nil
}

func (r *reRaiseRepo) GetByID(_ context.Context, id string) (*domain.ReRaise, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	reRaise, ok := r.db.reRaises[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &reRaise, nil
}

func (r *reRaiseRepo) CountByTicket(_ context.Context, ticketID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	count := 0
	for _, reRaise := range r.db.reRaises {
		if reRaise.TicketID == ticketID {
			count++
		}
	}
	return count, nil
}

func (r *reRaiseRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.ReRaise, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var result []domain.ReRaise
	for _, reRaise := range r.db.reRaises {
		if reRaise.TicketID == ticketID {
			result = append(result, reRaise)
		}
	}
	return result, nil
}

func (r *reRaiseRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.reRaises[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.db.reRaises, id)
	return nil
}

type historyRepo struct{ db *DB }

func (r *historyRepo) Create(_ context.Context, entry *domain.HistoryEntry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.HistoryInsertErr; err != nil {
		r.db.HistoryInsertErr = nil
		return err
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	r.db.history = append(r.db.history, *entry)
	return nil
}

func (r *historyRepo) ListByTicket(_ context.Context, ticketID string, limit, offset int) ([]domain.HistoryEntry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var result []domain.HistoryEntry
	for _, entry := range r.db.history {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	if offset > 0 {
		if offset >= len(result) {
			return nil, nil
		}
		result = result[offset:]
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

type attachmentRepo struct{ db *DB }

func (r *attachmentRepo) Link(_ context.Context, ownerType domain.AttachmentOwnerType, ownerID string, attachmentIDs []string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range attachmentIDs {
		att, ok := r.db.attachments[id]
		if !ok {
			return pgx.ErrNoRows
		}
		ot := ownerType
		oid := ownerID
		att.OwnerType = &ot
		att.OwnerID = &oid
		r.db.attachments[id] = att
	}
	return nil
}

func (r *attachmentRepo) Unlink(_ context.Context, ownerType domain.AttachmentOwnerType, ownerID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, att := range r.db.attachments {
		if att.OwnerType != nil && *att.OwnerType == ownerType && att.OwnerID != nil && *att.OwnerID == ownerID {
			att.OwnerType = nil
			att.OwnerID = nil
			r.db.attachments[id] = att
		}
	}
	return nil
}

func (r *attachmentRepo) ListByOwner(_ context.Context, ownerType domain.AttachmentOwnerType, ownerID string) ([]domain.AttachmentReference, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var result []domain.AttachmentReference
	for _, att := range r.db.attachments {
		if att.OwnerType != nil && *att.OwnerType == ownerType && att.OwnerID != nil && *att.OwnerID == ownerID {
			result = append(result, att)
		}
	}
	return result, nil
}
