package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/events"
	"github.com/spec-kit/issue-workflow/internal/repository/memory"
	"github.com/spec-kit/issue-workflow/internal/workflow"
)

func newLifecycleService(t *testing.T) (*LifecycleService, *memory.DB) {
	t.Helper()
	db := memory.New()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	engine := workflow.NewEngine(db, dispatcher, zap.NewNop())
	return NewLifecycleService(engine, db.Store()), db
}

func TestAssignReturnsJoinedDetail(t *testing.T) {
	svc, db := newLifecycleService(t)
	ctx := context.Background()

	assigner := db.SeedUser("assigner", domain.UserStatusActive)
	assignee := db.SeedUser("assignee", domain.UserStatusActive)
	ticket := db.SeedTicket(assigner.ID, domain.TicketStatusPending)
	att := db.SeedAttachment("log.txt")

	detail, err := svc.Assign(ctx, AssignInput{
		TicketID:      ticket.ID,
		AssigneeID:    assignee.ID,
		AssignerID:    assigner.ID,
		Remarks:       "please triage",
		AttachmentIDs: []string{att.ID},
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if detail.Assignment.ID == "" {
		t.Fatal("missing assignment id")
	}
	if detail.Assignee.ID != assignee.ID || detail.Assigner.ID != assigner.ID {
		t.Fatal("joined users do not match actors")
	}
	if detail.Ticket.Status != domain.TicketStatusPending {
		t.Fatalf("joined ticket shows stale status %s", detail.Ticket.Status)
	}
	if len(detail.Attachments) != 1 || detail.Attachments[0].ID != att.ID {
		t.Fatalf("joined attachments wrong: %v", detail.Attachments)
	}
}

func TestUnassignByPairReturnsSummary(t *testing.T) {
	svc, db := newLifecycleService(t)
	ctx := context.Background()

	assigner := db.SeedUser("assigner", domain.UserStatusActive)
	assignee := db.SeedUser("assignee", domain.UserStatusActive)
	ticket := db.SeedTicket(assigner.ID, domain.TicketStatusPending)

	detail, err := svc.Assign(ctx, AssignInput{
		TicketID:   ticket.ID,
		AssigneeID: assignee.ID,
		AssignerID: assigner.ID,
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	summary, err := svc.UnassignByPair(ctx, ticket.ID, assignee.ID, assigner.ID, "handover")
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if summary.AssignmentID != detail.Assignment.ID {
		t.Fatal("summary does not reference the removed assignment")
	}
	if summary.TicketStatus != domain.TicketStatusPending {
		t.Fatalf("unassign changed ticket status: %s", summary.TicketStatus)
	}
}

func TestEscalateReturnsCurrentTier(t *testing.T) {
	svc, db := newLifecycleService(t)
	ctx := context.Background()

	escalator := db.SeedUser("escalator", domain.UserStatusActive)
	ticket := db.SeedTicket(escalator.ID, domain.TicketStatusInProgress)
	db.SeedTier(ticket.ID, 1, domain.TierStatusAssigned, time.Now().Add(-time.Hour))

	detail, err := svc.Escalate(ctx, EscalateInput{
		TicketID:    ticket.ID,
		FromTier:    1,
		ToTier:      2,
		Reason:      "beyond first line",
		EscalatedBy: escalator.ID,
	})
	if err != nil {
		t.Fatalf("escalate: %v", err)
	}
	if detail.CurrentTier == nil || detail.CurrentTier.Level != 2 {
		t.Fatalf("expected current tier at level 2, got %+v", detail.CurrentTier)
	}
	if detail.Ticket.Status != domain.TicketStatusPending {
		t.Fatalf("expected pending ticket, got %s", detail.Ticket.Status)
	}
}

func TestResolveThenDeleteResolutionRoundTrip(t *testing.T) {
	svc, db := newLifecycleService(t)
	ctx := context.Background()

	resolver := db.SeedUser("resolver", domain.UserStatusActive)
	ticket := db.SeedTicket(resolver.ID, domain.TicketStatusInProgress)

	detail, err := svc.Resolve(ctx, OutcomeInput{
		TicketID: ticket.ID,
		Reason:   "fixed",
		ActorID:  resolver.ID,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if detail.Kind != domain.AttachmentOwnerResolution {
		t.Fatalf("unexpected outcome kind %s", detail.Kind)
	}
	if detail.Ticket.Status != domain.TicketStatusResolved {
		t.Fatalf("expected resolved, got %s", detail.Ticket.Status)
	}

	if err := svc.DeleteResolution(ctx, detail.OutcomeID); err != nil {
		t.Fatalf("delete resolution: %v", err)
	}
	after, err := db.Store().Tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("reload ticket: %v", err)
	}
	if after.Status != domain.TicketStatusInProgress {
		t.Fatalf("expected in_progress after reversal, got %s", after.Status)
	}
}
