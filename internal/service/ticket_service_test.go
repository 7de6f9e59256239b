package service

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/events"
	"github.com/spec-kit/issue-workflow/internal/repository/memory"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util"
)

func TestCreateTicketStartsPending(t *testing.T) {
	db := memory.New()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())

	var created []events.Event
	dispatcher.Subscribe(events.EventTicketCreated, func(_ context.Context, event events.Event) error {
		created = append(created, event)
		return nil
	})

	svc := NewTicketService(db.Store(), dispatcher)
	reporter := db.SeedUser("reporter", domain.UserStatusActive)

	ticket, err := svc.CreateTicket(context.Background(), reporter.ID, TicketCreateInput{
		CategoryID: "billing",
		PriorityID: "high",
		Title:      "  charged twice  ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.Status != domain.TicketStatusPending {
		t.Fatalf("new tickets start pending, got %s", ticket.Status)
	}
	if ticket.Title != "charged twice" {
		t.Fatalf("title not trimmed: %q", ticket.Title)
	}
	if !strings.HasPrefix(ticket.ExternalKey, "TCK-") {
		t.Fatalf("unexpected external key %q", ticket.ExternalKey)
	}
	if len(created) != 1 || created[0].TicketID != ticket.ID {
		t.Fatalf("ticket_created event not published: %v", created)
	}
}

func TestCreateTicketRejectsSuspendedReporter(t *testing.T) {
	db := memory.New()
	svc := NewTicketService(db.Store(), events.NewInMemoryDispatcher(zap.NewNop()))
	reporter := db.SeedUser("reporter", domain.UserStatusSuspended)

	_, err := svc.CreateTicket(context.Background(), reporter.ID, TicketCreateInput{
		CategoryID: "billing",
		PriorityID: "low",
		Title:      "test",
	})
	if err == nil {
		t.Fatal("suspended reporter must not create tickets")
	}
	if apperrors.ToDomainError(err).Code != "INVALID_ACTOR" {
		t.Fatalf("expected INVALID_ACTOR, got %v", err)
	}
}

func TestGetTicketDetailAggregatesRecords(t *testing.T) {
	svc, db := newLifecycleService(t)
	ctx := context.Background()

	assigner := db.SeedUser("assigner", domain.UserStatusActive)
	assignee := db.SeedUser("assignee", domain.UserStatusActive)
	ticket := db.SeedTicket(assigner.ID, domain.TicketStatusPending)

	if _, err := svc.Assign(ctx, AssignInput{
		TicketID:   ticket.ID,
		AssigneeID: assignee.ID,
		AssignerID: assigner.ID,
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := svc.Resolve(ctx, OutcomeInput{
		TicketID: ticket.ID,
		ActorID:  assignee.ID,
	}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	reads := NewTicketService(db.Store(), nil)
	detail, err := reads.GetTicketDetail(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if len(detail.Assignments) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(detail.Assignments))
	}
	if len(detail.Resolutions) != 1 {
		t.Fatalf("expected 1 resolution, got %d", len(detail.Resolutions))
	}
	if len(detail.History) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(detail.History))
	}
	if detail.Ticket.Status != domain.TicketStatusResolved {
		t.Fatalf("expected resolved, got %s", detail.Ticket.Status)
	}
}

func TestListHistoryUnknownTicket(t *testing.T) {
	db := memory.New()
	svc := NewTicketService(db.Store(), nil)

	_, err := svc.ListHistory(context.Background(), "missing", 10, 0)
	if err == nil {
		t.Fatal("expected not found")
	}
	if apperrors.ToDomainError(err).Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
