package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/events"
	"github.com/spec-kit/issue-workflow/internal/repository/memory"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util"
)

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
	fail   error
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return d.fail
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event(nil), d.events...)
}

func newTestEngine(t *testing.T) (*Engine, *memory.DB, *recordingDispatcher) {
	t.Helper()
	db := memory.New()
	dispatcher := &recordingDispatcher{}
	engine := NewEngine(db, dispatcher, zap.NewNop())
	return engine, db, dispatcher
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	return domainErr.Code
}

func TestExecuteAppendsHistoryInTransaction(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	ctx := context.Background()

	assigner := db.SeedUser("assigner", domain.UserStatusActive)
	assignee := db.SeedUser("assignee", domain.UserStatusActive)
	ticket := db.SeedTicket(assigner.ID, domain.TicketStatusPending)

	result, err := engine.Execute(ctx, &AssignCommand{
		TicketID:   ticket.ID,
		AssigneeID: assignee.ID,
		AssignerID: assigner.ID,
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	assignment, ok := result.(*domain.Assignment)
	if !ok || assignment.ID == "" {
		t.Fatalf("expected assignment result, got %#v", result)
	}

	history := db.History()
	if len(history) != 1 {
		t.Fatalf("expected exactly 1 history entry, got %d", len(history))
	}
	entry := history[0]
	if entry.Action != domain.HistoryActionAssigned {
		t.Fatalf("expected assigned action, got %s", entry.Action)
	}
	if entry.AssignmentID == nil || *entry.AssignmentID != assignment.ID {
		t.Fatalf("history not linked to assignment %s", assignment.ID)
	}
	if entry.StatusAtTime != domain.TicketStatusPending {
		t.Fatalf("expected status_at_time pending, got %s", entry.StatusAtTime)
	}
	if entry.ActorID != assigner.ID {
		t.Fatalf("expected actor %s, got %s", assigner.ID, entry.ActorID)
	}
}

func TestExecuteRollsBackWhenHistoryInsertFails(t *testing.T) {
	engine, db, dispatcher := newTestEngine(t)
	ctx := context.Background()

	assigner := db.SeedUser("assigner", domain.UserStatusActive)
	assignee := db.SeedUser("assignee", domain.UserStatusActive)
	ticket := db.SeedTicket(assigner.ID, domain.TicketStatusInProgress)

	db.HistoryInsertErr = errors.New("history insert refused")

	_, err := engine.Execute(ctx, &AssignCommand{
		TicketID:   ticket.ID,
		AssigneeID: assignee.ID,
		AssignerID: assigner.ID,
	})
	if err == nil {
		t.Fatal("expected failure when history insert fails")
	}

	// The assignment write and the status change must both roll back.
	if _, err := db.Store().Assignments.GetByTicketAndAssignee(ctx, ticket.ID, assignee.ID); err == nil {
		t.Fatal("assignment survived a rolled-back transition")
	}
	after, err := db.Store().Tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("reload ticket: %v", err)
	}
	if after.Status != domain.TicketStatusInProgress {
		t.Fatalf("ticket status mutated by rolled-back transition: %s", after.Status)
	}
	if len(db.History()) != 0 {
		t.Fatal("history written despite rollback")
	}
	if len(dispatcher.published()) != 0 {
		t.Fatal("events dispatched for a failed transition")
	}
}

func TestExecuteDispatchesEventsOnlyAfterCommit(t *testing.T) {
	engine, db, dispatcher := newTestEngine(t)
	ctx := context.Background()

	assigner := db.SeedUser("assigner", domain.UserStatusActive)
	assignee := db.SeedUser("assignee", domain.UserStatusActive)
	ticket := db.SeedTicket(assigner.ID, domain.TicketStatusPending)

	if _, err := engine.Execute(ctx, &AssignCommand{
		TicketID:   ticket.ID,
		AssigneeID: assignee.ID,
		AssignerID: assigner.ID,
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	published := dispatcher.published()
	if len(published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(published))
	}
	event := published[0]
	if event.Type != events.EventTicketAssigned {
		t.Fatalf("expected %s, got %s", events.EventTicketAssigned, event.Type)
	}
	if event.ID == "" || event.Timestamp.IsZero() {
		t.Fatal("engine must stamp event id and timestamp")
	}
	if event.TicketID != ticket.ID {
		t.Fatalf("expected ticket %s, got %s", ticket.ID, event.TicketID)
	}
}

func TestExecuteSwallowsDispatchFailures(t *testing.T) {
	engine, db, dispatcher := newTestEngine(t)
	ctx := context.Background()
	dispatcher.fail = errors.New("broker down")

	assigner := db.SeedUser("assigner", domain.UserStatusActive)
	assignee := db.SeedUser("assignee", domain.UserStatusActive)
	ticket := db.SeedTicket(assigner.ID, domain.TicketStatusPending)

	if _, err := engine.Execute(ctx, &AssignCommand{
		TicketID:   ticket.ID,
		AssigneeID: assignee.ID,
		AssignerID: assigner.ID,
	}); err != nil {
		t.Fatalf("dispatch failure leaked to caller: %v", err)
	}

	// Committed state stays committed.
	if len(db.History()) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(db.History()))
	}
}

func TestExecuteMapsUnknownTicketToNotFound(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	ctx := context.Background()
	actor := db.SeedUser("actor", domain.UserStatusActive)

	_, err := engine.Execute(ctx, &ResolveCommand{
		TicketID:   "no-such-ticket",
		ResolvedBy: actor.ID,
	})
	if err == nil {
		t.Fatal("expected error for unknown ticket")
	}
	if code := domainCode(t, err); code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", code)
	}
}

func TestExecuteRejectsSuspendedActor(t *testing.T) {
	engine, db, dispatcher := newTestEngine(t)
	ctx := context.Background()

	reporter := db.SeedUser("reporter", domain.UserStatusActive)
	suspended := db.SeedUser("suspended", domain.UserStatusSuspended)
	ticket := db.SeedTicket(reporter.ID, domain.TicketStatusPending)

	_, err := engine.Execute(ctx, &AssignCommand{
		TicketID:   ticket.ID,
		AssigneeID: suspended.ID,
		AssignerID: reporter.ID,
	})
	if err == nil {
		t.Fatal("expected suspended assignee to be rejected")
	}
	if code := domainCode(t, err); code != "INVALID_ACTOR" {
		t.Fatalf("expected INVALID_ACTOR, got %s", code)
	}
	if len(db.History()) != 0 || len(dispatcher.published()) != 0 {
		t.Fatal("failed transition left side effects")
	}
}
