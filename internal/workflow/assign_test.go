package workflow

import (
	"context"
	"testing"

	"github.com/spec-kit/issue-workflow/internal/domain"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util"
)

func TestAssignDuplicatePairConflicts(t *testing.T) {
	engine, db, dispatcher := newTestEngine(t)
	ctx := context.Background()

	assigner := db.SeedUser("assigner", domain.UserStatusActive)
	other := db.SeedUser("other-assigner", domain.UserStatusActive)
	assignee := db.SeedUser("assignee", domain.UserStatusActive)
	ticket := db.SeedTicket(assigner.ID, domain.TicketStatusPending)

	result, err := engine.Execute(ctx, &AssignCommand{
		TicketID:   ticket.ID,
		AssigneeID: assignee.ID,
		AssignerID: assigner.ID,
	})
	if err != nil {
		t.Fatalf("first assign: %v", err)
	}
	first := result.(*domain.Assignment)

	_, err = engine.Execute(ctx, &AssignCommand{
		TicketID:   ticket.ID,
		AssigneeID: assignee.ID,
		AssignerID: other.ID,
	})
	if err == nil {
		t.Fatal("expected conflict for duplicate (ticket, assignee) pair")
	}
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code != "CONFLICT" {
		t.Fatalf("expected CONFLICT, got %s", domainErr.Code)
	}
	if got := domainErr.Details["assignment_id"]; got != first.ID {
		t.Fatalf("conflict must report the existing assignment id, got %v", got)
	}

	// First assignment stays untouched, no second history entry or event.
	kept, err := db.Store().Assignments.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("reload first assignment: %v", err)
	}
	if kept.AssignerID != assigner.ID {
		t.Fatal("existing assignment was overwritten")
	}
	if len(db.History()) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(db.History()))
	}
	if len(dispatcher.published()) != 1 {
		t.Fatalf("expected 1 event, got %d", len(dispatcher.published()))
	}
}

func TestAssignLinksAttachmentsAndSetsPending(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	ctx := context.Background()

	assigner := db.SeedUser("assigner", domain.UserStatusActive)
	assignee := db.SeedUser("assignee", domain.UserStatusActive)
	ticket := db.SeedTicket(assigner.ID, domain.TicketStatusInProgress)
	att := db.SeedAttachment("screenshot.png")

	result, err := engine.Execute(ctx, &AssignCommand{
		TicketID:      ticket.ID,
		AssigneeID:    assignee.ID,
		AssignerID:    assigner.ID,
		Remarks:       "take a look",
		AttachmentIDs: []string{att.ID},
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	assignment := result.(*domain.Assignment)

	after, err := db.Store().Tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("reload ticket: %v", err)
	}
	if after.Status != domain.TicketStatusPending {
		t.Fatalf("expected ticket pending after assign, got %s", after.Status)
	}

	linked, err := db.Store().Attachments.ListByOwner(ctx, domain.AttachmentOwnerAssignment, assignment.ID)
	if err != nil {
		t.Fatalf("list attachments: %v", err)
	}
	if len(linked) != 1 || linked[0].ID != att.ID {
		t.Fatalf("attachment not linked to assignment, got %v", linked)
	}
}

func TestUnassignByIDDeletesRowAndKeepsStatus(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	ctx := context.Background()

	assigner := db.SeedUser("assigner", domain.UserStatusActive)
	assignee := db.SeedUser("assignee", domain.UserStatusActive)
	ticket := db.SeedTicket(assigner.ID, domain.TicketStatusPending)
	att := db.SeedAttachment("notes.txt")

	result, err := engine.Execute(ctx, &AssignCommand{
		TicketID:      ticket.ID,
		AssigneeID:    assignee.ID,
		AssignerID:    assigner.ID,
		AttachmentIDs: []string{att.ID},
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	assignment := result.(*domain.Assignment)

	if _, err := engine.Execute(ctx, UnassignByID(assignment.ID, assigner.ID, "reassigning")); err != nil {
		t.Fatalf("unassign: %v", err)
	}

	if _, err := db.Store().Assignments.GetByID(ctx, assignment.ID); err == nil {
		t.Fatal("assignment row must be hard-deleted")
	}
	after, err := db.Store().Tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("reload ticket: %v", err)
	}
	if after.Status != domain.TicketStatusPending {
		t.Fatalf("unassign must not change ticket status, got %s", after.Status)
	}

	// Attachments are released, the audit trail keeps both entries.
	linked, err := db.Store().Attachments.ListByOwner(ctx, domain.AttachmentOwnerAssignment, assignment.ID)
	if err != nil {
		t.Fatalf("list attachments: %v", err)
	}
	if len(linked) != 0 {
		t.Fatal("attachments still linked to deleted assignment")
	}
	history := db.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[1].Action != domain.HistoryActionUnassigned {
		t.Fatalf("expected unassigned action, got %s", history[1].Action)
	}
	if history[1].AssignmentID == nil || *history[1].AssignmentID != assignment.ID {
		t.Fatal("unassigned entry must keep the assignment id")
	}
}

func TestUnassignByPairResolvesSameRow(t *testing.T) {
	engine, db, _ := newTestEngine(t)
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

	if _, err := engine.Execute(ctx, UnassignByPair(ticket.ID, assignee.ID, assigner.ID, "")); err != nil {
		t.Fatalf("unassign by pair: %v", err)
	}
	if _, err := db.Store().Assignments.GetByTicketAndAssignee(ctx, ticket.ID, assignee.ID); err == nil {
		t.Fatal("assignment still present after unassign by pair")
	}
}

func TestUnassignUnknownAssignmentNotFound(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	ctx := context.Background()
	actor := db.SeedUser("actor", domain.UserStatusActive)

	_, err := engine.Execute(ctx, UnassignByID("missing", actor.ID, ""))
	if err == nil {
		t.Fatal("expected not found")
	}
	if code := domainCode(t, err); code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", code)
	}
}

func TestReassignAfterUnassignSucceeds(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	ctx := context.Background()

	assigner := db.SeedUser("assigner", domain.UserStatusActive)
	assignee := db.SeedUser("assignee", domain.UserStatusActive)
	ticket := db.SeedTicket(assigner.ID, domain.TicketStatusPending)

	first, err := engine.Execute(ctx, &AssignCommand{
		TicketID:   ticket.ID,
		AssigneeID: assignee.ID,
		AssignerID: assigner.ID,
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := engine.Execute(ctx, UnassignByID(first.(*domain.Assignment).ID, assigner.ID, "")); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if _, err := engine.Execute(ctx, &AssignCommand{
		TicketID:   ticket.ID,
		AssigneeID: assignee.ID,
		AssignerID: assigner.ID,
	}); err != nil {
		t.Fatalf("reassign after unassign: %v", err)
	}
}
