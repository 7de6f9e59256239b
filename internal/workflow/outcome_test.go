package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/issue-workflow/internal/domain"
)

func TestEscalateCreatesPendingTier(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	ctx := context.Background()

	escalator := db.SeedUser("escalator", domain.UserStatusActive)
	ticket := db.SeedTicket(escalator.ID, domain.TicketStatusInProgress)
	db.SeedTier(ticket.ID, 1, domain.TierStatusAssigned, time.Now().Add(-time.Hour))

	result, err := engine.Execute(ctx, &EscalateCommand{
		TicketID:    ticket.ID,
		FromTier:    1,
		ToTier:      2,
		Reason:      "needs specialist",
		EscalatedBy: escalator.ID,
	})
	if err != nil {
		t.Fatalf("escalate: %v", err)
	}
	escalation := result.(*domain.Escalation)
	if escalation.FromTier != 1 || escalation.ToTier != 2 {
		t.Fatalf("unexpected escalation levels: %+v", escalation)
	}

	current, err := db.Store().Tiers.CurrentByTicket(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("current tier: %v", err)
	}
	if current.Level != 2 {
		t.Fatalf("expected current tier level 2, got %d", current.Level)
	}
	if current.Status != domain.TierStatusPending {
		t.Fatalf("new tier must start pending, got %s", current.Status)
	}
	if current.HandlerID != nil {
		t.Fatal("new tier must have no handler yet")
	}

	after, err := db.Store().Tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("reload ticket: %v", err)
	}
	if after.Status != domain.TicketStatusPending {
		t.Fatalf("escalated ticket must go back to pending, got %s", after.Status)
	}

	history := db.History()
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	if history[0].Action != domain.HistoryActionPending {
		t.Fatalf("expected pending action, got %s", history[0].Action)
	}
	if history[0].EscalationID == nil || *history[0].EscalationID != escalation.ID {
		t.Fatal("history entry must link the escalation")
	}
}

func TestResolveStampsTicketAndCurrentTier(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	ctx := context.Background()

	resolver := db.SeedUser("resolver", domain.UserStatusActive)
	ticket := db.SeedTicket(resolver.ID, domain.TicketStatusInProgress)
	tier := db.SeedTier(ticket.ID, 1, domain.TierStatusAssigned, time.Now().Add(-time.Minute))

	result, err := engine.Execute(ctx, &ResolveCommand{
		TicketID:   ticket.ID,
		Reason:     "patched in release",
		ResolvedBy: resolver.ID,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	resolution := result.(*domain.Resolution)

	after, err := db.Store().Tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("reload ticket: %v", err)
	}
	if after.Status != domain.TicketStatusResolved {
		t.Fatalf("expected resolved, got %s", after.Status)
	}
	if after.ResolvedAt == nil {
		t.Fatal("resolved_at must be set")
	}

	current, err := db.Store().Tiers.CurrentByTicket(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("current tier: %v", err)
	}
	if current.ID != tier.ID || current.Status != domain.TierStatusResolved {
		t.Fatalf("current tier not marked resolved: %+v", current)
	}

	history := db.History()
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	if history[0].Action != domain.HistoryActionResolved {
		t.Fatalf("expected resolved action, got %s", history[0].Action)
	}
	if history[0].ResolutionID == nil || *history[0].ResolutionID != resolution.ID {
		t.Fatal("history entry must link the resolution")
	}
	if history[0].StatusAtTime != domain.TicketStatusResolved {
		t.Fatalf("status_at_time must capture the post-transition status, got %s", history[0].StatusAtTime)
	}
}

func TestResolveWithoutTiersLeavesTiersAlone(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	ctx := context.Background()

	resolver := db.SeedUser("resolver", domain.UserStatusActive)
	ticket := db.SeedTicket(resolver.ID, domain.TicketStatusPending)

	if _, err := engine.Execute(ctx, &ResolveCommand{
		TicketID:   ticket.ID,
		ResolvedBy: resolver.ID,
	}); err != nil {
		t.Fatalf("resolve without tiers: %v", err)
	}
}

func TestRejectStampsTicketAndCurrentTier(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	ctx := context.Background()

	rejector := db.SeedUser("rejector", domain.UserStatusActive)
	ticket := db.SeedTicket(rejector.ID, domain.TicketStatusInProgress)
	tier := db.SeedTier(ticket.ID, 1, domain.TierStatusAssigned, time.Now().Add(-time.Minute))

	if _, err := engine.Execute(ctx, &RejectCommand{
		TicketID:   ticket.ID,
		Reason:     "not reproducible",
		RejectedBy: rejector.ID,
	}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	after, err := db.Store().Tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("reload ticket: %v", err)
	}
	if after.Status != domain.TicketStatusRejected {
		t.Fatalf("expected rejected, got %s", after.Status)
	}
	current, err := db.Store().Tiers.CurrentByTicket(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("current tier: %v", err)
	}
	if current.ID != tier.ID || current.Status != domain.TierStatusRejected {
		t.Fatalf("current tier not marked rejected: %+v", current)
	}
}

func TestReRaiseReopensAtSameTier(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	ctx := context.Background()

	reporter := db.SeedUser("reporter", domain.UserStatusActive)
	ticket := db.SeedTicket(reporter.ID, domain.TicketStatusResolved)
	tier := db.SeedTier(ticket.ID, 2, domain.TierStatusResolved, time.Now().Add(-time.Minute))

	raisedAt := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	result, err := engine.Execute(ctx, &ReRaiseCommand{
		TicketID:   ticket.ID,
		Reason:     "still broken",
		ReRaisedBy: reporter.ID,
		ReRaisedAt: raisedAt,
	})
	if err != nil {
		t.Fatalf("re-raise: %v", err)
	}
	reRaise := result.(*domain.ReRaise)
	if !reRaise.ReRaisedAt.Equal(raisedAt) {
		t.Fatalf("expected caller timestamp %v, got %v", raisedAt, reRaise.ReRaisedAt)
	}

	after, err := db.Store().Tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("reload ticket: %v", err)
	}
	if after.Status != domain.TicketStatusReRaised {
		t.Fatalf("expected re_raised, got %s", after.Status)
	}

	// No new tier is created: the same level goes back to pending.
	current, err := db.Store().Tiers.CurrentByTicket(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("current tier: %v", err)
	}
	if current.ID != tier.ID {
		t.Fatal("re-raise must not create a new tier")
	}
	if current.Status != domain.TierStatusPending {
		t.Fatalf("current tier must revert to pending, got %s", current.Status)
	}
}

func TestReRaiseDefaultsTimestamp(t *testing.T) {
	engine, db, _ := newTestEngine(t)
	ctx := context.Background()

	reporter := db.SeedUser("reporter", domain.UserStatusActive)
	ticket := db.SeedTicket(reporter.ID, domain.TicketStatusResolved)

	result, err := engine.Execute(ctx, &ReRaiseCommand{
		TicketID:   ticket.ID,
		ReRaisedBy: reporter.ID,
	})
	if err != nil {
		t.Fatalf("re-raise: %v", err)
	}
	if result.(*domain.ReRaise).ReRaisedAt.IsZero() {
		t.Fatal("re_raised_at must default to now")
	}
}
