package events

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestDispatcherInvokesSubscribedHandlers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	var got []Event
	dispatcher.Subscribe(EventTicketResolved, func(_ context.Context, event Event) error {
		got = append(got, event)
		return nil
	})

	event := Event{Type: EventTicketResolved, TicketID: "t-1"}
	if err := dispatcher.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(got) != 1 || got[0].TicketID != "t-1" {
		t.Fatalf("handler not invoked correctly: %v", got)
	}
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	called := false
	dispatcher.Subscribe(EventTicketResolved, func(context.Context, Event) error {
		called = true
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketEscalated}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if called {
		t.Fatal("handler called for a type it never subscribed to")
	}
}

func TestDispatcherContinuesPastFailingHandler(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	var order []string
	dispatcher.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		order = append(order, "first")
		return errors.New("first handler failed")
	})
	dispatcher.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		order = append(order, "second")
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketAssigned}); err != nil {
		t.Fatalf("handler failure must not surface from Publish: %v", err)
	}
	if len(order) != 2 {
		t.Fatalf("expected both handlers to run, got %v", order)
	}
}
