package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-workflow/internal/domain"
	"github.com/spec-kit/issue-workflow/internal/events"
	"github.com/spec-kit/issue-workflow/internal/repository"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util"
)

// Command is one lifecycle transition: a description of preconditions and
// writes, executed by the engine inside a single transaction. Run must not
// produce side effects outside the store; post-commit effects are declared
// on the returned Effect.
type Command interface {
	Name() string
	Run(ctx context.Context, store *repository.Store) (*Effect, error)
}

// Effect is what a command's Run leaves behind.
type Effect struct {
	// History, when non-nil, is appended by the engine inside the same
	// transaction as the command's writes.
	History *domain.HistoryEntry
	// Events are dispatched only after the transaction committed.
	Events []events.Event
	// Result is the command-specific payload returned to the caller.
	Result any
}

// Engine executes transition commands. One transaction per command, exactly
// one history entry per transition, notifications strictly after commit.
type Engine struct {
	runner     repository.Runner
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewEngine constructs the engine.
func NewEngine(runner repository.Runner, dispatcher events.Dispatcher, logger *zap.Logger) *Engine {
	return &Engine{runner: runner, dispatcher: dispatcher, logger: logger}
}

// Execute runs cmd inside one transaction and dispatches its events after
// commit. Any error before commit rolls the whole transition back; a
// dispatch failure never fails an already-committed transition.
func (e *Engine) Execute(ctx context.Context, cmd Command) (any, error) {
	var effect *Effect
	err := e.runner.InTx(ctx, func(ctx context.Context, store *repository.Store) error {
		eff, err := cmd.Run(ctx, store)
		if err != nil {
			return err
		}
		if eff.History != nil {
			if err := store.History.Create(ctx, eff.History); err != nil {
				return err
			}
		}
		effect = eff
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	for _, event := range effect.Events {
		if event.ID == "" {
			event.ID = uuid.NewString()
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now()
		}
		if e.dispatcher == nil {
			continue
		}
		if err := e.dispatcher.Publish(ctx, event); err != nil {
			e.logger.Warn("notification dispatch failed",
				zap.String("command", cmd.Name()),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
	return effect.Result, nil
}

// loadActiveUser fetches a user and verifies it may act in a transition.
func loadActiveUser(ctx context.Context, store *repository.Store, userID, role string) (*domain.User, error) {
	user, err := store.Users.GetByID(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound(role, map[string]any{"user_id": userID})
		}
		return nil, err
	}
	if !user.Active() {
		return nil, apperrors.NewInvalidActor(role+" is not active", map[string]any{"user_id": userID})
	}
	return user, nil
}

// loadTicket fetches a ticket or reports NotFound.
func loadTicket(ctx context.Context, store *repository.Store, ticketID string) (*domain.Ticket, error) {
	ticket, err := store.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}
