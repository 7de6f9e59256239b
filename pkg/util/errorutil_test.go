package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestToDomainErrorPassesThroughDomainErrors(t *testing.T) {
	original := NewConflict("assignment already exists", map[string]any{"assignment_id": "a-1"})
	mapped := ToDomainError(original)
	if mapped.Code != "CONFLICT" || mapped.HTTPStatus != http.StatusConflict {
		t.Fatalf("unexpected mapping: %+v", mapped)
	}
	if mapped.Details["assignment_id"] != "a-1" {
		t.Fatal("details lost in mapping")
	}
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	mapped := ToDomainError(pgx.ErrNoRows)
	if mapped.Code != "NOT_FOUND" || mapped.HTTPStatus != http.StatusNotFound {
		t.Fatalf("pgx.ErrNoRows must map to NOT_FOUND, got %+v", mapped)
	}
}

func TestToDomainErrorMapsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_assignments_ticket_assignee"}
	mapped := ToDomainError(pgErr)
	if mapped.Code != "CONFLICT" || mapped.HTTPStatus != http.StatusConflict {
		t.Fatalf("unique violation must map to CONFLICT, got %+v", mapped)
	}
	if mapped.Details["constraint"] != "uq_assignments_ticket_assignee" {
		t.Fatal("constraint name missing from details")
	}
}

func TestToDomainErrorWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("connection reset")
	mapped := ToDomainError(cause)
	if mapped.Code != "INTERNAL_ERROR" || mapped.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown errors must map to INTERNAL_ERROR, got %+v", mapped)
	}
	if !errors.Is(mapped, cause) {
		t.Fatal("cause must stay reachable via errors.Is")
	}
}

func TestInvalidActorStatus(t *testing.T) {
	err := NewInvalidActor("assignee is not active", nil)
	mapped := ToDomainError(err)
	if mapped.Code != "INVALID_ACTOR" || mapped.HTTPStatus != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected invalid actor mapping: %+v", mapped)
	}
}

func TestMapErrorNil(t *testing.T) {
	if MapError(nil) != nil {
		t.Fatal("nil must map to nil")
	}
}
