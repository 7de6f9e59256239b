package service

import (
	"context"
	"testing"

	"github.com/spec-kit/issue-workflow/internal/config"
	"github.com/spec-kit/issue-workflow/internal/repository/memory"
	apperrors "github.com/spec-kit/issue-workflow/pkg/util"
)

func newAuthService(t *testing.T) (*AuthService, *memory.DB) {
	t.Helper()
	db := memory.New()
	cfg := config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            4,
	}
	return NewAuthService(cfg, db.Store().Users), db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, token, _, err := svc.RegisterUser(ctx, "Dana", "Dana@Example.com ", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if token == "" {
		t.Fatal("register must issue a token")
	}
	if user.Email != "dana@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.PasswordHash == "s3cret" {
		t.Fatal("password stored in plaintext")
	}

	logged, token, _, err := svc.LoginUser(ctx, "dana@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID || token == "" {
		t.Fatal("login did not return the registered user")
	}

	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("token subject mismatch: %s", claims.UserID)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	if _, _, _, err := svc.RegisterUser(ctx, "Dana", "dana@example.com", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, _, _, err := svc.RegisterUser(ctx, "Other", "dana@example.com", "hunter2")
	if err == nil {
		t.Fatal("expected conflict for duplicate email")
	}
	if apperrors.ToDomainError(err).Code != "CONFLICT" {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	if _, _, _, err := svc.RegisterUser(ctx, "Dana", "dana@example.com", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, _, err := svc.LoginUser(ctx, "dana@example.com", "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	}
	if _, _, _, err := svc.LoginUser(ctx, "nobody@example.com", "s3cret"); err == nil {
		t.Fatal("unknown email accepted")
	}
}
