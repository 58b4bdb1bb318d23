package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundMatchesSentinel(t *testing.T) {
	err := NotFound("user", 42)
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFound() should match ErrNotFound")
	}
	if errors.Is(err, ErrForbidden) {
		t.Error("NotFound() should not match ErrForbidden")
	}
}

func TestWrappedErrorStillMatches(t *testing.T) {
	// Services wrap AppErrors with context; errors.Is must still see through.
	err := fmt.Errorf("service/session: refreshing: %w", InvalidToken())
	if !errors.Is(err, ErrInvalidToken) {
		t.Error("wrapped InvalidToken() should match ErrInvalidToken")
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("wrapped error should unwrap to *AppError")
	}
	if appErr.Message == "" {
		t.Error("AppError message should not be empty")
	}
}

func TestDuplicateEmailNamesTheEmail(t *testing.T) {
	err := DuplicateEmail("a@x.com")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Error("DuplicateEmail() should match ErrDuplicateEmail")
	}
	if err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
	if want := "email a@x.com already exists, please use another email"; err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
}

func TestInvalidCredentialsIsGeneric(t *testing.T) {
	err := InvalidCredentials()
	if err.Message != "invalid username or password" {
		t.Errorf("InvalidCredentials() message should not hint at which factor failed, got %q", err.Message)
	}
}
