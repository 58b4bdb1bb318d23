package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tuanvq/soundrise/internal/apperror"
	"github.com/tuanvq/soundrise/internal/model"
	"github.com/tuanvq/soundrise/internal/repository"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "$2a$12$testhash",
		Name:         "Test User",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Email:        "alice@example.com",
		PasswordHash: "$2a$12$somehash",
		Name:         "Alice",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == 0 {
		t.Error("Create() did not set user.ID")
	}
	if user.Role != model.RoleUser {
		t.Errorf("Create() role = %q, want %q", user.Role, model.RoleUser)
	}
	if user.Type != model.ProviderSystem {
		t.Errorf("Create() type = %q, want %q", user.Type, model.ProviderSystem)
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "dup@example.com")

	dup := &model.User{Email: "dup@example.com", PasswordHash: "$2a$12$other"}
	err := db.Users().Create(context.Background(), dup)
	if !errors.Is(err, apperror.ErrDuplicateEmail) {
		t.Fatalf("Create() error = %v, want ErrDuplicateEmail", err)
	}

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatal("Create() error is not an *AppError")
	}
	if appErr.Field != "email" {
		t.Errorf("AppError.Field = %q, want %q", appErr.Field, "email")
	}
}

func TestUserGetByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "bob@example.com")

	got, err := db.Users().GetByEmail(context.Background(), "bob@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail() id = %d, want %d", got.ID, created.ID)
	}
	if got.PasswordHash != created.PasswordHash {
		t.Error("GetByEmail() did not return the password hash")
	}

	_, err = db.Users().GetByEmail(context.Background(), "missing@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetByEmail(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByID(context.Background(), 9999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserUpdate(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "carol@example.com")

	user.Name = "Carol Updated"
	user.Role = model.RoleAdmin
	user.IsVerify = true
	user.Age = 30
	if err := db.Users().Update(context.Background(), user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.Users().GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "Carol Updated" {
		t.Errorf("name = %q, want %q", got.Name, "Carol Updated")
	}
	if got.Role != model.RoleAdmin {
		t.Errorf("role = %q, want %q", got.Role, model.RoleAdmin)
	}
	if !got.IsVerify {
		t.Error("is_verify was not persisted")
	}
	if got.Age != 30 {
		t.Errorf("age = %d, want 30", got.Age)
	}
}

func TestUserUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	ghost := &model.User{ID: 4242, Email: "ghost@example.com"}
	err := db.Users().Update(context.Background(), ghost)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestUserDelete(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "gone@example.com")

	if err := db.Users().Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := db.Users().GetByID(context.Background(), user.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestUserList_Pagination(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 7; i++ {
		createTestUser(t, db, fmt.Sprintf("user%d@example.com", i))
	}

	users, total, err := db.Users().List(context.Background(), repository.ListOptions{Current: 1, PageSize: 5})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 7 {
		t.Errorf("List() total = %d, want 7", total)
	}
	if len(users) != 5 {
		t.Errorf("List() page 1 len = %d, want 5", len(users))
	}

	users, _, err = db.Users().List(context.Background(), repository.ListOptions{Current: 2, PageSize: 5})
	if err != nil {
		t.Fatalf("List() page 2 error = %v", err)
	}
	if len(users) != 2 {
		t.Errorf("List() page 2 len = %d, want 2", len(users))
	}
}
