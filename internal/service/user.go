package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tuanvq/soundrise/internal/apperror"
	"github.com/tuanvq/soundrise/internal/auth"
	"github.com/tuanvq/soundrise/internal/model"
	"github.com/tuanvq/soundrise/internal/repository"
)

// CreateUserInput is the admin user-creation payload.
type CreateUserInput struct {
	Email    string
	Password string
	Name     string
	Age      int
	Gender   string
	Address  string
	Role     model.Role
}

// UpdateUserInput carries the mutable profile fields. Pointer fields
// distinguish "not sent" from "set to zero value".
type UpdateUserInput struct {
	ID      int64
	Name    *string
	Age     *int
	Gender  *string
	Address *string
	Avatar  *string
	Role    *model.Role
}

// UserService handles user administration. Creation, listing by page, full
// updates, and deletion are admin operations; the handlers gate them on the
// caller's role through this service.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewUserService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *UserService {
	return &UserService{users: users, passwords: passwords, logger: logger}
}

// Create adds a user on behalf of an administrator. Non-admin callers are
// refused regardless of the payload.
func (s *UserService) Create(ctx context.Context, actor *auth.Claims, in CreateUserInput) (*model.User, error) {
	if actor.Role != model.RoleAdmin {
		return nil, apperror.Forbidden("only administrators can create users")
	}

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email is required")
	}
	if len(in.Password) < 6 {
		return nil, apperror.ValidationFailed("password", "password must be at least 6 characters")
	}
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	if role != model.RoleUser && role != model.RoleAdmin {
		return nil, apperror.ValidationFailed("role", "role must be USER or ADMIN")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Age:          in.Age,
		Gender:       in.Gender,
		Address:      in.Address,
		Role:         role,
		Type:         model.ProviderSystem,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created by admin", "user_id", user.ID, "admin_id", actor.Subject)
	return user, nil
}

// Get returns a single user's redacted view. This backs a public profile
// endpoint, so there is no actor check.
func (s *UserService) Get(ctx context.Context, id int64) (*model.UserView, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := user.View()
	return &view, nil
}

// List returns a page of users plus the total count.
func (s *UserService) List(ctx context.Context, actor *auth.Claims, opts repository.ListOptions) ([]model.UserView, int, error) {
	if actor.Role != model.RoleAdmin {
		return nil, 0, apperror.Forbidden("only administrators can list users")
	}
	users, total, err := s.users.List(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	return toUserViews(users), total, nil
}

// ListAll returns every user without pagination.
func (s *UserService) ListAll(ctx context.Context, actor *auth.Claims) ([]model.UserView, error) {
	if actor.Role != model.RoleAdmin {
		return nil, apperror.Forbidden("only administrators can list users")
	}
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toUserViews(users), nil
}

// Update patches a user's profile. Users may update themselves;
// administrators may update anyone, including the role field.
func (s *UserService) Update(ctx context.Context, actor *auth.Claims, in UpdateUserInput) (*model.UserView, error) {
	actorID, err := actor.UserID()
	if err != nil {
		return nil, apperror.InvalidToken()
	}
	isAdmin := actor.Role == model.RoleAdmin
	if !isAdmin && actorID != in.ID {
		return nil, apperror.Forbidden("you can only update your own profile")
	}

	user, err := s.users.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Age != nil {
		if *in.Age < 0 {
			return nil, apperror.ValidationFailed("age", "age must not be negative")
		}
		user.Age = *in.Age
	}
	if in.Gender != nil {
		user.Gender = *in.Gender
	}
	if in.Address != nil {
		user.Address = *in.Address
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if in.Role != nil {
		if !isAdmin {
			return nil, apperror.Forbidden("only administrators can change roles")
		}
		if *in.Role != model.RoleUser && *in.Role != model.RoleAdmin {
			return nil, apperror.ValidationFailed("role", "role must be USER or ADMIN")
		}
		user.Role = *in.Role
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	view := user.View()
	return &view, nil
}

// Delete removes an account. Only administrators may delete, and never
// themselves; an admin locked alone in the system must stay able to log in.
func (s *UserService) Delete(ctx context.Context, actor *auth.Claims, id int64) error {
	if actor.Role != model.RoleAdmin {
		return apperror.Forbidden("only administrators can delete users")
	}
	actorID, err := actor.UserID()
	if err != nil {
		return apperror.InvalidToken()
	}
	if actorID == id {
		return apperror.Forbidden("administrators cannot delete their own account")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id, "admin_id", actor.Subject)
	return nil
}

func toUserViews(users []model.User) []model.UserView {
	views := make([]model.UserView, len(users))
	for i := range users {
		views[i] = users[i].View()
	}
	return views
}
