// Package service contains the business logic layer. Handlers parse HTTP and
// delegate here; services validate, enforce permissions, and call the
// repositories. Services return apperror values, never HTTP status codes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/tuanvq/soundrise/internal/apperror"
	"github.com/tuanvq/soundrise/internal/auth"
	"github.com/tuanvq/soundrise/internal/model"
	"github.com/tuanvq/soundrise/internal/repository"
)

// RegisterInput carries the fields a new account may set at sign-up.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Age      int
	Gender   string
	Address  string
}

// LoginResult bundles a fresh token pair with the redacted user view
// handlers put in the response body.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         model.UserView
}

// RegisterResult is what Register returns. Login is nil when the caller
// asked for the bare account (the public register endpoint does not log the
// new user in).
type RegisterResult struct {
	User  *model.User
	Login *LoginResult
}

// SessionService implements authentication: password login, registration,
// social-identity reconciliation, and refresh-token rotation.
type SessionService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewSessionService(users repository.UserRepository, tokens *auth.TokenService, passwords *auth.PasswordService, logger *slog.Logger) *SessionService {
	return &SessionService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// VerifyCredentials checks an email/password pair. Every failure mode
// (unknown email, wrong password, social account with no usable password)
// returns the same InvalidCredentials error so responses never reveal
// whether an email is registered.
func (s *SessionService) VerifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, apperror.InvalidCredentials()
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.InvalidCredentials()
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.InvalidCredentials()
	}
	return user, nil
}

// Login issues a fresh token pair for an already-verified user.
func (s *SessionService) Login(ctx context.Context, user *model.User) (*LoginResult, error) {
	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID, "provider", user.Type)
	return &LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user.View(),
	}, nil
}

// Register creates a SYSTEM account. When returnRaw is true the caller gets
// the bare user and no session; otherwise a token pair is issued as well.
// A concurrent registration of the same email loses at the database's
// unique constraint and surfaces as DuplicateEmail.
func (s *SessionService) Register(ctx context.Context, in RegisterInput, returnRaw bool) (*RegisterResult, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email is required")
	}
	if len(in.Password) < 6 {
		return nil, apperror.ValidationFailed("password", "password must be at least 6 characters")
	}
	if in.Age < 0 {
		return nil, apperror.ValidationFailed("age", "age must not be negative")
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperror.DuplicateEmail(in.Email)
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
		Role:         model.RoleUser,
		Type:         model.ProviderSystem,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)

	result := &RegisterResult{User: user}
	if returnRaw {
		return result, nil
	}

	login, err := s.Login(ctx, user)
	if err != nil {
		return nil, err
	}
	result.Login = login
	return result, nil
}

// GetAccount returns the redacted view of the authenticated user. A token
// for an account that has since been deleted yields NotFound.
func (s *SessionService) GetAccount(ctx context.Context, userID int64) (*model.UserView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := user.View()
	return &view, nil
}

// Refresh validates a refresh token and rotates it: the caller gets a brand
// new access/refresh pair built from the user's current database state, so
// role or profile changes take effect at the next refresh. The old refresh
// token is not revoked; it stays valid until its own expiry.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, apperror.InvalidToken()
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		// The account behind the token is gone; treat the token as dead.
		return nil, apperror.InvalidToken()
	}

	return s.Login(ctx, user)
}

// SocialMedia logs a user in through an external identity provider. The
// caller has already authenticated the user with the provider; this method
// reconciles the identity with the local account store:
//
//   - no account for the email: create one, verified, with a password
//     placeholder that can never pass bcrypt verification
//   - account exists: mark it verified and record the provider, writing
//     only when something actually changes
//
// Either way the user ends up with a fresh session.
func (s *SessionService) SocialMedia(ctx context.Context, provider model.Provider, email string) (*LoginResult, error) {
	if provider != model.ProviderGitHub && provider != model.ProviderGoogle {
		return nil, apperror.ValidationFailed("type", "unsupported social provider")
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("username", "a valid email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.Type != provider || !user.IsVerify {
			user.Type = provider
			user.IsVerify = true
			if err := s.users.Update(ctx, user); err != nil {
				return nil, err
			}
		}
	case errors.Is(err, apperror.ErrNotFound):
		name := email
		if at := strings.Index(email, "@"); at > 0 {
			name = email[:at]
		}
		user = &model.User{
			Email:        email,
			PasswordHash: auth.PasswordPlaceholder,
			Name:         name,
			Role:         model.RoleUser,
			Type:         provider,
			IsVerify:     true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("social account created", "user_id", user.ID, "provider", provider)
	default:
		return nil, err
	}

	return s.Login(ctx, user)
}

// PromoteToAdmin grants the ADMIN role to the account with the given email
// and marks it verified. Used at startup to bootstrap the configured
// administrator.
func (s *SessionService) PromoteToAdmin(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return err
	}
	if user.Role == model.RoleAdmin && user.IsVerify {
		return nil
	}
	user.Role = model.RoleAdmin
	user.IsVerify = true
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info("user promoted to admin", "user_id", user.ID)
	return nil
}
