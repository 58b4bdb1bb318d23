package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/tuanvq/soundrise/internal/apperror"
	"github.com/tuanvq/soundrise/internal/auth"
	"github.com/tuanvq/soundrise/internal/model"
	"github.com/tuanvq/soundrise/internal/repository"
)

// mockUserRepo is an in-memory repository.UserRepository. Tests exercise
// the service logic without a database.
type mockUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperror.DuplicateEmail(user.Email)
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if user.Type == "" {
		user.Type = model.ProviderSystem
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, opts repository.ListOptions) ([]model.User, int, error) {
	all, _ := m.ListAll(context.Background())
	opts = opts.Normalize()
	total := len(all)
	if opts.Offset() >= total {
		return nil, total, nil
	}
	all = all[opts.Offset():]
	if len(all) > opts.PageSize {
		all = all[:opts.PageSize]
	}
	return all, total, nil
}

func (m *mockUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	result := make([]model.User, 0, len(m.users))
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSessionService(t *testing.T) (*SessionService, *mockUserRepo) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-0123456789", "soundrise-test", time.Hour)
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}
	repo := newMockUserRepo()
	// Minimum bcrypt cost keeps the tests fast.
	svc := NewSessionService(repo, tokens, auth.NewPasswordServiceWithCost(4), testLogger())
	return svc, repo
}

func registerTestUser(t *testing.T, svc *SessionService, email, password string) *model.User {
	t.Helper()
	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: password,
		Name:     "Test User",
	}, true)
	if err != nil {
		t.Fatalf("failed to register test user: %v", err)
	}
	return result.User
}

func TestRegister(t *testing.T) {
	svc, _ := newTestSessionService(t)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Alice@Example.com",
		Password: "secret123",
		Name:     "Alice",
		Age:      25,
	}, true)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if result.User.ID == 0 {
		t.Error("Register() did not assign an id")
	}
	if result.User.Email != "alice@example.com" {
		t.Errorf("Register() email = %q, want lowercased", result.User.Email)
	}
	if result.User.PasswordHash == "secret123" {
		t.Error("Register() stored the plaintext password")
	}
	if result.Login != nil {
		t.Error("Register(returnRaw) issued a session")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestSessionService(t)
	registerTestUser(t, svc, "dup@example.com", "secret123")

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "dup@example.com",
		Password: "secret456",
	}, true)
	if !errors.Is(err, apperror.ErrDuplicateEmail) {
		t.Fatalf("Register() error = %v, want ErrDuplicateEmail", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestSessionService(t)

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"missing email", RegisterInput{Password: "secret123"}},
		{"bad email", RegisterInput{Email: "not-an-email", Password: "secret123"}},
		{"short password", RegisterInput{Email: "a@b.com", Password: "123"}},
		{"negative age", RegisterInput{Email: "a@b.com", Password: "secret123", Age: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.in, true)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestVerifyCredentials(t *testing.T) {
	svc, _ := newTestSessionService(t)
	registerTestUser(t, svc, "bob@example.com", "secret123")

	user, err := svc.VerifyCredentials(context.Background(), "bob@example.com", "secret123")
	if err != nil {
		t.Fatalf("VerifyCredentials() error = %v", err)
	}
	if user.Email != "bob@example.com" {
		t.Errorf("VerifyCredentials() email = %q", user.Email)
	}
}

func TestVerifyCredentials_UniformFailure(t *testing.T) {
	svc, _ := newTestSessionService(t)
	registerTestUser(t, svc, "bob@example.com", "secret123")

	// Unknown email and wrong password must be indistinguishable.
	cases := []struct {
		name            string
		email, password string
	}{
		{"unknown email", "nobody@example.com", "secret123"},
		{"wrong password", "bob@example.com", "wrong"},
		{"empty password", "bob@example.com", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.VerifyCredentials(context.Background(), tc.email, tc.password)
			if !errors.Is(err, apperror.ErrInvalidCredentials) {
				t.Fatalf("VerifyCredentials() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestLogin_IssuesTokenPair(t *testing.T) {
	svc, _ := newTestSessionService(t)
	user := registerTestUser(t, svc, "carol@example.com", "secret123")

	result, err := svc.Login(context.Background(), user)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("Login() returned empty tokens")
	}
	if result.AccessToken == result.RefreshToken {
		t.Error("Login() access and refresh tokens are identical")
	}
	if result.User.Email != user.Email {
		t.Errorf("Login() user view email = %q", result.User.Email)
	}
}

func TestRefresh_RotatesWithoutRevocation(t *testing.T) {
	svc, _ := newTestSessionService(t)
	user := registerTestUser(t, svc, "dave@example.com", "secret123")

	login, err := svc.Login(context.Background(), user)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	first, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("first Refresh() error = %v", err)
	}
	if first.AccessToken == "" || first.RefreshToken == "" {
		t.Fatal("Refresh() returned empty tokens")
	}

	// The old refresh token was not revoked, so a replay still works.
	second, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("second Refresh() of the same token error = %v", err)
	}
	if second.AccessToken == "" {
		t.Fatal("second Refresh() returned an empty access token")
	}
}

func TestRefresh_PicksUpRoleChange(t *testing.T) {
	svc, repo := newTestSessionService(t)
	user := registerTestUser(t, svc, "erin@example.com", "secret123")

	login, err := svc.Login(context.Background(), user)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := svc.PromoteToAdmin(context.Background(), "erin@example.com"); err != nil {
		t.Fatalf("PromoteToAdmin() error = %v", err)
	}

	result, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if result.User.Role != model.RoleAdmin {
		t.Errorf("Refresh() role = %q, want %q after promotion", result.User.Role, model.RoleAdmin)
	}

	stored, _ := repo.GetByID(context.Background(), user.ID)
	if stored.Role != model.RoleAdmin {
		t.Errorf("stored role = %q, want %q", stored.Role, model.RoleAdmin)
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	svc, _ := newTestSessionService(t)

	cases := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Refresh(context.Background(), tc.token)
			if !errors.Is(err, apperror.ErrInvalidToken) {
				t.Fatalf("Refresh() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestRefresh_DeletedUser(t *testing.T) {
	svc, repo := newTestSessionService(t)
	user := registerTestUser(t, svc, "frank@example.com", "secret123")

	login, err := svc.Login(context.Background(), user)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := repo.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	if !errors.Is(err, apperror.ErrInvalidToken) {
		t.Fatalf("Refresh() after delete error = %v, want ErrInvalidToken", err)
	}
}

func TestGetAccount(t *testing.T) {
	svc, repo := newTestSessionService(t)
	user := registerTestUser(t, svc, "grace@example.com", "secret123")

	view, err := svc.GetAccount(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if view.Email != user.Email {
		t.Errorf("GetAccount() email = %q", view.Email)
	}

	if err := repo.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, err = svc.GetAccount(context.Background(), user.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetAccount() after delete error = %v, want ErrNotFound", err)
	}
}

func TestSocialMedia_CreatesVerifiedAccount(t *testing.T) {
	svc, repo := newTestSessionService(t)

	result, err := svc.SocialMedia(context.Background(), model.ProviderGitHub, "hank@example.com")
	if err != nil {
		t.Fatalf("SocialMedia() error = %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("SocialMedia() returned empty tokens")
	}
	if result.User.Name != "hank" {
		t.Errorf("SocialMedia() name = %q, want local part of email", result.User.Name)
	}

	stored, err := repo.GetByEmail(context.Background(), "hank@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if !stored.IsVerify {
		t.Error("social account was not marked verified")
	}
	if stored.Type != model.ProviderGitHub {
		t.Errorf("stored type = %q, want %q", stored.Type, model.ProviderGitHub)
	}
	if stored.PasswordHash != auth.PasswordPlaceholder {
		t.Error("social account did not get the password placeholder")
	}

	// The placeholder must never verify as a real password.
	_, err = svc.VerifyCredentials(context.Background(), "hank@example.com", auth.PasswordPlaceholder)
	if !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("VerifyCredentials(placeholder) error = %v, want ErrInvalidCredentials", err)
	}
}

func TestSocialMedia_SecondLoginReusesAccount(t *testing.T) {
	svc, repo := newTestSessionService(t)

	if _, err := svc.SocialMedia(context.Background(), model.ProviderGoogle, "ivy@example.com"); err != nil {
		t.Fatalf("first SocialMedia() error = %v", err)
	}
	if _, err := svc.SocialMedia(context.Background(), model.ProviderGoogle, "ivy@example.com"); err != nil {
		t.Fatalf("second SocialMedia() error = %v", err)
	}

	all, _ := repo.ListAll(context.Background())
	if len(all) != 1 {
		t.Fatalf("SocialMedia() twice created %d accounts, want 1", len(all))
	}
}

func TestSocialMedia_ReconcilesSystemAccount(t *testing.T) {
	svc, repo := newTestSessionService(t)
	user := registerTestUser(t, svc, "judy@example.com", "secret123")

	if _, err := svc.SocialMedia(context.Background(), model.ProviderGitHub, "judy@example.com"); err != nil {
		t.Fatalf("SocialMedia() error = %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), user.ID)
	if stored.Type != model.ProviderGitHub {
		t.Errorf("type = %q, want %q after social login", stored.Type, model.ProviderGitHub)
	}
	if !stored.IsVerify {
		t.Error("account was not marked verified after social login")
	}

	// The original password still works; reconciliation keeps the hash.
	if _, err := svc.VerifyCredentials(context.Background(), "judy@example.com", "secret123"); err != nil {
		t.Fatalf("VerifyCredentials() after reconciliation error = %v", err)
	}
}

func TestSocialMedia_RejectsUnknownProvider(t *testing.T) {
	svc, _ := newTestSessionService(t)

	_, err := svc.SocialMedia(context.Background(), model.Provider("FACEBOOK"), "k@example.com")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("SocialMedia() error = %v, want ErrValidation", err)
	}
	_, err = svc.SocialMedia(context.Background(), model.ProviderSystem, "k@example.com")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("SocialMedia(SYSTEM) error = %v, want ErrValidation", err)
	}
}

func TestPromoteToAdmin_SetsRoleAndVerified(t *testing.T) {
	svc, repo := newTestSessionService(t)
	user := registerTestUser(t, svc, "boss@example.com", "secret123")
	if user.IsVerify {
		t.Fatal("password registration should not be auto-verified")
	}

	if err := svc.PromoteToAdmin(context.Background(), "boss@example.com"); err != nil {
		t.Fatalf("PromoteToAdmin() error = %v", err)
	}

	promoted, err := repo.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if promoted.Role != model.RoleAdmin {
		t.Errorf("role = %q, want ADMIN", promoted.Role)
	}
	if !promoted.IsVerify {
		t.Error("promotion did not mark the account verified")
	}
}

func TestPromoteToAdmin_UnknownEmail(t *testing.T) {
	svc, _ := newTestSessionService(t)

	err := svc.PromoteToAdmin(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("PromoteToAdmin() error = %v, want ErrNotFound", err)
	}
}

func TestSessionEmailNormalization(t *testing.T) {
	svc, _ := newTestSessionService(t)
	registerTestUser(t, svc, "Mixed@Example.COM", "secret123")

	if _, err := svc.VerifyCredentials(context.Background(), "  mixed@example.com ", "secret123"); err != nil {
		t.Fatalf("VerifyCredentials() with unnormalized email error = %v", err)
	}

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    strings.ToUpper("mixed@example.com"),
		Password: "secret123",
	}, true)
	if !errors.Is(err, apperror.ErrDuplicateEmail) {
		t.Fatalf("Register() with case-variant email error = %v, want ErrDuplicateEmail", err)
	}
}
