package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tuanvq/soundrise/internal/auth"
	"github.com/tuanvq/soundrise/internal/model"
	"github.com/tuanvq/soundrise/internal/service"
)

const refreshCookieName = "refresh_token"

// AuthHandler serves login, registration, session refresh, and social login.
type AuthHandler struct {
	sessions *service.SessionService
	// secureCookies marks the refresh cookie Secure; enabled in production
	// where the service sits behind TLS.
	secureCookies bool
	logger        *slog.Logger
}

func NewAuthHandler(sessions *service.SessionService, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, secureCookies: secureCookies, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionData struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         model.UserView `json:"user"`
}

// HandleLogin verifies a password login and opens a session.
//
// POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.sessions.VerifyCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.sessions.Login(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken)
	writeData(w, http.StatusCreated, "User Login", sessionData{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         result.User,
	})
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
	Address  string `json:"address"`
}

// HandleRegister creates an account. The response deliberately exposes only
// the new id and creation time; the client logs in separately.
//
// POST /api/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.sessions.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Age:      req.Age,
		Gender:   req.Gender,
		Address:  req.Address,
	}, true)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, "Register a new user", map[string]string{
		"_id":       result.User.View().ID,
		"createdAt": result.User.CreatedAt.Format(time.RFC3339),
	})
}

// HandleAccount returns the authenticated user's current profile, read from
// the store rather than the token snapshot.
//
// GET /api/auth/account
func (h *AuthHandler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	claims, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := h.sessions.GetAccount(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Get user information", map[string]any{"user": view})
}

// HandleRefresh rotates the session from the refresh cookie. No Bearer
// token is required; the cookie is the credential.
//
// POST /api/auth/refresh
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorEnvelope{
			StatusCode: http.StatusUnauthorized,
			Message:    "Refresh token not found",
			Error:      http.StatusText(http.StatusUnauthorized),
		})
		return
	}

	result, err := h.sessions.Refresh(r.Context(), cookie.Value)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken)
	writeData(w, http.StatusCreated, "Get User by refresh token", sessionData{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         result.User,
	})
}

// HandleLogout clears the refresh cookie. Previously issued tokens stay
// valid until expiry; logout is a client-side affair.
//
// POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearRefreshCookie(w)
	writeData(w, http.StatusCreated, "Logout User", "ok")
}

type socialMediaRequest struct {
	Type     model.Provider `json:"type"`
	Username string         `json:"username"`
}

// HandleSocialMedia opens a session for an externally authenticated
// identity, creating or reconciling the local account.
//
// POST /api/auth/social-media
func (h *AuthHandler) HandleSocialMedia(w http.ResponseWriter, r *http.Request) {
	var req socialMediaRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.sessions.SocialMedia(r.Context(), req.Type, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setRefreshCookie(w, result.RefreshToken)
	writeData(w, http.StatusCreated, "Fetch tokens for user login with social media account", sessionData{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         result.User,
	})
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.RefreshTokenTTL / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
