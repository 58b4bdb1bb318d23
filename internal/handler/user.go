package handler

import (
	"log/slog"
	"net/http"

	"github.com/tuanvq/soundrise/internal/model"
	"github.com/tuanvq/soundrise/internal/service"
)

// UserHandler serves user administration and public profiles.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

type createUserRequest struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Name     string     `json:"name"`
	Age      int        `json:"age"`
	Gender   string     `json:"gender"`
	Address  string     `json:"address"`
	Role     model.Role `json:"role"`
}

// HandleCreate adds a user (administrators only).
//
// POST /api/users
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Create(r.Context(), claims, service.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Age:      req.Age,
		Gender:   req.Gender,
		Address:  req.Address,
		Role:     req.Role,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "Create a new User", user.View())
}

// HandleGet returns one user's public profile.
//
// GET /api/users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Fetch user by id", view)
}

// HandleList returns a page of users (administrators only).
//
// GET /api/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	claims, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts := listOptions(r)
	views, total, err := h.users.List(r.Context(), claims, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Fetch user with paginate",
		NewPage(opts.Current, opts.PageSize, total, views))
}

// HandleListAll returns every user without pagination (administrators only).
//
// GET /api/users/all
func (h *UserHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	claims, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	views, err := h.users.ListAll(r.Context(), claims)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Fetch all user without paginate", views)
}

type updateUserRequest struct {
	ID      int64       `json:"_id,string"`
	Name    *string     `json:"name"`
	Age     *int        `json:"age"`
	Gender  *string     `json:"gender"`
	Address *string     `json:"address"`
	Avatar  *string     `json:"avatar"`
	Role    *model.Role `json:"role"`
}

// HandlePatch updates a profile. The target id rides in the body; users may
// only patch themselves unless they are administrators.
//
// PATCH /api/users
func (h *UserHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	claims, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	view, err := h.users.Update(r.Context(), claims, service.UpdateUserInput{
		ID:      req.ID,
		Name:    req.Name,
		Age:     req.Age,
		Gender:  req.Gender,
		Address: req.Address,
		Avatar:  req.Avatar,
		Role:    req.Role,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Update a User", view)
}

// HandleDelete removes an account (administrators only, never their own).
//
// DELETE /api/users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	claims, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.Delete(r.Context(), claims, id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Delete a User", map[string]int{"deleted": 1})
}
