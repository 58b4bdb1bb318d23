package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tuanvq/soundrise/internal/apperror"
	"github.com/tuanvq/soundrise/internal/auth"
	"github.com/tuanvq/soundrise/internal/repository"
)

// identity pulls the verified claims the auth middleware stored on the
// request. Protected routes always have them; a miss means the route was
// wired without the middleware and is treated as an auth failure, not a
// crash.
func identity(r *http.Request) (*auth.Claims, error) {
	claims, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return nil, apperror.InvalidToken()
	}
	return claims, nil
}

// pathID parses the named numeric URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.ValidationFailed(name, "must be a positive integer id")
	}
	return id, nil
}

// listOptions reads pagination from the query string. Out-of-range values
// are clamped later by Normalize, so parsing is forgiving here.
func listOptions(r *http.Request) repository.ListOptions {
	q := r.URL.Query()
	current, _ := strconv.Atoi(q.Get("current"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	return repository.ListOptions{Current: current, PageSize: pageSize}.Normalize()
}
