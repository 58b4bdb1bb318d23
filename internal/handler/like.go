package handler

import (
	"log/slog"
	"net/http"

	"github.com/tuanvq/soundrise/internal/service"
)

// LikeHandler serves the like toggle and the caller's liked tracks.
type LikeHandler struct {
	likes  *service.LikeService
	logger *slog.Logger
}

func NewLikeHandler(likes *service.LikeService, logger *slog.Logger) *LikeHandler {
	return &LikeHandler{likes: likes, logger: logger}
}

type toggleLikeRequest struct {
	TrackID int64 `json:"track"`
}

// HandleToggle flips the caller's like on a track.
//
// POST /api/likes
func (h *LikeHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	claims, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req toggleLikeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	liked, err := h.likes.Toggle(r.Context(), claims, req.TrackID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "Like/Dislike a track", map[string]bool{"liked": liked})
}

// HandleListMine returns a page of the tracks the caller has liked.
//
// GET /api/likes
func (h *LikeHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	claims, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts := listOptions(r)
	tracks, total, err := h.likes.ListMine(r.Context(), claims, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Get liked tracks of a user",
		NewPage(opts.Current, opts.PageSize, total, tracks))
}
