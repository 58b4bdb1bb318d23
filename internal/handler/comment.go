package handler

import (
	"log/slog"
	"net/http"

	"github.com/tuanvq/soundrise/internal/service"
)

// CommentHandler serves track comments.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type createCommentRequest struct {
	Content string `json:"content"`
	Moment  int    `json:"moment"`
	TrackID int64  `json:"track"`
}

// HandleCreate posts a comment at a playback moment of a track.
//
// POST /api/comments
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createCommentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), claims, req.TrackID, req.Content, req.Moment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "Create a new comment", comment)
}

// HandleList returns a page of all comments.
//
// GET /api/comments
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)
	comments, total, err := h.comments.List(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Get all comments with paginate",
		NewPage(opts.Current, opts.PageSize, total, comments))
}

// HandleDelete soft-deletes a comment (author or administrator).
//
// DELETE /api/comments/{id}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.comments.Delete(r.Context(), claims, id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Delete a comment", map[string]int{"deleted": 1})
}
