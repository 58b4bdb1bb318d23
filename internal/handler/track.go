package handler

import (
	"log/slog"
	"net/http"

	"github.com/tuanvq/soundrise/internal/repository"
	"github.com/tuanvq/soundrise/internal/service"
)

// TrackHandler serves the track catalogue: publishing, browsing, search,
// play counting, and the per-track comment feed.
type TrackHandler struct {
	tracks   *service.TrackService
	comments *service.CommentService
	logger   *slog.Logger
}

func NewTrackHandler(tracks *service.TrackService, comments *service.CommentService, logger *slog.Logger) *TrackHandler {
	return &TrackHandler{tracks: tracks, comments: comments, logger: logger}
}

type createTrackRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TrackURL    string `json:"trackUrl"`
	ImgURL      string `json:"imgUrl"`
	Category    string `json:"category"`
}

// HandleCreate publishes an uploaded file as a track.
//
// POST /api/tracks
func (h *TrackHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createTrackRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	track, err := h.tracks.Create(r.Context(), claims, service.CreateTrackInput{
		Title:       req.Title,
		Description: req.Description,
		TrackURL:    req.TrackURL,
		ImgURL:      req.ImgURL,
		Category:    req.Category,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "Create a new track", track)
}

// HandleGet returns one track with its uploader.
//
// GET /api/tracks/{id}
func (h *TrackHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	track, err := h.tracks.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Fetch track by id", track)
}

// HandleList returns a page of live tracks.
//
// GET /api/tracks
func (h *TrackHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)
	tracks, total, err := h.tracks.List(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Fetch tracks with pagination",
		NewPage(opts.Current, opts.PageSize, total, tracks))
}

type topTracksRequest struct {
	Category string `json:"category"`
	Limit    int    `json:"limit"`
}

// HandleTop returns a category's most played tracks.
//
// POST /api/tracks/top
func (h *TrackHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	var req topTracksRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	tracks, err := h.tracks.ListTop(r.Context(), req.Category, req.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Get Top Track by categories", tracks)
}

type searchTracksRequest struct {
	Title    string `json:"title"`
	Current  int    `json:"current"`
	PageSize int    `json:"pageSize"`
}

// HandleSearch matches tracks by title substring.
//
// POST /api/tracks/search
func (h *TrackHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchTracksRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	opts := repository.ListOptions{Current: req.Current, PageSize: req.PageSize}.Normalize()
	tracks, total, err := h.tracks.Search(r.Context(), req.Title, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Get Search of tracks",
		NewPage(opts.Current, opts.PageSize, total, tracks))
}

type trackRefRequest struct {
	TrackID int64 `json:"trackId"`
}

// HandleIncreaseView bumps a track's play counter.
//
// POST /api/tracks/increase-view
func (h *TrackHandler) HandleIncreaseView(w http.ResponseWriter, r *http.Request) {
	var req trackRefRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.tracks.IncreaseView(r.Context(), req.TrackID); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Increase view/play for track", "ok")
}

type trackCommentsRequest struct {
	TrackID  int64 `json:"trackId"`
	Current  int   `json:"current"`
	PageSize int   `json:"pageSize"`
}

// HandleComments returns a page of a track's comments.
//
// POST /api/tracks/comments
func (h *TrackHandler) HandleComments(w http.ResponseWriter, r *http.Request) {
	var req trackCommentsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	opts := repository.ListOptions{Current: req.Current, PageSize: req.PageSize}.Normalize()
	comments, total, err := h.comments.ListByTrack(r.Context(), req.TrackID, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Get Comments of a track",
		NewPage(opts.Current, opts.PageSize, total, comments))
}

type tracksByUserRequest struct {
	ID       int64 `json:"id"`
	Current  int   `json:"current"`
	PageSize int   `json:"pageSize"`
}

// HandleByUser lists the tracks a given user uploaded.
//
// POST /api/tracks/users
func (h *TrackHandler) HandleByUser(w http.ResponseWriter, r *http.Request) {
	var req tracksByUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	opts := repository.ListOptions{Current: req.Current, PageSize: req.PageSize}.Normalize()
	tracks, total, err := h.tracks.ListByUploader(r.Context(), req.ID, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Get Track created by a user",
		NewPage(opts.Current, opts.PageSize, total, tracks))
}

// HandleMine lists the caller's own uploads.
//
// GET /api/tracks/users
func (h *TrackHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
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
	opts := listOptions(r)
	tracks, total, err := h.tracks.ListByUploader(r.Context(), userID, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Get Track created by a user",
		NewPage(opts.Current, opts.PageSize, total, tracks))
}

type updateTrackRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImgURL      *string `json:"imgUrl"`
	Category    *string `json:"category"`
}

// HandlePatch updates a track's metadata.
//
// PATCH /api/tracks/{id}
func (h *TrackHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
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
	var req updateTrackRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	track, err := h.tracks.Update(r.Context(), claims, service.UpdateTrackInput{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		ImgURL:      req.ImgURL,
		Category:    req.Category,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Update a track by id", track)
}

// HandleDelete soft-deletes a track.
//
// DELETE /api/tracks/{id}
func (h *TrackHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.tracks.Delete(r.Context(), claims, id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Delete a track", map[string]int{"deleted": 1})
}
