package handler

import (
	"log/slog"
	"net/http"

	"github.com/tuanvq/soundrise/internal/service"
)

// PlaylistHandler serves playlist CRUD and track membership.
type PlaylistHandler struct {
	playlists *service.PlaylistService
	logger    *slog.Logger
}

func NewPlaylistHandler(playlists *service.PlaylistService, logger *slog.Logger) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists, logger: logger}
}

type createPlaylistRequest struct {
	Title    string `json:"title"`
	IsPublic bool   `json:"isPublic"`
}

// HandleCreateEmpty makes a playlist with no tracks.
//
// POST /api/playlists/empty
func (h *PlaylistHandler) HandleCreateEmpty(w http.ResponseWriter, r *http.Request) {
	claims, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createPlaylistRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	playlist, err := h.playlists.CreateEmpty(r.Context(), claims, req.Title, req.IsPublic)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "Create an empty playlist", playlist)
}

type createFullPlaylistRequest struct {
	Title    string  `json:"title"`
	IsPublic bool    `json:"isPublic"`
	Tracks   []int64 `json:"tracks"`
}

// HandleCreate makes a playlist seeded with an initial set of tracks.
//
// POST /api/playlists
func (h *PlaylistHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createFullPlaylistRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	playlist, err := h.playlists.Create(r.Context(), claims, service.CreatePlaylistInput{
		Title:    req.Title,
		IsPublic: req.IsPublic,
		TrackIDs: req.Tracks,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "Create a new playlist", playlist)
}

// HandleGet returns one playlist with its owner.
//
// GET /api/playlists/{id}
func (h *PlaylistHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	playlist, err := h.playlists.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Fetch a playlists by id", playlist)
}

// HandleList returns a page of playlists.
//
// GET /api/playlists
func (h *PlaylistHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)
	playlists, total, err := h.playlists.List(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Fetch all playlists with pagination",
		NewPage(opts.Current, opts.PageSize, total, playlists))
}

// HandleMine lists the caller's own playlists.
//
// POST /api/playlists/by-user
func (h *PlaylistHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	claims, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts := listOptions(r)
	playlists, total, err := h.playlists.ListMine(r.Context(), claims, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Fetch playlists of a user",
		NewPage(opts.Current, opts.PageSize, total, playlists))
}

// HandleTracks lists the live tracks of a playlist.
//
// GET /api/playlists/{id}/tracks
func (h *PlaylistHandler) HandleTracks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	tracks, err := h.playlists.GetTracks(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Fetch a playlists by id", tracks)
}

type updatePlaylistRequest struct {
	ID       int64   `json:"id"`
	Title    *string `json:"title"`
	IsPublic *bool   `json:"isPublic"`
	TrackIDs []int64 `json:"tracks"`
}

// HandlePatch updates metadata and, when tracks is present, replaces the
// playlist's membership.
//
// PATCH /api/playlists
func (h *PlaylistHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	claims, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req updatePlaylistRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	playlist, err := h.playlists.Update(r.Context(), claims, service.UpdatePlaylistInput{
		ID:       req.ID,
		Title:    req.Title,
		IsPublic: req.IsPublic,
		TrackIDs: req.TrackIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Update a playlists", playlist)
}

// HandleDelete soft-deletes a playlist.
//
// DELETE /api/playlists/{id}
func (h *PlaylistHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.playlists.Delete(r.Context(), claims, id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Delete a playlists by id", map[string]int{"deleted": 1})
}
