package handler

import (
	"log/slog"
	"net/http"

	"github.com/tuanvq/soundrise/internal/apperror"
	"github.com/tuanvq/soundrise/internal/service"
)

// FileHandler serves multipart uploads and the caller's file listing.
type FileHandler struct {
	uploads *service.UploadService
	logger  *slog.Logger
}

func NewFileHandler(uploads *service.UploadService, logger *slog.Logger) *FileHandler {
	return &FileHandler{uploads: uploads, logger: logger}
}

// HandleUpload stores one multipart file. The target_type header selects
// the destination (tracks or images) and the matching extension whitelist.
//
// POST /api/files/upload
func (h *FileHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	claims, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadSize+1)
	file, header, err := r.FormFile("fileUpload")
	if err != nil {
		writeError(w, apperror.ValidationFailed("fileUpload", "multipart field fileUpload is required"))
		return
	}
	defer file.Close()

	targetType := r.Header.Get("target_type")
	stored, err := h.uploads.Store(r.Context(), claims, targetType, header.Filename, header.Size, file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, "Upload Single File", map[string]string{
		"fileName": stored.URL,
	})
}

// HandleListMine returns a page of the caller's uploads.
//
// GET /api/files/my-files
func (h *FileHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	claims, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts := listOptions(r)
	files, total, err := h.uploads.ListMine(r.Context(), claims, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Fetch files of a user",
		NewPage(opts.Current, opts.PageSize, total, files))
}

// HandleDelete removes an upload's record and its file on disk.
//
// DELETE /api/files/{id}
func (h *FileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.uploads.Delete(r.Context(), claims, id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, "File deleted successfully", map[string]bool{"success": true})
}
