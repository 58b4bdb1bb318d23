package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"

	"github.com/tuanvq/soundrise/internal/apperror"
	"github.com/tuanvq/soundrise/internal/auth"
	"github.com/tuanvq/soundrise/internal/model"
	"github.com/tuanvq/soundrise/internal/repository"
)

// MaxUploadSize caps uploaded files at 50MB.
const MaxUploadSize = 50 << 20

// Upload targets and their accepted file extensions.
const (
	TargetTracks = "tracks"
	TargetImages = "images"
)

var allowedExtensions = map[string]map[string]bool{
	TargetTracks: {
		".mp3": true, ".wav": true, ".ogg": true, ".aac": true,
		".m4a": true, ".aiff": true, ".flac": true, ".opus": true,
		".3gp": true, ".mid": true, ".midi": true,
	},
	TargetImages: {
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	},
}

// UploadService stores uploaded files on disk under per-target directories
// and records their metadata.
type UploadService struct {
	files  repository.FileRepository
	root   string
	logger *slog.Logger
}

func NewUploadService(files repository.FileRepository, root string, logger *slog.Logger) *UploadService {
	return &UploadService{files: files, root: root, logger: logger}
}

// Store validates and persists one uploaded file. targetType selects the
// destination directory and extension whitelist. The stored name keeps the
// sanitized original base name plus a unique suffix, so two uploads of
// "song.mp3" never collide.
func (s *UploadService) Store(ctx context.Context, actor *auth.Claims, targetType, filename string, size int64, content io.Reader) (*model.StoredFile, error) {
	userID, err := actor.UserID()
	if err != nil {
		return nil, apperror.InvalidToken()
	}

	allowed, ok := allowedExtensions[targetType]
	if !ok {
		return nil, apperror.ValidationFailed("target_type", "target_type must be tracks or images")
	}
	if size > MaxUploadSize {
		return nil, apperror.ValidationFailed("fileUpload", "file exceeds the 50MB limit")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowed[ext] {
		return nil, apperror.ValidationFailed("fileUpload", fmt.Sprintf("file extension %q is not allowed for %s", ext, targetType))
	}

	storedName := uniqueName(filename, ext)
	dir := filepath.Join(s.root, targetType)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, storedName))
	if err != nil {
		return nil, fmt.Errorf("creating upload file: %w", err)
	}
	defer dst.Close()

	// LimitReader backstops the size check for clients that lie about
	// Content-Length.
	written, err := io.Copy(dst, io.LimitReader(content, MaxUploadSize+1))
	if err != nil {
		os.Remove(dst.Name())
		return nil, fmt.Errorf("writing upload file: %w", err)
	}
	if written > MaxUploadSize {
		os.Remove(dst.Name())
		return nil, apperror.ValidationFailed("fileUpload", "file exceeds the 50MB limit")
	}

	file := &model.StoredFile{
		URL:    storedName,
		Type:   targetType,
		UserID: userID,
	}
	if err := s.files.Create(ctx, file); err != nil {
		os.Remove(dst.Name())
		return nil, err
	}

	s.logger.Info("file uploaded", "file_id", file.ID, "type", targetType, "bytes", written)
	return file, nil
}

// ListMine returns a page of the caller's uploads.
func (s *UploadService) ListMine(ctx context.Context, actor *auth.Claims, opts repository.ListOptions) ([]model.StoredFile, int, error) {
	userID, err := actor.UserID()
	if err != nil {
		return nil, 0, apperror.InvalidToken()
	}
	return s.files.ListByUser(ctx, userID, opts)
}

// Delete removes an upload's metadata and its file on disk. Only the owner
// or an administrator may delete.
func (s *UploadService) Delete(ctx context.Context, actor *auth.Claims, id int64) error {
	file, err := s.files.GetByID(ctx, id)
	if err != nil {
		return err
	}
	actorID, err := actor.UserID()
	if err != nil {
		return apperror.InvalidToken()
	}
	if actor.Role != model.RoleAdmin && file.UserID != actorID {
		return apperror.Forbidden("you can only delete your own files")
	}

	if err := s.files.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.root, file.Type, filepath.Base(file.URL))); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove uploaded file from disk", "file_id", id, "error", err)
	}
	return nil
}

// uniqueName keeps the sanitized base name for readability and appends an
// xid so concurrent uploads of the same filename cannot clash.
func uniqueName(filename, ext string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = sanitizeName(base)
	if base == "" {
		base = "file"
	}
	return base + "-" + xid.New().String() + ext
}

// sanitizeName reduces a client-supplied name to lowercase letters, digits,
// and dashes. Anything else could escape the upload directory or break URLs.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == ' ' || r == '.':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
