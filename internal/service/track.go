package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tuanvq/soundrise/internal/apperror"
	"github.com/tuanvq/soundrise/internal/auth"
	"github.com/tuanvq/soundrise/internal/model"
	"github.com/tuanvq/soundrise/internal/repository"
)

// CreateTrackInput is the payload for publishing an uploaded audio file as
// a track. TrackURL and ImgURL are filenames previously returned by the
// upload endpoint, relative to their target directories.
type CreateTrackInput struct {
	Title       string
	Description string
	TrackURL    string
	ImgURL      string
	Category    string
}

// UpdateTrackInput carries the mutable track fields.
type UpdateTrackInput struct {
	ID          int64
	Title       *string
	Description *string
	ImgURL      *string
	Category    *string
}

// TrackService manages the track catalogue.
type TrackService struct {
	tracks     repository.TrackRepository
	uploadRoot string
	logger     *slog.Logger
}

// NewTrackService wires the store and the upload root used to verify that a
// published track refers to a file that actually exists on disk.
func NewTrackService(tracks repository.TrackRepository, uploadRoot string, logger *slog.Logger) *TrackService {
	return &TrackService{tracks: tracks, uploadRoot: uploadRoot, logger: logger}
}

// Create publishes a track. The referenced audio file must exist under the
// upload root, and no live track may already claim the same file.
func (s *TrackService) Create(ctx context.Context, actor *auth.Claims, in CreateTrackInput) (*model.Track, error) {
	uploaderID, err := actor.UserID()
	if err != nil {
		return nil, apperror.InvalidToken()
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperror.ValidationFailed("title", "track title is required")
	}
	in.TrackURL = strings.TrimSpace(in.TrackURL)
	if in.TrackURL == "" {
		return nil, apperror.ValidationFailed("trackUrl", "track file is required")
	}

	if _, err := os.Stat(filepath.Join(s.uploadRoot, "tracks", filepath.Base(in.TrackURL))); err != nil {
		return nil, apperror.ValidationFailed("trackUrl", "uploaded track file not found")
	}

	if _, err := s.tracks.GetByURL(ctx, in.TrackURL); err == nil {
		return nil, apperror.ValidationFailed("trackUrl", "a track already exists for this file")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	track := &model.Track{
		Title:       in.Title,
		Description: in.Description,
		TrackURL:    in.TrackURL,
		ImgURL:      in.ImgURL,
		Category:    in.Category,
		UploaderID:  uploaderID,
	}
	if err := s.tracks.Create(ctx, track); err != nil {
		return nil, err
	}

	s.logger.Info("track published", "track_id", track.ID, "uploader_id", uploaderID)
	return track, nil
}

func (s *TrackService) Get(ctx context.Context, id int64) (*model.Track, error) {
	return s.tracks.GetByID(ctx, id)
}

func (s *TrackService) List(ctx context.Context, opts repository.ListOptions) ([]model.Track, int, error) {
	return s.tracks.List(ctx, opts)
}

func (s *TrackService) ListByUploader(ctx context.Context, uploaderID int64, opts repository.ListOptions) ([]model.Track, int, error) {
	return s.tracks.ListByUploader(ctx, uploaderID, opts)
}

// ListTop returns a category's most played tracks.
func (s *TrackService) ListTop(ctx context.Context, category string, limit int) ([]model.Track, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, apperror.ValidationFailed("category", "category is required")
	}
	return s.tracks.ListTop(ctx, category, limit)
}

// Search matches live tracks by title substring, case-insensitively.
func (s *TrackService) Search(ctx context.Context, title string, opts repository.ListOptions) ([]model.Track, int, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, 0, apperror.ValidationFailed("title", "search title is required")
	}
	return s.tracks.Search(ctx, title, opts)
}

// IncreaseView bumps the play counter. Anyone can play a track, so there is
// no actor here.
func (s *TrackService) IncreaseView(ctx context.Context, id int64) error {
	return s.tracks.IncrementPlayCount(ctx, id)
}

// Update patches a track. Only the uploader or an administrator may edit.
func (s *TrackService) Update(ctx context.Context, actor *auth.Claims, in UpdateTrackInput) (*model.Track, error) {
	track, err := s.authorize(ctx, actor, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "track title is required")
		}
		track.Title = title
	}
	if in.Description != nil {
		track.Description = *in.Description
	}
	if in.ImgURL != nil {
		track.ImgURL = *in.ImgURL
	}
	if in.Category != nil {
		track.Category = *in.Category
	}

	if err := s.tracks.Update(ctx, track); err != nil {
		return nil, err
	}
	return track, nil
}

// Delete soft-deletes a track. The row and its counters survive for later
// restoration or audit; reads stop returning it immediately.
func (s *TrackService) Delete(ctx context.Context, actor *auth.Claims, id int64) error {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	if err := s.tracks.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("track deleted", "track_id", id)
	return nil
}

func (s *TrackService) authorize(ctx context.Context, actor *auth.Claims, trackID int64) (*model.Track, error) {
	track, err := s.tracks.GetByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	actorID, err := actor.UserID()
	if err != nil {
		return nil, apperror.InvalidToken()
	}
	if actor.Role != model.RoleAdmin && track.UploaderID != actorID {
		return nil, apperror.Forbidden("you can only modify your own tracks")
	}
	return track, nil
}
