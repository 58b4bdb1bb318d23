package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tuanvq/soundrise/internal/apperror"
	"github.com/tuanvq/soundrise/internal/auth"
	"github.com/tuanvq/soundrise/internal/model"
	"github.com/tuanvq/soundrise/internal/repository"
)

// LikeService implements the like toggle and the caller's liked-track list.
type LikeService struct {
	likes  repository.LikeRepository
	tracks repository.TrackRepository
	logger *slog.Logger
}

func NewLikeService(likes repository.LikeRepository, tracks repository.TrackRepository, logger *slog.Logger) *LikeService {
	return &LikeService{likes: likes, tracks: tracks, logger: logger}
}

// Toggle flips the caller's like on a track and keeps the track's
// denormalized like counter in step: liking adds one, unliking removes one.
// It returns true when the track ends up liked.
func (s *LikeService) Toggle(ctx context.Context, actor *auth.Claims, trackID int64) (bool, error) {
	userID, err := actor.UserID()
	if err != nil {
		return false, apperror.InvalidToken()
	}
	if _, err := s.tracks.GetByID(ctx, trackID); err != nil {
		return false, err
	}

	_, err = s.likes.Get(ctx, userID, trackID)
	switch {
	case err == nil:
		if err := s.likes.Delete(ctx, userID, trackID); err != nil {
			return false, err
		}
		if err := s.tracks.AdjustLikeCount(ctx, trackID, -1); err != nil {
			return false, err
		}
		return false, nil
	case errors.Is(err, apperror.ErrNotFound):
		like := &model.Like{UserID: userID, TrackID: trackID}
		if err := s.likes.Create(ctx, like); err != nil {
			return false, err
		}
		if err := s.tracks.AdjustLikeCount(ctx, trackID, 1); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

// ListMine returns a page of the tracks the caller has liked.
func (s *LikeService) ListMine(ctx context.Context, actor *auth.Claims, opts repository.ListOptions) ([]model.Track, int, error) {
	userID, err := actor.UserID()
	if err != nil {
		return nil, 0, apperror.InvalidToken()
	}
	return s.likes.ListTracksByUser(ctx, userID, opts)
}
