package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tuanvq/soundrise/internal/apperror"
	"github.com/tuanvq/soundrise/internal/auth"
	"github.com/tuanvq/soundrise/internal/model"
	"github.com/tuanvq/soundrise/internal/repository"
)

// CommentService manages timestamped comments on tracks.
type CommentService struct {
	comments repository.CommentRepository
	tracks   repository.TrackRepository
	logger   *slog.Logger
}

func NewCommentService(comments repository.CommentRepository, tracks repository.TrackRepository, logger *slog.Logger) *CommentService {
	return &CommentService{comments: comments, tracks: tracks, logger: logger}
}

// Create posts a comment anchored at moment seconds into a live track.
func (s *CommentService) Create(ctx context.Context, actor *auth.Claims, trackID int64, content string, moment int) (*model.Comment, error) {
	authorID, err := actor.UserID()
	if err != nil {
		return nil, apperror.InvalidToken()
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment content is required")
	}
	if moment < 0 {
		return nil, apperror.ValidationFailed("moment", "moment must not be negative")
	}
	if _, err := s.tracks.GetByID(ctx, trackID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		Content: content,
		Moment:  moment,
		UserID:  authorID,
		TrackID: trackID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) List(ctx context.Context, opts repository.ListOptions) ([]model.Comment, int, error) {
	return s.comments.List(ctx, opts)
}

// ListByTrack returns a page of a track's comments with their authors.
func (s *CommentService) ListByTrack(ctx context.Context, trackID int64, opts repository.ListOptions) ([]model.Comment, int, error) {
	if _, err := s.tracks.GetByID(ctx, trackID); err != nil {
		return nil, 0, err
	}
	return s.comments.ListByTrack(ctx, trackID, opts)
}

// Delete soft-deletes a comment. Only its author or an administrator may
// remove it.
func (s *CommentService) Delete(ctx context.Context, actor *auth.Claims, id int64) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	actorID, err := actor.UserID()
	if err != nil {
		return apperror.InvalidToken()
	}
	if actor.Role != model.RoleAdmin && comment.UserID != actorID {
		return apperror.Forbidden("you can only delete your own comments")
	}

	if err := s.comments.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("comment deleted", "comment_id", id)
	return nil
}
