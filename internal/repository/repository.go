// Package repository declares the storage interfaces the services depend on.
// The sqlite subpackage is the concrete implementation; tests substitute
// in-memory fakes.
package repository

import (
	"context"

	"github.com/tuanvq/soundrise/internal/model"
)

// ListOptions is 1-based pagination as exposed by the API
// (?current=&pageSize=).
type ListOptions struct {
	Current  int
	PageSize int
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Normalize clamps the options into a usable range.
func (o ListOptions) Normalize() ListOptions {
	if o.Current < 1 {
		o.Current = 1
	}
	if o.PageSize < 1 {
		o.PageSize = DefaultPageSize
	}
	if o.PageSize > MaxPageSize {
		o.PageSize = MaxPageSize
	}
	return o
}

// Offset converts the 1-based page into a row offset.
func (o ListOptions) Offset() int {
	return (o.Current - 1) * o.PageSize
}

// UserRepository is the User store the session core consumes.
//
// Create must surface a unique-email violation as apperror.ErrDuplicateEmail:
// the storage-level uniqueness constraint is the true arbiter for concurrent
// registrations, not the service's check-then-insert.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, opts ListOptions) ([]model.User, int, error)
	ListAll(ctx context.Context) ([]model.User, error)
}

type TrackRepository interface {
	Create(ctx context.Context, track *model.Track) error
	GetByID(ctx context.Context, id int64) (*model.Track, error)
	// GetByURL looks up a live track by its stored filename; used to reject
	// duplicate uploads.
	GetByURL(ctx context.Context, trackURL string) (*model.Track, error)
	List(ctx context.Context, opts ListOptions) ([]model.Track, int, error)
	ListByUploader(ctx context.Context, uploaderID int64, opts ListOptions) ([]model.Track, int, error)
	ListTop(ctx context.Context, category string, limit int) ([]model.Track, error)
	Search(ctx context.Context, title string, opts ListOptions) ([]model.Track, int, error)
	Update(ctx context.Context, track *model.Track) error
	SoftDelete(ctx context.Context, id int64) error
	// IncrementPlayCount bumps count_play by one.
	IncrementPlayCount(ctx context.Context, id int64) error
	// AdjustLikeCount adds delta to count_like, clamped at zero.
	AdjustLikeCount(ctx context.Context, id int64, delta int) error
}

type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	GetByID(ctx context.Context, id int64) (*model.Playlist, error)
	Update(ctx context.Context, playlist *model.Playlist) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, opts ListOptions) ([]model.Playlist, int, error)
	ListByUser(ctx context.Context, userID int64, opts ListOptions) ([]model.Playlist, int, error)
	// ReplaceTracks swaps the playlist's whole track set.
	ReplaceTracks(ctx context.Context, playlistID int64, trackIDs []int64) error
	GetTracks(ctx context.Context, playlistID int64) ([]model.Track, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	List(ctx context.Context, opts ListOptions) ([]model.Comment, int, error)
	ListByTrack(ctx context.Context, trackID int64, opts ListOptions) ([]model.Comment, int, error)
	SoftDelete(ctx context.Context, id int64) error
}

type LikeRepository interface {
	// Get returns the like row for (userID, trackID), or ErrNotFound.
	Get(ctx context.Context, userID, trackID int64) (*model.Like, error)
	Create(ctx context.Context, like *model.Like) error
	Delete(ctx context.Context, userID, trackID int64) error
	// ListTracksByUser returns the live tracks the user has liked.
	ListTracksByUser(ctx context.Context, userID int64, opts ListOptions) ([]model.Track, int, error)
}

type FileRepository interface {
	Create(ctx context.Context, file *model.StoredFile) error
	GetByID(ctx context.Context, id int64) (*model.StoredFile, error)
	ListByUser(ctx context.Context, userID int64, opts ListOptions) ([]model.StoredFile, int, error)
	Delete(ctx context.Context, id int64) error
}
