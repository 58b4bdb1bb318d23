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

// CreatePlaylistInput seeds a new playlist, optionally with an initial
// track membership.
type CreatePlaylistInput struct {
	Title    string
	IsPublic bool
	TrackIDs []int64
}

// UpdatePlaylistInput patches a playlist's metadata and, when TrackIDs is
// non-nil, replaces its track membership wholesale.
type UpdatePlaylistInput struct {
	ID       int64
	Title    *string
	IsPublic *bool
	TrackIDs []int64
}

// PlaylistService manages playlists and their track membership.
type PlaylistService struct {
	playlists repository.PlaylistRepository
	tracks    repository.TrackRepository
	logger    *slog.Logger
}

func NewPlaylistService(playlists repository.PlaylistRepository, tracks repository.TrackRepository, logger *slog.Logger) *PlaylistService {
	return &PlaylistService{playlists: playlists, tracks: tracks, logger: logger}
}

// CreateEmpty makes a playlist with no tracks, owned by the caller.
func (s *PlaylistService) CreateEmpty(ctx context.Context, actor *auth.Claims, title string, isPublic bool) (*model.Playlist, error) {
	ownerID, err := actor.UserID()
	if err != nil {
		return nil, apperror.InvalidToken()
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "playlist title is required")
	}

	playlist := &model.Playlist{Title: title, IsPublic: isPublic, UserID: ownerID}
	if err := s.playlists.Create(ctx, playlist); err != nil {
		return nil, err
	}
	s.logger.Info("playlist created", "playlist_id", playlist.ID, "owner_id", ownerID)
	return playlist, nil
}

// Create makes a playlist and, when TrackIDs is non-empty, seeds its
// membership after validating every id against a live track.
func (s *PlaylistService) Create(ctx context.Context, actor *auth.Claims, in CreatePlaylistInput) (*model.Playlist, error) {
	playlist, err := s.CreateEmpty(ctx, actor, in.Title, in.IsPublic)
	if err != nil {
		return nil, err
	}
	if len(in.TrackIDs) > 0 {
		for _, trackID := range in.TrackIDs {
			if _, err := s.tracks.GetByID(ctx, trackID); err != nil {
				return nil, err
			}
		}
		if err := s.playlists.ReplaceTracks(ctx, playlist.ID, dedupeIDs(in.TrackIDs)); err != nil {
			return nil, err
		}
	}
	return playlist, nil
}

func (s *PlaylistService) Get(ctx context.Context, id int64) (*model.Playlist, error) {
	return s.playlists.GetByID(ctx, id)
}

func (s *PlaylistService) List(ctx context.Context, opts repository.ListOptions) ([]model.Playlist, int, error) {
	return s.playlists.List(ctx, opts)
}

// ListMine returns the caller's own playlists, public and private alike.
func (s *PlaylistService) ListMine(ctx context.Context, actor *auth.Claims, opts repository.ListOptions) ([]model.Playlist, int, error) {
	ownerID, err := actor.UserID()
	if err != nil {
		return nil, 0, apperror.InvalidToken()
	}
	return s.playlists.ListByUser(ctx, ownerID, opts)
}

// GetTracks returns the live tracks of a playlist in membership order.
func (s *PlaylistService) GetTracks(ctx context.Context, id int64) ([]model.Track, error) {
	if _, err := s.playlists.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.playlists.GetTracks(ctx, id)
}

// Update patches metadata and membership. Only the owner or an
// administrator may touch a playlist. Each track id in a membership update
// must refer to a live track.
func (s *PlaylistService) Update(ctx context.Context, actor *auth.Claims, in UpdatePlaylistInput) (*model.Playlist, error) {
	playlist, err := s.authorize(ctx, actor, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "playlist title is required")
		}
		playlist.Title = title
	}
	if in.IsPublic != nil {
		playlist.IsPublic = *in.IsPublic
	}
	if err := s.playlists.Update(ctx, playlist); err != nil {
		return nil, err
	}

	if in.TrackIDs != nil {
		for _, trackID := range in.TrackIDs {
			if _, err := s.tracks.GetByID(ctx, trackID); err != nil {
				return nil, err
			}
		}
		if err := s.playlists.ReplaceTracks(ctx, playlist.ID, dedupeIDs(in.TrackIDs)); err != nil {
			return nil, err
		}
	}
	return playlist, nil
}

// Delete soft-deletes a playlist. Membership rows stay behind but are
// unreachable once the playlist is hidden.
func (s *PlaylistService) Delete(ctx context.Context, actor *auth.Claims, id int64) error {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	if err := s.playlists.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("playlist deleted", "playlist_id", id)
	return nil
}

func (s *PlaylistService) authorize(ctx context.Context, actor *auth.Claims, playlistID int64) (*model.Playlist, error) {
	playlist, err := s.playlists.GetByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	actorID, err := actor.UserID()
	if err != nil {
		return nil, apperror.InvalidToken()
	}
	if actor.Role != model.RoleAdmin && playlist.UserID != actorID {
		return nil, apperror.Forbidden("you can only modify your own playlists")
	}
	return playlist, nil
}

// dedupeIDs drops repeated ids while keeping first-seen order, so a sloppy
// client payload cannot violate the membership primary key.
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
