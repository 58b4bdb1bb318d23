package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tuanvq/soundrise/internal/apperror"
	"github.com/tuanvq/soundrise/internal/model"
	"github.com/tuanvq/soundrise/internal/repository"
)

// PlaylistStore implements repository.PlaylistRepository.
type PlaylistStore struct {
	conn *sql.DB
}

var _ repository.PlaylistRepository = (*PlaylistStore)(nil)

const playlistSelect = `
	SELECT p.id, p.title, p.is_public, p.user_id, p.created_at, p.updated_at,
	       u.id, u.email, u.name, u.role, u.type, u.is_verify, u.address,
	       u.avatar, u.gender, u.age
	FROM playlists p
	JOIN users u ON u.id = p.user_id`

func (s *PlaylistStore) Create(ctx context.Context, playlist *model.Playlist) error {
	now := time.Now().UTC()
	playlist.CreatedAt = now
	playlist.UpdatedAt = now

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO playlists (title, is_public, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		playlist.Title,
		playlist.IsPublic,
		playlist.UserID,
		playlist.CreatedAt,
		playlist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting playlist: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted playlist id: %w", err)
	}
	playlist.ID = id
	return nil
}

func (s *PlaylistStore) GetByID(ctx context.Context, id int64) (*model.Playlist, error) {
	row := s.conn.QueryRowContext(ctx,
		playlistSelect+` WHERE p.id = ? AND p.is_deleted = 0`, id)
	playlist, err := scanPlaylist(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("playlist", id)
		}
		return nil, fmt.Errorf("sqlite: getting playlist %d: %w", id, err)
	}
	return playlist, nil
}

func (s *PlaylistStore) Update(ctx context.Context, playlist *model.Playlist) error {
	playlist.UpdatedAt = time.Now().UTC()
	res, err := s.conn.ExecContext(ctx,
		`UPDATE playlists SET title = ?, is_public = ?, updated_at = ?
		 WHERE id = ? AND is_deleted = 0`,
		playlist.Title,
		playlist.IsPublic,
		playlist.UpdatedAt,
		playlist.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating playlist %d: %w", playlist.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating playlist %d: %w", playlist.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("playlist", playlist.ID)
	}
	return nil
}

func (s *PlaylistStore) SoftDelete(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res, err := s.conn.ExecContext(ctx,
		`UPDATE playlists SET is_deleted = 1, deleted_at = ? WHERE id = ? AND is_deleted = 0`,
		now, id)
	if err != nil {
		return fmt.Errorf("sqlite: soft-deleting playlist %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: soft-deleting playlist %d: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("playlist", id)
	}
	return nil
}

func (s *PlaylistStore) List(ctx context.Context, opts repository.ListOptions) ([]model.Playlist, int, error) {
	return s.listWhere(ctx, opts, "", nil)
}

func (s *PlaylistStore) ListByUser(ctx context.Context, userID int64, opts repository.ListOptions) ([]model.Playlist, int, error) {
	return s.listWhere(ctx, opts, "AND p.user_id = ?", []any{userID})
}

// ReplaceTracks swaps the playlist's track set inside one transaction, so a
// failed insert never leaves the playlist half-updated.
func (s *PlaylistStore) ReplaceTracks(ctx context.Context, playlistID int64, trackIDs []int64) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning track-replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM playlist_tracks WHERE playlist_id = ?`, playlistID); err != nil {
		return fmt.Errorf("sqlite: clearing playlist %d tracks: %w", playlistID, err)
	}
	for _, trackID := range trackIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO playlist_tracks (playlist_id, track_id) VALUES (?, ?)`,
			playlistID, trackID); err != nil {
			return fmt.Errorf("sqlite: adding track %d to playlist %d: %w", trackID, playlistID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing track-replace: %w", err)
	}
	return nil
}

func (s *PlaylistStore) GetTracks(ctx context.Context, playlistID int64) ([]model.Track, error) {
	rows, err := s.conn.QueryContext(ctx,
		trackSelect+`
		 JOIN playlist_tracks pt ON pt.track_id = t.id
		 WHERE pt.playlist_id = ? AND t.is_deleted = 0
		 ORDER BY t.created_at DESC`,
		playlistID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing playlist %d tracks: %w", playlistID, err)
	}
	defer rows.Close()
	return collectTracks(rows)
}

func (s *PlaylistStore) listWhere(ctx context.Context, opts repository.ListOptions, extraWhere string, args []any) ([]model.Playlist, int, error) {
	opts = opts.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM playlists p WHERE p.is_deleted = 0 ` + extraWhere
	if err := s.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting playlists: %w", err)
	}

	query := playlistSelect + ` WHERE p.is_deleted = 0 ` + extraWhere +
		` ORDER BY p.created_at DESC LIMIT ? OFFSET ?`
	rows, err := s.conn.QueryContext(ctx, query, append(args, opts.PageSize, opts.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing playlists: %w", err)
	}
	defer rows.Close()

	var playlists []model.Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning playlist: %w", err)
		}
		playlists = append(playlists, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating playlists: %w", err)
	}
	return playlists, total, nil
}

func scanPlaylist(row scanner) (*model.Playlist, error) {
	var (
		p      model.Playlist
		u      model.User
		userID int64
	)
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.IsPublic,
		&p.UserID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&userID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.Type,
		&u.IsVerify,
		&u.Address,
		&u.Avatar,
		&u.Gender,
		&u.Age,
	)
	if err != nil {
		return nil, err
	}
	u.ID = userID
	view := u.View()
	p.Owner = &view
	return &p, nil
}
