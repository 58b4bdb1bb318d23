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

// LikeStore implements repository.LikeRepository.
type LikeStore struct {
	conn *sql.DB
}

var _ repository.LikeRepository = (*LikeStore)(nil)

func (s *LikeStore) Get(ctx context.Context, userID, trackID int64) (*model.Like, error) {
	var like model.Like
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, user_id, track_id, created_at, updated_at
		 FROM likes WHERE user_id = ? AND track_id = ?`,
		userID, trackID).
		Scan(&like.ID, &like.UserID, &like.TrackID, &like.CreatedAt, &like.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("like", trackID)
		}
		return nil, fmt.Errorf("sqlite: getting like for user %d track %d: %w", userID, trackID, err)
	}
	return &like, nil
}

func (s *LikeStore) Create(ctx context.Context, like *model.Like) error {
	now := time.Now().UTC()
	like.CreatedAt = now
	like.UpdatedAt = now

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO likes (user_id, track_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		like.UserID, like.TrackID, like.CreatedAt, like.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sqlite: inserting like: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted like id: %w", err)
	}
	like.ID = id
	return nil
}

func (s *LikeStore) Delete(ctx context.Context, userID, trackID int64) error {
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM likes WHERE user_id = ? AND track_id = ?`, userID, trackID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting like for user %d track %d: %w", userID, trackID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting like for user %d track %d: %w", userID, trackID, err)
	}
	if affected == 0 {
		return apperror.NotFound("like", trackID)
	}
	return nil
}

func (s *LikeStore) ListTracksByUser(ctx context.Context, userID int64, opts repository.ListOptions) ([]model.Track, int, error) {
	opts = opts.Normalize()

	var total int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes l
		 JOIN tracks t ON t.id = l.track_id
		 WHERE l.user_id = ? AND t.is_deleted = 0`,
		userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting liked tracks: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx,
		trackSelect+`
		 JOIN likes l ON l.track_id = t.id
		 WHERE l.user_id = ? AND t.is_deleted = 0
		 ORDER BY l.created_at DESC LIMIT ? OFFSET ?`,
		userID, opts.PageSize, opts.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing liked tracks: %w", err)
	}
	defer rows.Close()

	tracks, err := collectTracks(rows)
	if err != nil {
		return nil, 0, err
	}
	return tracks, total, nil
}
