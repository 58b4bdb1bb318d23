package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tuanvq/soundrise/internal/apperror"
	"github.com/tuanvq/soundrise/internal/model"
	"github.com/tuanvq/soundrise/internal/repository"
)

// TrackStore implements repository.TrackRepository.
// Every read joins the uploader so list responses can embed the redacted
// uploader view, mirroring what clients expect from a track payload.
type TrackStore struct {
	conn *sql.DB
}

var _ repository.TrackRepository = (*TrackStore)(nil)

const trackSelect = `
	SELECT t.id, t.title, t.description, t.track_url, t.img_url, t.category,
	       t.count_like, t.count_play, t.uploader_id, t.created_at, t.updated_at,
	       u.id, u.email, u.name, u.role, u.type, u.is_verify, u.address,
	       u.avatar, u.gender, u.age
	FROM tracks t
	JOIN users u ON u.id = t.uploader_id`

func (s *TrackStore) Create(ctx context.Context, track *model.Track) error {
	now := time.Now().UTC()
	track.CreatedAt = now
	track.UpdatedAt = now

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO tracks (title, description, track_url, img_url, category,
			uploader_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		track.Title,
		track.Description,
		track.TrackURL,
		track.ImgURL,
		track.Category,
		track.UploaderID,
		track.CreatedAt,
		track.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting track: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted track id: %w", err)
	}
	track.ID = id
	return nil
}

func (s *TrackStore) GetByID(ctx context.Context, id int64) (*model.Track, error) {
	row := s.conn.QueryRowContext(ctx,
		trackSelect+` WHERE t.id = ? AND t.is_deleted = 0`, id)
	track, err := scanTrack(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("track", id)
		}
		return nil, fmt.Errorf("sqlite: getting track %d: %w", id, err)
	}
	return track, nil
}

func (s *TrackStore) GetByURL(ctx context.Context, trackURL string) (*model.Track, error) {
	row := s.conn.QueryRowContext(ctx,
		trackSelect+` WHERE t.track_url = ? AND t.is_deleted = 0`, trackURL)
	track, err := scanTrack(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("track", trackURL)
		}
		return nil, fmt.Errorf("sqlite: getting track by url %s: %w", trackURL, err)
	}
	return track, nil
}

func (s *TrackStore) List(ctx context.Context, opts repository.ListOptions) ([]model.Track, int, error) {
	return s.listWhere(ctx, opts, "", nil)
}

func (s *TrackStore) ListByUploader(ctx context.Context, uploaderID int64, opts repository.ListOptions) ([]model.Track, int, error) {
	return s.listWhere(ctx, opts, "AND t.uploader_id = ?", []any{uploaderID})
}

// ListTop returns the most-played live tracks of a category.
func (s *TrackStore) ListTop(ctx context.Context, category string, limit int) ([]model.Track, error) {
	if limit < 1 {
		limit = repository.DefaultPageSize
	}
	rows, err := s.conn.QueryContext(ctx,
		trackSelect+` WHERE t.is_deleted = 0 AND t.category = ?
		 ORDER BY t.count_play DESC LIMIT ?`,
		category, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing top tracks: %w", err)
	}
	defer rows.Close()
	return collectTracks(rows)
}

// Search does a case-insensitive substring match on the title.
func (s *TrackStore) Search(ctx context.Context, title string, opts repository.ListOptions) ([]model.Track, int, error) {
	pattern := "%" + strings.ToLower(title) + "%"
	return s.listWhere(ctx, opts, "AND LOWER(t.title) LIKE ?", []any{pattern})
}

func (s *TrackStore) Update(ctx context.Context, track *model.Track) error {
	track.UpdatedAt = time.Now().UTC()
	res, err := s.conn.ExecContext(ctx,
		`UPDATE tracks SET title = ?, description = ?, track_url = ?,
			img_url = ?, category = ?, updated_at = ?
		 WHERE id = ? AND is_deleted = 0`,
		track.Title,
		track.Description,
		track.TrackURL,
		track.ImgURL,
		track.Category,
		track.UpdatedAt,
		track.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating track %d: %w", track.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating track %d: %w", track.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("track", track.ID)
	}
	return nil
}

func (s *TrackStore) SoftDelete(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res, err := s.conn.ExecContext(ctx,
		`UPDATE tracks SET is_deleted = 1, deleted_at = ? WHERE id = ? AND is_deleted = 0`,
		now, id)
	if err != nil {
		return fmt.Errorf("sqlite: soft-deleting track %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: soft-deleting track %d: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("track", id)
	}
	return nil
}

func (s *TrackStore) IncrementPlayCount(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE tracks SET count_play = count_play + 1 WHERE id = ? AND is_deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing play count for track %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: incrementing play count for track %d: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("track", id)
	}
	return nil
}

func (s *TrackStore) AdjustLikeCount(ctx context.Context, id int64, delta int) error {
	// MAX keeps the counter from going negative if state ever drifts.
	res, err := s.conn.ExecContext(ctx,
		`UPDATE tracks SET count_like = MAX(0, count_like + ?) WHERE id = ? AND is_deleted = 0`,
		delta, id)
	if err != nil {
		return fmt.Errorf("sqlite: adjusting like count for track %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: adjusting like count for track %d: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("track", id)
	}
	return nil
}

func (s *TrackStore) listWhere(ctx context.Context, opts repository.ListOptions, extraWhere string, args []any) ([]model.Track, int, error) {
	opts = opts.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM tracks t WHERE t.is_deleted = 0 ` + extraWhere
	if err := s.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting tracks: %w", err)
	}

	query := trackSelect + ` WHERE t.is_deleted = 0 ` + extraWhere +
		` ORDER BY t.created_at DESC LIMIT ? OFFSET ?`
	rows, err := s.conn.QueryContext(ctx, query, append(args, opts.PageSize, opts.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing tracks: %w", err)
	}
	defer rows.Close()

	tracks, err := collectTracks(rows)
	if err != nil {
		return nil, 0, err
	}
	return tracks, total, nil
}

func scanTrack(row scanner) (*model.Track, error) {
	var (
		t      model.Track
		u      model.User
		userID int64
	)
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.TrackURL,
		&t.ImgURL,
		&t.Category,
		&t.CountLike,
		&t.CountPlay,
		&t.UploaderID,
		&t.CreatedAt,
		&t.UpdatedAt,
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
	t.Uploader = &view
	return &t, nil
}

func collectTracks(rows *sql.Rows) ([]model.Track, error) {
	var tracks []model.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning track: %w", err)
		}
		tracks = append(tracks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tracks: %w", err)
	}
	return tracks, nil
}
