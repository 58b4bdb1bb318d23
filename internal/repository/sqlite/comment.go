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

// CommentStore implements repository.CommentRepository.
type CommentStore struct {
	conn *sql.DB
}

var _ repository.CommentRepository = (*CommentStore)(nil)

const commentSelect = `
	SELECT c.id, c.content, c.moment, c.user_id, c.track_id, c.created_at,
	       u.id, u.email, u.name, u.role, u.type, u.is_verify, u.address,
	       u.avatar, u.gender, u.age
	FROM comments c
	JOIN users u ON u.id = c.user_id`

func (s *CommentStore) Create(ctx context.Context, comment *model.Comment) error {
	comment.CreatedAt = time.Now().UTC()

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO comments (content, moment, user_id, track_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		comment.Content,
		comment.Moment,
		comment.UserID,
		comment.TrackID,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted comment id: %w", err)
	}
	comment.ID = id
	return nil
}

func (s *CommentStore) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	row := s.conn.QueryRowContext(ctx,
		commentSelect+` WHERE c.id = ? AND c.is_deleted = 0`, id)
	comment, err := scanComment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %d: %w", id, err)
	}
	return comment, nil
}

func (s *CommentStore) List(ctx context.Context, opts repository.ListOptions) ([]model.Comment, int, error) {
	return s.listWhere(ctx, opts, "", nil)
}

func (s *CommentStore) ListByTrack(ctx context.Context, trackID int64, opts repository.ListOptions) ([]model.Comment, int, error) {
	return s.listWhere(ctx, opts, "AND c.track_id = ?", []any{trackID})
}

func (s *CommentStore) SoftDelete(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res, err := s.conn.ExecContext(ctx,
		`UPDATE comments SET is_deleted = 1, deleted_at = ? WHERE id = ? AND is_deleted = 0`,
		now, id)
	if err != nil {
		return fmt.Errorf("sqlite: soft-deleting comment %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: soft-deleting comment %d: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}

func (s *CommentStore) listWhere(ctx context.Context, opts repository.ListOptions, extraWhere string, args []any) ([]model.Comment, int, error) {
	opts = opts.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM comments c WHERE c.is_deleted = 0 ` + extraWhere
	if err := s.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting comments: %w", err)
	}

	query := commentSelect + ` WHERE c.is_deleted = 0 ` + extraWhere +
		` ORDER BY c.created_at DESC LIMIT ? OFFSET ?`
	rows, err := s.conn.QueryContext(ctx, query, append(args, opts.PageSize, opts.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing comments: %w", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning comment: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, total, nil
}

func scanComment(row scanner) (*model.Comment, error) {
	var (
		c      model.Comment
		u      model.User
		userID int64
	)
	err := row.Scan(
		&c.ID,
		&c.Content,
		&c.Moment,
		&c.UserID,
		&c.TrackID,
		&c.CreatedAt,
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
	c.Author = &view
	return &c, nil
}
