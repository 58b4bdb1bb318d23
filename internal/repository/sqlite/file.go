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

// FileStore implements repository.FileRepository.
type FileStore struct {
	conn *sql.DB
}

var _ repository.FileRepository = (*FileStore)(nil)

func (s *FileStore) Create(ctx context.Context, file *model.StoredFile) error {
	file.CreatedAt = time.Now().UTC()

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO files (url, type, user_id, created_at) VALUES (?, ?, ?, ?)`,
		file.URL, file.Type, file.UserID, file.CreatedAt)
	if err != nil {
		return fmt.Errorf("sqlite: inserting file record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted file id: %w", err)
	}
	file.ID = id
	return nil
}

func (s *FileStore) GetByID(ctx context.Context, id int64) (*model.StoredFile, error) {
	var file model.StoredFile
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, url, type, user_id, created_at FROM files WHERE id = ?`, id).
		Scan(&file.ID, &file.URL, &file.Type, &file.UserID, &file.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("file", id)
		}
		return nil, fmt.Errorf("sqlite: getting file %d: %w", id, err)
	}
	return &file, nil
}

func (s *FileStore) ListByUser(ctx context.Context, userID int64, opts repository.ListOptions) ([]model.StoredFile, int, error) {
	opts = opts.Normalize()

	var total int
	if err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM files WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting files: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, url, type, user_id, created_at FROM files
		 WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		userID, opts.PageSize, opts.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing files: %w", err)
	}
	defer rows.Close()

	var files []model.StoredFile
	for rows.Next() {
		var file model.StoredFile
		if err := rows.Scan(&file.ID, &file.URL, &file.Type, &file.UserID, &file.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning file: %w", err)
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating files: %w", err)
	}
	return files, total, nil
}

func (s *FileStore) Delete(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting file %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting file %d: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("file", id)
	}
	return nil
}
