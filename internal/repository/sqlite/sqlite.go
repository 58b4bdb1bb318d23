// Package sqlite implements the repository interfaces on SQLite via the
// pure-Go modernc.org/sqlite driver, so the server needs no external
// database process and cross-compiles anywhere Go does.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB owns the sql.DB pool and hands out the per-entity stores.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath (use ":memory:" in tests) and runs
// migrations. WAL mode keeps reads concurrent with writes; foreign keys are
// off by default in SQLite and must be switched on.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the user store.
func (db *DB) Users() *UserStore { return &UserStore{conn: db.conn} }

// Tracks returns the track store.
func (db *DB) Tracks() *TrackStore { return &TrackStore{conn: db.conn} }

// Playlists returns the playlist store.
func (db *DB) Playlists() *PlaylistStore { return &PlaylistStore{conn: db.conn} }

// Comments returns the comment store.
func (db *DB) Comments() *CommentStore { return &CommentStore{conn: db.conn} }

// Likes returns the like store.
func (db *DB) Likes() *LikeStore { return &LikeStore{conn: db.conn} }

// Files returns the uploaded-file metadata store.
func (db *DB) Files() *FileStore { return &FileStore{conn: db.conn} }

func (db *DB) migrate() error {
	// The users.email UNIQUE index is the arbiter for concurrent
	// registrations of the same email: the application's check-then-insert
	// has a race window, the constraint does not.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name          TEXT NOT NULL DEFAULT '',
			role          TEXT NOT NULL DEFAULT 'USER',
			type          TEXT NOT NULL DEFAULT 'SYSTEM',
			is_verify     INTEGER NOT NULL DEFAULT 0,
			address       TEXT NOT NULL DEFAULT '',
			avatar        TEXT NOT NULL DEFAULT '',
			gender        TEXT NOT NULL DEFAULT 'other',
			age           INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS tracks (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			track_url   TEXT NOT NULL,
			img_url     TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL DEFAULT '',
			count_like  INTEGER NOT NULL DEFAULT 0,
			count_play  INTEGER NOT NULL DEFAULT 0,
			uploader_id INTEGER NOT NULL REFERENCES users(id),
			is_deleted  INTEGER NOT NULL DEFAULT 0,
			deleted_at  DATETIME,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tracks_uploader ON tracks(uploader_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tracks_category ON tracks(category)`,
		`CREATE TABLE IF NOT EXISTS playlists (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			title      TEXT NOT NULL,
			is_public  INTEGER NOT NULL DEFAULT 1,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			is_deleted INTEGER NOT NULL DEFAULT 0,
			deleted_at DATETIME,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS playlist_tracks (
			playlist_id INTEGER NOT NULL REFERENCES playlists(id),
			track_id    INTEGER NOT NULL REFERENCES tracks(id),
			PRIMARY KEY (playlist_id, track_id)
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			content    TEXT NOT NULL,
			moment     INTEGER NOT NULL DEFAULT 0,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			track_id   INTEGER NOT NULL REFERENCES tracks(id),
			is_deleted INTEGER NOT NULL DEFAULT 0,
			deleted_at DATETIME,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_track ON comments(track_id)`,
		`CREATE TABLE IF NOT EXISTS likes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			track_id   INTEGER NOT NULL REFERENCES tracks(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, track_id)
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			url        TEXT NOT NULL,
			type       TEXT NOT NULL,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_user ON files(user_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite surfaces these as driver errors carrying the SQLite
// message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
