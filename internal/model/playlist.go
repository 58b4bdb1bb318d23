package model

import "time"

// Playlist is a user-owned, optionally public collection of tracks.
// Membership lives in the playlist_tracks join table; updating a playlist's
// track list replaces the whole set. Playlists are soft-deleted.
type Playlist struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	IsPublic  bool       `json:"isPublic"`
	UserID    int64      `json:"-"`
	Owner     *UserView  `json:"user,omitempty"`
	IsDeleted bool       `json:"-"`
	DeletedAt *time.Time `json:"-"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
