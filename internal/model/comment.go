package model

import "time"

// Comment is a remark on a track. Moment is the playback offset (in seconds)
// the comment is anchored to. Comments are soft-deleted; only the author or
// an admin may delete one.
type Comment struct {
	ID        int64      `json:"id"`
	Content   string     `json:"content"`
	Moment    int        `json:"moment"`
	UserID    int64      `json:"-"`
	TrackID   int64      `json:"-"`
	Author    *UserView  `json:"user,omitempty"`
	IsDeleted bool       `json:"-"`
	DeletedAt *time.Time `json:"-"`
	CreatedAt time.Time  `json:"createdAt"`
}
