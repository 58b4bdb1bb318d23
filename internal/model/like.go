package model

import "time"

// Like records that a user liked a track. At most one row exists per
// (user, track) pair; the tracks.count_like counter is adjusted whenever a
// row is created or removed.
type Like struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	TrackID   int64     `json:"trackId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
