package model

import "time"

// Track represents an uploaded piece of audio.
//
// TrackURL is the stored filename of the audio file under the upload root,
// unique among live (non-deleted) tracks. CountLike and CountPlay are
// denormalized counters maintained by the like and increase-view operations.
//
// Tracks are soft-deleted: IsDeleted flips instead of removing the row, and
// every read path filters deleted rows out.
type Track struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TrackURL    string     `json:"trackUrl"`
	ImgURL      string     `json:"imgUrl"`
	Category    string     `json:"category"`
	CountLike   int        `json:"countLike"`
	CountPlay   int        `json:"countPlay"`
	UploaderID  int64      `json:"-"`
	Uploader    *UserView  `json:"uploader,omitempty"`
	IsDeleted   bool       `json:"-"`
	DeletedAt   *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
