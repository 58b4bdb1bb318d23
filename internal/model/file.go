package model

import "time"

// StoredFile is the metadata row written for every successful upload.
// URL is the public path the file is served from (/public/tracks/... or
// /public/images/...); Type records the upload target ("tracks" or "images").
type StoredFile struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Type      string    `json:"type"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
