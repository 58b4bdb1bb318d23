package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/tuanvq/soundrise/internal/apperror"
	"github.com/tuanvq/soundrise/internal/model"
	"github.com/tuanvq/soundrise/internal/repository"
)

func TestLikeCreateGetDelete(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "fan@example.com")
	track := createTestTrack(t, db, user.ID, "Catchy", "catchy.mp3")

	if _, err := db.Likes().Get(context.Background(), user.ID, track.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Get() before create error = %v, want ErrNotFound", err)
	}

	like := &model.Like{UserID: user.ID, TrackID: track.ID}
	if err := db.Likes().Create(context.Background(), like); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if like.ID == 0 {
		t.Error("Create() did not set like.ID")
	}

	got, err := db.Likes().Get(context.Background(), user.ID, track.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TrackID != track.ID {
		t.Errorf("Get() track id = %d, want %d", got.TrackID, track.ID)
	}

	if err := db.Likes().Delete(context.Background(), user.ID, track.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := db.Likes().Get(context.Background(), user.ID, track.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestLikeListTracksByUser(t *testing.T) {
	db := newTestDB(t)
	fan := createTestUser(t, db, "fan@example.com")
	other := createTestUser(t, db, "other@example.com")

	liked := createTestTrack(t, db, fan.ID, "Liked", "liked.mp3")
	skipped := createTestTrack(t, db, fan.ID, "Skipped", "skipped.mp3")
	_ = skipped

	if err := db.Likes().Create(context.Background(), &model.Like{UserID: fan.ID, TrackID: liked.ID}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tracks, total, err := db.Likes().ListTracksByUser(context.Background(), fan.ID, repository.ListOptions{})
	if err != nil {
		t.Fatalf("ListTracksByUser() error = %v", err)
	}
	if total != 1 || len(tracks) != 1 {
		t.Fatalf("ListTracksByUser() total = %d len = %d, want 1 and 1", total, len(tracks))
	}
	if tracks[0].ID != liked.ID {
		t.Errorf("ListTracksByUser() track = %q, want %q", tracks[0].Title, "Liked")
	}

	_, total, err = db.Likes().ListTracksByUser(context.Background(), other.ID, repository.ListOptions{})
	if err != nil {
		t.Fatalf("ListTracksByUser(other) error = %v", err)
	}
	if total != 0 {
		t.Errorf("ListTracksByUser(other) total = %d, want 0", total)
	}
}

func TestLikeListTracksByUser_SkipsDeletedTracks(t *testing.T) {
	db := newTestDB(t)
	fan := createTestUser(t, db, "fan@example.com")
	track := createTestTrack(t, db, fan.ID, "Ephemeral", "ephemeral.mp3")

	if err := db.Likes().Create(context.Background(), &model.Like{UserID: fan.ID, TrackID: track.ID}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := db.Tracks().SoftDelete(context.Background(), track.ID); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}

	_, total, err := db.Likes().ListTracksByUser(context.Background(), fan.ID, repository.ListOptions{})
	if err != nil {
		t.Fatalf("ListTracksByUser() error = %v", err)
	}
	if total != 0 {
		t.Errorf("ListTracksByUser() total = %d, want 0 after track delete", total)
	}
}
