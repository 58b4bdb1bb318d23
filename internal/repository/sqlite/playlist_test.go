package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/tuanvq/soundrise/internal/apperror"
	"github.com/tuanvq/soundrise/internal/model"
	"github.com/tuanvq/soundrise/internal/repository"
)

func createTestPlaylist(t *testing.T, db *DB, userID int64, title string) *model.Playlist {
	t.Helper()
	playlist := &model.Playlist{Title: title, IsPublic: true, UserID: userID}
	if err := db.Playlists().Create(context.Background(), playlist); err != nil {
		t.Fatalf("failed to create test playlist: %v", err)
	}
	return playlist
}

func TestPlaylistCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "owner@example.com")
	playlist := createTestPlaylist(t, db, user.ID, "Road Trip")

	got, err := db.Playlists().GetByID(context.Background(), playlist.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Road Trip" {
		t.Errorf("title = %q, want %q", got.Title, "Road Trip")
	}
	if got.Owner == nil || got.Owner.Email != user.Email {
		t.Error("GetByID() did not join the owner")
	}
}

func TestPlaylistUpdate(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "owner@example.com")
	playlist := createTestPlaylist(t, db, user.ID, "Before")

	playlist.Title = "After"
	playlist.IsPublic = false
	if err := db.Playlists().Update(context.Background(), playlist); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.Playlists().GetByID(context.Background(), playlist.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "After" || got.IsPublic {
		t.Errorf("got title=%q public=%v, want After and private", got.Title, got.IsPublic)
	}
}

func TestPlaylistSoftDelete(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "owner@example.com")
	playlist := createTestPlaylist(t, db, user.ID, "Doomed")

	if err := db.Playlists().SoftDelete(context.Background(), playlist.ID); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}
	if _, err := db.Playlists().GetByID(context.Background(), playlist.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetByID() after soft delete error = %v, want ErrNotFound", err)
	}
}

func TestPlaylistReplaceTracks(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "owner@example.com")
	playlist := createTestPlaylist(t, db, user.ID, "Mix")

	t1 := createTestTrack(t, db, user.ID, "One", "one.mp3")
	t2 := createTestTrack(t, db, user.ID, "Two", "two.mp3")
	t3 := createTestTrack(t, db, user.ID, "Three", "three.mp3")

	if err := db.Playlists().ReplaceTracks(context.Background(), playlist.ID, []int64{t1.ID, t2.ID}); err != nil {
		t.Fatalf("ReplaceTracks() error = %v", err)
	}
	tracks, err := db.Playlists().GetTracks(context.Background(), playlist.ID)
	if err != nil {
		t.Fatalf("GetTracks() error = %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("GetTracks() len = %d, want 2", len(tracks))
	}

	// Replace with a different set; the old membership is gone.
	if err := db.Playlists().ReplaceTracks(context.Background(), playlist.ID, []int64{t3.ID}); err != nil {
		t.Fatalf("ReplaceTracks() second error = %v", err)
	}
	tracks, err = db.Playlists().GetTracks(context.Background(), playlist.ID)
	if err != nil {
		t.Fatalf("GetTracks() error = %v", err)
	}
	if len(tracks) != 1 || tracks[0].ID != t3.ID {
		t.Fatalf("GetTracks() after replace = %d tracks, want just %q", len(tracks), "Three")
	}
}

func TestPlaylistGetTracks_SkipsDeletedTracks(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "owner@example.com")
	playlist := createTestPlaylist(t, db, user.ID, "Mix")

	kept := createTestTrack(t, db, user.ID, "Kept", "kept.mp3")
	gone := createTestTrack(t, db, user.ID, "Gone", "gone.mp3")
	if err := db.Playlists().ReplaceTracks(context.Background(), playlist.ID, []int64{kept.ID, gone.ID}); err != nil {
		t.Fatalf("ReplaceTracks() error = %v", err)
	}

	if err := db.Tracks().SoftDelete(context.Background(), gone.ID); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}

	tracks, err := db.Playlists().GetTracks(context.Background(), playlist.ID)
	if err != nil {
		t.Fatalf("GetTracks() error = %v", err)
	}
	if len(tracks) != 1 || tracks[0].ID != kept.ID {
		t.Fatalf("GetTracks() = %d tracks, want just the live one", len(tracks))
	}
}

func TestPlaylistListByUser(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	createTestPlaylist(t, db, alice.ID, "Alice One")
	createTestPlaylist(t, db, alice.ID, "Alice Two")
	createTestPlaylist(t, db, bob.ID, "Bob One")

	playlists, total, err := db.Playlists().ListByUser(context.Background(), alice.ID, repository.ListOptions{})
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if total != 2 || len(playlists) != 2 {
		t.Errorf("ListByUser() total = %d len = %d, want 2 and 2", total, len(playlists))
	}
}
