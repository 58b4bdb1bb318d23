package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/tuanvq/soundrise/internal/apperror"
	"github.com/tuanvq/soundrise/internal/model"
	"github.com/tuanvq/soundrise/internal/repository"
)

func TestCommentCreateAndListByTrack(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "commenter@example.com")
	track := createTestTrack(t, db, user.ID, "Discussed", "discussed.mp3")

	comment := &model.Comment{
		Content: "great drop at 1:30",
		Moment:  90,
		UserID:  user.ID,
		TrackID: track.ID,
	}
	if err := db.Comments().Create(context.Background(), comment); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if comment.ID == 0 {
		t.Error("Create() did not set comment.ID")
	}

	comments, total, err := db.Comments().ListByTrack(context.Background(), track.ID, repository.ListOptions{})
	if err != nil {
		t.Fatalf("ListByTrack() error = %v", err)
	}
	if total != 1 || len(comments) != 1 {
		t.Fatalf("ListByTrack() total = %d len = %d, want 1 and 1", total, len(comments))
	}
	if comments[0].Moment != 90 {
		t.Errorf("moment = %d, want 90", comments[0].Moment)
	}
	if comments[0].Author == nil || comments[0].Author.Email != user.Email {
		t.Error("ListByTrack() did not join the author")
	}
}

func TestCommentSoftDelete(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "commenter@example.com")
	track := createTestTrack(t, db, user.ID, "Discussed", "discussed.mp3")

	comment := &model.Comment{Content: "bye", UserID: user.ID, TrackID: track.ID}
	if err := db.Comments().Create(context.Background(), comment); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := db.Comments().SoftDelete(context.Background(), comment.ID); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}
	if _, err := db.Comments().GetByID(context.Background(), comment.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetByID() after soft delete error = %v, want ErrNotFound", err)
	}

	_, total, err := db.Comments().ListByTrack(context.Background(), track.ID, repository.ListOptions{})
	if err != nil {
		t.Fatalf("ListByTrack() error = %v", err)
	}
	if total != 0 {
		t.Errorf("ListByTrack() total = %d, want 0 after delete", total)
	}
}
