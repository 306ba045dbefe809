package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
)

func TestReplyCreate(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice@example.com", "alice")
	comment := createTestComment(t, db, user, "parent")

	reply := &model.Reply{
		Content:   "a reply",
		UserID:    user.ID,
		Username:  user.Username,
		UserImage: user.Image,
		CommentID: comment.ID,
	}
	if err := db.Replies().Create(context.Background(), reply); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if reply.ID == "" {
		t.Error("Create() did not set reply.ID")
	}
	if reply.CreatedAt.IsZero() {
		t.Error("Create() did not set reply.CreatedAt")
	}
}

func TestReplyCreate_AppendsReference(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice@example.com", "alice")
	comment := createTestComment(t, db, user, "parent")

	r1 := createTestReply(t, db, user, comment.ID, "one")
	r2 := createTestReply(t, db, user, comment.ID, "two")

	replies, err := db.Replies().ListForComment(context.Background(), comment.ID)
	if err != nil {
		t.Fatalf("ListForComment() error = %v", err)
	}
	if len(replies) != 2 {
		t.Fatalf("ListForComment() = %d replies, want 2", len(replies))
	}
	if replies[0].ID != r1.ID || replies[1].ID != r2.ID {
		t.Errorf("replies out of reference order: got [%s, %s], want [%s, %s]",
			replies[0].ID, replies[1].ID, r1.ID, r2.ID)
	}
}

func TestReplyCreate_PositionsIndependentPerComment(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice@example.com", "alice")
	c1 := createTestComment(t, db, user, "first parent")
	c2 := createTestComment(t, db, user, "second parent")

	createTestReply(t, db, user, c1.ID, "c1 reply")
	createTestReply(t, db, user, c2.ID, "c2 reply A")
	createTestReply(t, db, user, c2.ID, "c2 reply B")

	r1, err := db.Replies().ListForComment(context.Background(), c1.ID)
	if err != nil {
		t.Fatalf("ListForComment(c1) error = %v", err)
	}
	r2, err := db.Replies().ListForComment(context.Background(), c2.ID)
	if err != nil {
		t.Fatalf("ListForComment(c2) error = %v", err)
	}
	if len(r1) != 1 {
		t.Errorf("c1 has %d replies, want 1", len(r1))
	}
	if len(r2) != 2 {
		t.Errorf("c2 has %d replies, want 2", len(r2))
	}
}

func TestReplyGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Replies().GetByID(context.Background(), "no-such-reply")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestReplyListForComment_Empty(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice@example.com", "alice")
	comment := createTestComment(t, db, user, "no replies yet")

	replies, err := db.Replies().ListForComment(context.Background(), comment.ID)
	if err != nil {
		t.Fatalf("ListForComment() error = %v", err)
	}
	if replies == nil {
		t.Error("ListForComment() returned nil, want empty slice")
	}
	if len(replies) != 0 {
		t.Errorf("ListForComment() = %d replies, want 0", len(replies))
	}
}

func TestReplyUpdateContent(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice@example.com", "alice")
	comment := createTestComment(t, db, user, "parent")
	reply := createTestReply(t, db, user, comment.ID, "before")

	reply.Content = "after"
	if err := db.Replies().UpdateContent(context.Background(), reply); err != nil {
		t.Fatalf("UpdateContent() error = %v", err)
	}

	got, err := db.Replies().GetByID(context.Background(), reply.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Content != "after" {
		t.Errorf("Content = %q, want %q", got.Content, "after")
	}
}

func TestReplyUpdateContent_NotFound(t *testing.T) {
	db := newTestDB(t)

	missing := &model.Reply{ID: "missing", Content: "x"}
	err := db.Replies().UpdateContent(context.Background(), missing)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateContent() error = %v, want ErrNotFound", err)
	}
}

func TestReplyDelete_RemovesReference(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice@example.com", "alice")
	comment := createTestComment(t, db, user, "parent")
	r1 := createTestReply(t, db, user, comment.ID, "keep")
	r2 := createTestReply(t, db, user, comment.ID, "remove")

	if err := db.Replies().Delete(context.Background(), r2.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	replies, err := db.Replies().ListForComment(context.Background(), comment.ID)
	if err != nil {
		t.Fatalf("ListForComment() error = %v", err)
	}
	if len(replies) != 1 || replies[0].ID != r1.ID {
		t.Errorf("ListForComment() after delete = %v, want only %s", replies, r1.ID)
	}
}

func TestReplyDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Replies().Delete(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}
