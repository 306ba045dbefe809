package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/sakif/portfolio/internal/model"
)

// newTestDB returns a DB backed by an in-memory SQLite database. Each test
// gets its own, destroyed when the connection closes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	// Each pooled connection gets its own :memory: database; pin the pool
	// to one connection so every query sees the migrated schema.
	db.conn.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a manual identity and fails the test on error.
func createTestUser(t *testing.T, db *DB, email, username string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: "$2a$04$notarealhashbutlooks.like.one",
		Provider:     model.ProviderManual,
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestComment creates a comment owned by user and fails the test on
// error. Sleeps briefly first so created_at ordering between successive
// comments is deterministic.
func createTestComment(t *testing.T, db *DB, user *model.User, content string) *model.Comment {
	t.Helper()
	time.Sleep(2 * time.Millisecond)
	comment := &model.Comment{
		Content:   content,
		UserID:    user.ID,
		Username:  user.Username,
		UserImage: user.Image,
	}
	if err := db.Comments().Create(context.Background(), comment); err != nil {
		t.Fatalf("failed to create test comment: %v", err)
	}
	return comment
}

// createTestReply creates a reply under comment and fails the test on error.
func createTestReply(t *testing.T, db *DB, user *model.User, commentID, content string) *model.Reply {
	t.Helper()
	reply := &model.Reply{
		Content:   content,
		UserID:    user.ID,
		Username:  user.Username,
		UserImage: user.Image,
		CommentID: commentID,
	}
	if err := db.Replies().Create(context.Background(), reply); err != nil {
		t.Fatalf("failed to create test reply: %v", err)
	}
	return reply
}
