package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/model"
)

// In-memory fakes for the repository interfaces. Fakes, not a mock
// framework: each one is a map plus the handful of behaviours the services
// rely on, and an injectable error field to simulate store failures.

type fakeUserRepo struct {
	users  map[string]*model.User // keyed by internal id
	nextID int

	failWith error // non-nil: every method fails with this
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User), nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if f.failWith != nil {
		return f.failWith
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.Conflict("user", user.Email)
		}
		if user.ProviderID != "" && u.ProviderID == user.ProviderID {
			return apperror.Conflict("user", user.ProviderID)
		}
	}
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	if user.Image == "" {
		user.Image = model.DefaultAvatar
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) GetByEmailOrProviderID(ctx context.Context, email, providerID string) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, u := range f.users {
		if u.Email == email || (providerID != "" && u.ProviderID == providerID) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id, username, image string) error {
	if f.failWith != nil {
		return f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.Username = username
	u.Image = image
	u.UpdatedAt = time.Now()
	return nil
}

type fakeCommentRepo struct {
	comments map[string]*model.Comment
	order    []string // ids newest-first
	nextID   int

	failWith error
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*model.Comment), nextID: 1}
}

func (f *fakeCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	if f.failWith != nil {
		return f.failWith
	}
	comment.ID = fmt.Sprintf("comment-%d", f.nextID)
	f.nextID++
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = time.Now()
	if comment.Replies == nil {
		comment.Replies = []model.Reply{}
	}
	copied := *comment
	f.comments[comment.ID] = &copied
	f.order = append([]string{comment.ID}, f.order...)
	return nil
}

func (f *fakeCommentRepo) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	c, ok := f.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCommentRepo) List(ctx context.Context, limit int) ([]model.Comment, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.Comment{}
	for _, id := range f.order {
		if len(out) == limit {
			break
		}
		out = append(out, *f.comments[id])
	}
	return out, nil
}

func (f *fakeCommentRepo) UpdateContent(ctx context.Context, comment *model.Comment) error {
	if f.failWith != nil {
		return f.failWith
	}
	c, ok := f.comments[comment.ID]
	if !ok {
		return apperror.NotFound("comment", comment.ID)
	}
	c.Content = comment.Content
	c.UpdatedAt = time.Now()
	return nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, id string) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.comments[id]; !ok {
		return apperror.NotFound("comment", id)
	}
	delete(f.comments, id)
	for i, cid := range f.order {
		if cid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeReplyRepo struct {
	replies map[string]*model.Reply
	nextID  int

	failWith error
}

func newFakeReplyRepo() *fakeReplyRepo {
	return &fakeReplyRepo{replies: make(map[string]*model.Reply), nextID: 1}
}

func (f *fakeReplyRepo) Create(ctx context.Context, reply *model.Reply) error {
	if f.failWith != nil {
		return f.failWith
	}
	reply.ID = fmt.Sprintf("reply-%d", f.nextID)
	f.nextID++
	reply.CreatedAt = time.Now()
	reply.UpdatedAt = time.Now()
	copied := *reply
	f.replies[reply.ID] = &copied
	return nil
}

func (f *fakeReplyRepo) GetByID(ctx context.Context, id string) (*model.Reply, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	r, ok := f.replies[id]
	if !ok {
		return nil, apperror.NotFound("reply", id)
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReplyRepo) ListForComment(ctx context.Context, commentID string) ([]model.Reply, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.Reply{}
	for i := 1; i < f.nextID; i++ {
		if r, ok := f.replies[fmt.Sprintf("reply-%d", i)]; ok && r.CommentID == commentID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReplyRepo) UpdateContent(ctx context.Context, reply *model.Reply) error {
	if f.failWith != nil {
		return f.failWith
	}
	r, ok := f.replies[reply.ID]
	if !ok {
		return apperror.NotFound("reply", reply.ID)
	}
	r.Content = reply.Content
	r.UpdatedAt = time.Now()
	return nil
}

func (f *fakeReplyRepo) Delete(ctx context.Context, id string) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.replies[id]; !ok {
		return apperror.NotFound("reply", id)
	}
	delete(f.replies, id)
	return nil
}

// testLogger discards nothing but keeps output out of the way unless a
// test fails loudly enough to care.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestAuthService wires an AuthService with fakes and fast bcrypt.
func newTestAuthService(t *testing.T, users *fakeUserRepo) *AuthService {
	t.Helper()

	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	ps := auth.NewPasswordServiceForTest(4)
	return NewAuthService(users, ts, ps, testLogger())
}

// newTestThreadService wires a ThreadService with fakes.
func newTestThreadService(users *fakeUserRepo, comments *fakeCommentRepo, replies *fakeReplyRepo) *ThreadService {
	return NewThreadService(users, comments, replies, testLogger())
}
