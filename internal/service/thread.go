package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

// Validation constants for the comment thread.
//
// MaxCommentLength/MaxReplyLength mirror the CHECK constraints in the
// schema; enforcing them here too means an oversized body is rejected with
// a clear message before any write is attempted, instead of surfacing as a
// storage error.
const (
	MaxCommentLength = 1000
	MaxReplyLength   = 500
	ListCap          = 100
)

// ThreadService handles the comment/reply business logic, including the
// authorization gate: every mutation resolves the acting identity and
// compares it against the resource's recorded owner before touching
// anything.
type ThreadService struct {
	users    repository.UserRepository
	comments repository.CommentRepository
	replies  repository.ReplyRepository
	logger   *slog.Logger
}

// NewThreadService creates a ThreadService.
func NewThreadService(
	users repository.UserRepository,
	comments repository.CommentRepository,
	replies repository.ReplyRepository,
	logger *slog.Logger,
) *ThreadService {
	return &ThreadService{
		users:    users,
		comments: comments,
		replies:  replies,
		logger:   logger,
	}
}

// ListComments returns comments newest-first with replies resolved inline,
// capped at ListCap. There is no pagination cursor; callers wanting older
// data have no mechanism, by design.
func (s *ThreadService) ListComments(ctx context.Context) ([]model.Comment, error) {
	comments, err := s.comments.List(ctx, ListCap)
	if err != nil {
		s.logger.Error("failed to list comments", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

// CreateComment persists a new comment owned by userID.
//
// The owner's current username and avatar are copied onto the comment at
// posting time. That snapshot is what listings show forever, even if the
// profile changes later.
func (s *ThreadService) CreateComment(ctx context.Context, userID, content string) (*model.Comment, error) {
	content, err := validateBody(content, MaxCommentLength, "comment")
	if err != nil {
		return nil, err
	}

	// The poster's identity record must still exist — the session can
	// outlive the row it was issued for.
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		Content:   content,
		UserID:    user.ID,
		Username:  user.Username,
		UserImage: avatarOrDefault(user.Image),
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.String("id", comment.ID),
		slog.String("userID", userID),
	)

	return comment, nil
}

// UpdateComment replaces the body of a comment owned by userID.
func (s *ThreadService) UpdateComment(ctx context.Context, userID, commentID, content string) (*model.Comment, error) {
	content, err := validateBody(content, MaxCommentLength, "comment")
	if err != nil {
		return nil, err
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, apperror.Forbidden("you are not authorized to update this comment")
	}

	comment.Content = content
	if err := s.comments.UpdateContent(ctx, comment); err != nil {
		s.logger.Error("failed to update comment",
			slog.String("id", commentID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating comment: %w", err)
	}

	return comment, nil
}

// DeleteComment removes a comment owned by userID, together with its
// replies.
func (s *ThreadService) DeleteComment(ctx context.Context, userID, commentID string) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return apperror.Forbidden("you are not authorized to delete this comment")
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		s.logger.Error("failed to delete comment",
			slog.String("id", commentID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting comment: %w", err)
	}

	s.logger.Info("comment deleted", slog.String("id", commentID))
	return nil
}

// ListReplies returns the replies of one comment in reference order.
// Returns NotFound if the comment itself is missing.
func (s *ThreadService) ListReplies(ctx context.Context, commentID string) ([]model.Reply, error) {
	if _, err := s.comments.GetByID(ctx, commentID); err != nil {
		return nil, err
	}

	replies, err := s.replies.ListForComment(ctx, commentID)
	if err != nil {
		s.logger.Error("failed to list replies",
			slog.String("commentID", commentID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing replies: %w", err)
	}
	return replies, nil
}

// CreateReply persists a reply to an existing comment and appends its
// reference to the comment's reply list.
//
// Anyone signed in may reply to any comment — the parent's owner has no say
// here; ownership only gates mutation of the reply itself afterwards.
func (s *ThreadService) CreateReply(ctx context.Context, userID, commentID, content string) (*model.Reply, error) {
	content, err := validateBody(content, MaxReplyLength, "reply")
	if err != nil {
		return nil, err
	}

	// Parent must exist before we create anything.
	if _, err := s.comments.GetByID(ctx, commentID); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	reply := &model.Reply{
		Content:   content,
		UserID:    user.ID,
		Username:  user.Username,
		UserImage: avatarOrDefault(user.Image),
		CommentID: commentID,
	}

	if err := s.replies.Create(ctx, reply); err != nil {
		s.logger.Error("failed to create reply",
			slog.String("commentID", commentID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating reply: %w", err)
	}

	s.logger.Info("reply created",
		slog.String("id", reply.ID),
		slog.String("commentID", commentID),
	)

	return reply, nil
}

// UpdateReply replaces the body of a reply owned by userID. The ownership
// check is against the reply's own owner, not the parent comment's.
func (s *ThreadService) UpdateReply(ctx context.Context, userID, commentID, replyID, content string) (*model.Reply, error) {
	content, err := validateBody(content, MaxReplyLength, "reply")
	if err != nil {
		return nil, err
	}

	reply, err := s.getReplyOf(ctx, commentID, replyID)
	if err != nil {
		return nil, err
	}
	if reply.UserID != userID {
		return nil, apperror.Forbidden("you are not authorized to update this reply")
	}

	reply.Content = content
	if err := s.replies.UpdateContent(ctx, reply); err != nil {
		s.logger.Error("failed to update reply",
			slog.String("id", replyID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating reply: %w", err)
	}

	return reply, nil
}

// DeleteReply removes a reply owned by userID and its reference in the
// parent's reply list.
func (s *ThreadService) DeleteReply(ctx context.Context, userID, commentID, replyID string) error {
	reply, err := s.getReplyOf(ctx, commentID, replyID)
	if err != nil {
		return err
	}
	if reply.UserID != userID {
		return apperror.Forbidden("you are not authorized to delete this reply")
	}

	if err := s.replies.Delete(ctx, replyID); err != nil {
		s.logger.Error("failed to delete reply",
			slog.String("id", replyID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting reply: %w", err)
	}

	s.logger.Info("reply deleted", slog.String("id", replyID))
	return nil
}

// getReplyOf loads a reply and checks it actually belongs to the comment
// named in the URL, so /comments/A/replies/R can't touch a reply of B.
func (s *ThreadService) getReplyOf(ctx context.Context, commentID, replyID string) (*model.Reply, error) {
	reply, err := s.replies.GetByID(ctx, replyID)
	if err != nil {
		return nil, err
	}
	if reply.CommentID != commentID {
		return nil, apperror.NotFound("reply", replyID)
	}
	return reply, nil
}

// validateBody trims and bounds a comment/reply body.
func validateBody(content string, max int, kind string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperror.ValidationFailed("content", kind+" cannot be empty")
	}
	if len(content) > max {
		return "", apperror.ValidationFailed("content",
			fmt.Sprintf("%s must be %d characters or less", kind, max))
	}
	return content, nil
}

func avatarOrDefault(image string) string {
	if image == "" {
		return model.DefaultAvatar
	}
	return image
}
