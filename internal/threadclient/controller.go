package threadclient

import (
	"context"
	"errors"
	"sync"
)

// ErrNotConfirmed is returned by the delete operations when the caller has
// not confirmed. Deletes are the only destructive actions in the thread, so
// they never run on a first click.
var ErrNotConfirmed = errors.New("threadclient: delete not confirmed")

// Controller drives the thread: it sends requests through the Client and,
// on success, folds the matching action into the local State. Failed
// requests leave the state exactly as it was — there is no optimistic
// update to roll back.
//
// Controller is safe for concurrent use.
type Controller struct {
	client *Client

	mu    sync.Mutex
	state State
}

// NewController creates a Controller around an API client.
func NewController(client *Client) *Controller {
	return &Controller{client: client, state: NewState()}
}

// State returns a snapshot of the current local state.
func (ctl *Controller) State() State {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.state
}

func (ctl *Controller) dispatch(a Action) {
	ctl.mu.Lock()
	ctl.state = Reduce(ctl.state, a)
	ctl.mu.Unlock()
}

// Refresh reloads the comment list from the server. On failure the
// previous list is kept and the error recorded in the state as well as
// returned.
func (ctl *Controller) Refresh(ctx context.Context) error {
	ctl.dispatch(FetchStarted())

	comments, err := ctl.client.FetchComments(ctx)
	if err != nil {
		ctl.dispatch(ListFailed(err.Error()))
		return err
	}

	ctl.dispatch(ListLoaded(comments))
	return nil
}

// PostComment creates a comment and prepends it locally.
func (ctl *Controller) PostComment(ctx context.Context, content string) error {
	comment, err := ctl.client.PostComment(ctx, content)
	if err != nil {
		return err
	}
	ctl.dispatch(CommentCreated(comment))
	return nil
}

// EditComment updates a comment's body and patches it in place locally.
func (ctl *Controller) EditComment(ctx context.Context, commentID, content string) error {
	comment, err := ctl.client.UpdateComment(ctx, commentID, content)
	if err != nil {
		return err
	}
	ctl.dispatch(CommentUpdated(comment))
	return nil
}

// DeleteComment deletes a comment after explicit confirmation. With
// confirmed false, nothing is sent and ErrNotConfirmed is returned.
func (ctl *Controller) DeleteComment(ctx context.Context, commentID string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := ctl.client.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	ctl.dispatch(CommentDeleted(commentID))
	return nil
}

// ToggleReplyForm flips the reply-form flag of one comment. Purely local.
func (ctl *Controller) ToggleReplyForm(commentID string) {
	ctl.dispatch(ReplyFormToggled(commentID))
}

// PostReply creates a reply, appends it under its parent locally, and
// closes that parent's reply form.
func (ctl *Controller) PostReply(ctx context.Context, commentID, content string) error {
	reply, err := ctl.client.PostReply(ctx, commentID, content)
	if err != nil {
		return err
	}
	ctl.dispatch(ReplyCreated(reply))
	return nil
}

// EditReply updates a reply's body and patches it in place locally.
func (ctl *Controller) EditReply(ctx context.Context, commentID, replyID, content string) error {
	reply, err := ctl.client.UpdateReply(ctx, commentID, replyID, content)
	if err != nil {
		return err
	}
	ctl.dispatch(ReplyUpdated(reply))
	return nil
}

// DeleteReply deletes a reply after explicit confirmation.
func (ctl *Controller) DeleteReply(ctx context.Context, commentID, replyID string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := ctl.client.DeleteReply(ctx, commentID, replyID); err != nil {
		return err
	}
	ctl.dispatch(ReplyDeleted(commentID, replyID))
	return nil
}
