package threadclient

import "github.com/sakif/portfolio/internal/model"

// State is the local mirror of the thread: the comment list as last
// loaded, the in-flight/error status of that load, and which comments have
// their reply form open. State is treated as immutable — Reduce returns a
// fresh value and never mutates its input, so an old State can be compared
// against a new one to decide what to redraw.
type State struct {
	Comments []model.Comment
	Loading  bool
	LoadErr  string

	// OpenReplyForms tracks, per comment id, whether the reply form is
	// open. Independent flags: opening one form does not close another.
	OpenReplyForms map[string]bool
}

// NewState returns the empty initial state.
func NewState() State {
	return State{OpenReplyForms: map[string]bool{}}
}

// Action describes one thread event to fold into the state. Exactly one
// constructor below produces each kind.
type Action struct {
	kind      actionKind
	comments  []model.Comment
	comment   *model.Comment
	reply     *model.Reply
	commentID string
	replyID   string
	errMsg    string
}

type actionKind int

const (
	actionFetchStarted actionKind = iota
	actionListLoaded
	actionListFailed
	actionCommentCreated
	actionCommentUpdated
	actionCommentDeleted
	actionReplyCreated
	actionReplyUpdated
	actionReplyDeleted
	actionReplyFormToggled
)

// FetchStarted marks the list as loading and clears any previous error.
func FetchStarted() Action { return Action{kind: actionFetchStarted} }

// ListLoaded replaces the whole comment list with a fresh server response.
func ListLoaded(comments []model.Comment) Action {
	return Action{kind: actionListLoaded, comments: comments}
}

// ListFailed records a failed load; the previous list is kept so the
// reader still sees something.
func ListFailed(msg string) Action { return Action{kind: actionListFailed, errMsg: msg} }

// CommentCreated prepends a newly created comment (the list is newest
// first).
func CommentCreated(c *model.Comment) Action {
	return Action{kind: actionCommentCreated, comment: c}
}

// CommentUpdated swaps in the updated comment, keeping its position and
// replies.
func CommentUpdated(c *model.Comment) Action {
	return Action{kind: actionCommentUpdated, comment: c}
}

// CommentDeleted removes a comment (and with it, its inline replies and
// reply-form flag).
func CommentDeleted(commentID string) Action {
	return Action{kind: actionCommentDeleted, commentID: commentID}
}

// ReplyCreated appends a reply to its parent comment and closes that
// comment's reply form.
func ReplyCreated(r *model.Reply) Action {
	return Action{kind: actionReplyCreated, reply: r}
}

// ReplyUpdated swaps in the updated reply, keeping its position.
func ReplyUpdated(r *model.Reply) Action {
	return Action{kind: actionReplyUpdated, reply: r}
}

// ReplyDeleted removes one reply from its parent comment.
func ReplyDeleted(commentID, replyID string) Action {
	return Action{kind: actionReplyDeleted, commentID: commentID, replyID: replyID}
}

// ReplyFormToggled flips the reply-form flag of one comment.
func ReplyFormToggled(commentID string) Action {
	return Action{kind: actionReplyFormToggled, commentID: commentID}
}

// Reduce folds one action into the state and returns the result. Unknown
// comment/reply ids are ignored: a stale action (say, an update racing a
// delete) leaves the state untouched instead of corrupting it.
func Reduce(s State, a Action) State {
	switch a.kind {
	case actionFetchStarted:
		s.Loading = true
		s.LoadErr = ""
		return s

	case actionListLoaded:
		s.Loading = false
		s.LoadErr = ""
		s.Comments = append([]model.Comment(nil), a.comments...)
		return s

	case actionListFailed:
		s.Loading = false
		s.LoadErr = a.errMsg
		return s

	case actionCommentCreated:
		next := make([]model.Comment, 0, len(s.Comments)+1)
		next = append(next, *a.comment)
		next = append(next, s.Comments...)
		s.Comments = next
		return s

	case actionCommentUpdated:
		s.Comments = mapComments(s.Comments, func(c model.Comment) model.Comment {
			if c.ID == a.comment.ID {
				c.Content = a.comment.Content
				c.UpdatedAt = a.comment.UpdatedAt
			}
			return c
		})
		return s

	case actionCommentDeleted:
		next := make([]model.Comment, 0, len(s.Comments))
		for _, c := range s.Comments {
			if c.ID != a.commentID {
				next = append(next, c)
			}
		}
		s.Comments = next
		s.OpenReplyForms = withoutFlag(s.OpenReplyForms, a.commentID)
		return s

	case actionReplyCreated:
		s.Comments = mapComments(s.Comments, func(c model.Comment) model.Comment {
			if c.ID == a.reply.CommentID {
				c.Replies = append(append([]model.Reply(nil), c.Replies...), *a.reply)
			}
			return c
		})
		s.OpenReplyForms = withoutFlag(s.OpenReplyForms, a.reply.CommentID)
		return s

	case actionReplyUpdated:
		s.Comments = mapComments(s.Comments, func(c model.Comment) model.Comment {
			if c.ID != a.reply.CommentID {
				return c
			}
			replies := append([]model.Reply(nil), c.Replies...)
			for i := range replies {
				if replies[i].ID == a.reply.ID {
					replies[i].Content = a.reply.Content
					replies[i].UpdatedAt = a.reply.UpdatedAt
				}
			}
			c.Replies = replies
			return c
		})
		return s

	case actionReplyDeleted:
		s.Comments = mapComments(s.Comments, func(c model.Comment) model.Comment {
			if c.ID != a.commentID {
				return c
			}
			replies := make([]model.Reply, 0, len(c.Replies))
			for _, r := range c.Replies {
				if r.ID != a.replyID {
					replies = append(replies, r)
				}
			}
			c.Replies = replies
			return c
		})
		return s

	case actionReplyFormToggled:
		forms := make(map[string]bool, len(s.OpenReplyForms)+1)
		for id, open := range s.OpenReplyForms {
			forms[id] = open
		}
		forms[a.commentID] = !forms[a.commentID]
		s.OpenReplyForms = forms
		return s
	}

	return s
}

// mapComments applies fn to every comment, returning a new slice.
func mapComments(comments []model.Comment, fn func(model.Comment) model.Comment) []model.Comment {
	next := make([]model.Comment, len(comments))
	for i, c := range comments {
		next[i] = fn(c)
	}
	return next
}

// withoutFlag copies the flag map minus one key.
func withoutFlag(flags map[string]bool, id string) map[string]bool {
	next := make(map[string]bool, len(flags))
	for k, v := range flags {
		if k != id {
			next[k] = v
		}
	}
	return next
}
