package model

import "time"

// Comment is a top-level entry in the guestbook thread.
//
// Username and UserImage are a point-in-time copy of the owner's profile at
// posting time, NOT a live join — if the owner later renames themselves or
// changes their avatar, existing comments keep the old values. Ownership
// checks always use UserID, never the denormalized fields.
//
// Replies is populated when listing; the ordered reply references themselves
// live in the comment_replies table.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	UserImage string    `json:"userImage"`
	Replies   []Reply   `json:"replies"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Reply is a nested response to a Comment. CommentID is the back-reference
// to the parent; the parent's ordered reply list references this row's ID.
// Both sides of that linkage are maintained together in one transaction.
type Reply struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	UserImage string    `json:"userImage"`
	CommentID string    `json:"commentId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
