package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

// CommentDB is the comment repository, a view over the shared pool.
type CommentDB struct {
	conn *sql.DB
}

// compile-time check that *CommentDB implements repository.CommentRepository
var _ repository.CommentRepository = (*CommentDB)(nil)

const commentColumns = `id, content, user_id, username, user_image, created_at, updated_at`

// Create inserts a new comment with an empty reply list.
// The caller's struct is modified in place: ID and timestamps are set here.
func (db *CommentDB) Create(ctx context.Context, comment *model.Comment) error {
	now := time.Now()
	comment.ID = xid.New().String()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	if comment.Replies == nil {
		comment.Replies = []model.Reply{}
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, content, user_id, username, user_image, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.Content,
		comment.UserID,
		comment.Username,
		comment.UserImage,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment: %w", err)
	}

	return nil
}

// GetByID retrieves a single comment with its replies resolved inline.
// Returns apperror.ErrNotFound if the comment doesn't exist.
func (db *CommentDB) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id,
	).Scan(
		&c.ID,
		&c.Content,
		&c.UserID,
		&c.Username,
		&c.UserImage,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}

	replies, err := (&ReplyDB{conn: db.conn}).ListForComment(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Replies = replies

	return &c, nil
}

// List returns up to limit comments newest-first, each with its replies
// resolved in reference order.
//
// Ordering is by created_at descending only. Two comments created in the
// same millisecond have unspecified relative order, which the caller
// accepts.
func (db *CommentDB) List(ctx context.Context, limit int) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	index := map[string]int{} // comment id → slice position
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.ID,
			&c.Content,
			&c.UserID,
			&c.Username,
			&c.UserImage,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment: %w", err)
		}
		c.Replies = []model.Reply{}
		index[c.ID] = len(comments)
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	if len(comments) == 0 {
		return comments, nil
	}

	// One pass over every reply referenced by the listed comments, in
	// per-comment reference order. The subquery repeats the LIMIT so we
	// never load replies for comments beyond the cap.
	replyRows, err := db.conn.QueryContext(ctx,
		`SELECT r.id, r.content, r.user_id, r.username, r.user_image, r.comment_id, r.created_at, r.updated_at
		 FROM comment_replies cr
		 JOIN replies r ON r.id = cr.reply_id
		 WHERE cr.comment_id IN (SELECT id FROM comments ORDER BY created_at DESC LIMIT ?)
		 ORDER BY cr.comment_id, cr.position`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing replies for comments: %w", err)
	}
	defer replyRows.Close()

	for replyRows.Next() {
		var r model.Reply
		if err := replyRows.Scan(
			&r.ID,
			&r.Content,
			&r.UserID,
			&r.Username,
			&r.UserImage,
			&r.CommentID,
			&r.CreatedAt,
			&r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning reply: %w", err)
		}
		if i, ok := index[r.CommentID]; ok {
			comments[i].Replies = append(comments[i].Replies, r)
		}
	}
	if err := replyRows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating replies: %w", err)
	}

	return comments, nil
}

// UpdateContent replaces the comment body and bumps updated_at.
func (db *CommentDB) UpdateContent(ctx context.Context, comment *model.Comment) error {
	comment.UpdatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`,
		comment.Content, comment.UpdatedAt, comment.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating comment %s: %w", comment.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("comment", comment.ID)
	}
	return nil
}

// Delete removes a comment, its reply references, and the reply rows those
// references point at, in one transaction. Replies are only ever reachable
// through their parent, so leaving them behind would just leak rows.
func (db *CommentDB) Delete(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("comment", id)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM replies WHERE id IN (SELECT reply_id FROM comment_replies WHERE comment_id = ?)`, id,
	); err != nil {
		return fmt.Errorf("sqlite: deleting replies of comment %s: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM comment_replies WHERE comment_id = ?`, id,
	); err != nil {
		return fmt.Errorf("sqlite: deleting reply references of comment %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing comment delete: %w", err)
	}
	return nil
}
