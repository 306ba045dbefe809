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

// ReplyDB is the reply repository, a view over the shared pool.
type ReplyDB struct {
	conn *sql.DB
}

// compile-time check that *ReplyDB implements repository.ReplyRepository
var _ repository.ReplyRepository = (*ReplyDB)(nil)

const replyColumns = `id, content, user_id, username, user_image, comment_id, created_at, updated_at`

// Create inserts a reply AND appends its reference to the parent comment's
// reply list in a single transaction.
//
// The original revision of this feature did these as two independent
// writes, which could leave a persisted reply unreachable from its parent
// if the append failed. Wrapping both in one transaction closes that
// window: either the reply exists and is referenced, or neither happened.
func (db *ReplyDB) Create(ctx context.Context, reply *model.Reply) error {
	now := time.Now()
	reply.ID = xid.New().String()
	reply.CreatedAt = now
	reply.UpdatedAt = now

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning reply transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO replies (id, content, user_id, username, user_image, comment_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		reply.ID,
		reply.Content,
		reply.UserID,
		reply.Username,
		reply.UserImage,
		reply.CommentID,
		reply.CreatedAt,
		reply.UpdatedAt,
	); err != nil {
		return fmt.Errorf("sqlite: inserting reply: %w", err)
	}

	// Append-only position: one past the current maximum for this comment.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO comment_replies (comment_id, reply_id, position)
		 VALUES (?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM comment_replies WHERE comment_id = ?))`,
		reply.CommentID, reply.ID, reply.CommentID,
	); err != nil {
		return fmt.Errorf("sqlite: appending reply reference: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing reply create: %w", err)
	}
	return nil
}

// GetByID retrieves a reply by its ID.
func (db *ReplyDB) GetByID(ctx context.Context, id string) (*model.Reply, error) {
	var r model.Reply

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+replyColumns+` FROM replies WHERE id = ?`, id,
	).Scan(
		&r.ID,
		&r.Content,
		&r.UserID,
		&r.Username,
		&r.UserImage,
		&r.CommentID,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("reply", id)
		}
		return nil, fmt.Errorf("sqlite: getting reply %s: %w", id, err)
	}

	return &r, nil
}

// ListForComment returns the replies referenced by a comment, in reference
// order. A reply row without a reference (which the transactional Create
// rules out, but old data might contain) is invisible here.
func (db *ReplyDB) ListForComment(ctx context.Context, commentID string) ([]model.Reply, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT r.id, r.content, r.user_id, r.username, r.user_image, r.comment_id, r.created_at, r.updated_at
		 FROM comment_replies cr
		 JOIN replies r ON r.id = cr.reply_id
		 WHERE cr.comment_id = ?
		 ORDER BY cr.position`,
		commentID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing replies for comment %s: %w", commentID, err)
	}
	defer rows.Close()

	replies := []model.Reply{}
	for rows.Next() {
		var r model.Reply
		if err := rows.Scan(
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
		replies = append(replies, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating replies: %w", err)
	}

	return replies, nil
}

// UpdateContent replaces the reply body and bumps updated_at.
func (db *ReplyDB) UpdateContent(ctx context.Context, reply *model.Reply) error {
	reply.UpdatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE replies SET content = ?, updated_at = ? WHERE id = ?`,
		reply.Content, reply.UpdatedAt, reply.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating reply %s: %w", reply.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("reply", reply.ID)
	}
	return nil
}

// Delete removes a reply and its reference from the parent's reply list,
// symmetric to Create, in one transaction.
func (db *ReplyDB) Delete(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning reply delete transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM replies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting reply %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("reply", id)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM comment_replies WHERE reply_id = ?`, id,
	); err != nil {
		return fmt.Errorf("sqlite: removing reply reference %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing reply delete: %w", err)
	}
	return nil
}
