// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage is the only implementation; tests
// substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/portfolio/internal/model"
)

// UserRepository persists identity records.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByEmailOrProviderID finds an account by either key — the lookup
	// the OAuth sign-in uses so a Google account is recognised even after
	// its email changed.
	GetByEmailOrProviderID(ctx context.Context, email, providerID string) (*model.User, error)
	// UpdateProfile refreshes the mutable profile fields (username, image).
	UpdateProfile(ctx context.Context, id, username, image string) error
}

// CommentRepository persists top-level comments and their ordered reply
// references.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	// List returns up to limit comments newest-first, replies resolved
	// inline in reference order.
	List(ctx context.Context, limit int) ([]model.Comment, error)
	UpdateContent(ctx context.Context, comment *model.Comment) error
	// Delete removes the comment, its reply references, and its replies in
	// one transaction.
	Delete(ctx context.Context, id string) error
}

// ReplyRepository persists replies. Create and Delete maintain both sides
// of the comment↔reply linkage in a single transaction.
type ReplyRepository interface {
	Create(ctx context.Context, reply *model.Reply) error
	GetByID(ctx context.Context, id string) (*model.Reply, error)
	ListForComment(ctx context.Context, commentID string) ([]model.Reply, error)
	UpdateContent(ctx context.Context, reply *model.Reply) error
	Delete(ctx context.Context, id string) error
}
