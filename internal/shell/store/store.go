package store

import (
	"context"

	"github.com/inkletapp/inklet/internal/core/domain"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for posts. It is injected into the
// API handler — there is no process-wide store handle.
type Store interface {
	// CreatePost persists a new post. Returns ErrDuplicateSlug when the
	// slug UNIQUE constraint fires, ErrDuplicateID on an ID collision.
	CreatePost(ctx context.Context, post *domain.Post) error

	// GetPostBySlug returns the post with the given slug, or ErrNotFound.
	GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error)

	// ListPosts returns all posts ordered by creation time, newest first.
	// Full scan — the platform has no pagination.
	ListPosts(ctx context.Context) ([]domain.Post, error)

	// UpdatePost replaces the stored post identified by post.ID.
	// Returns ErrNotFound when no such post exists.
	UpdatePost(ctx context.Context, post *domain.Post) error

	// DeletePost hard-deletes the post with the given ID.
	// Returns ErrNotFound when no such post exists.
	DeletePost(ctx context.Context, id string) error

	// SlugExists reports whether some post other than excludeID already has
	// this slug. Pass excludeID == "" to check against all posts.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)

	// WithTx runs fn inside a transaction, committing on nil and rolling
	// back on error.
	WithTx(ctx context.Context, fn func(Store) error) error

	// Close releases the underlying connection.
	Close() error
}
