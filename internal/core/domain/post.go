// Package domain contains the core domain types and the slug assignment
// logic. This is part of the functional core — no I/O happens here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxTitleLength is the maximum number of characters in a post title,
// counted after trimming surrounding whitespace.
const MaxTitleLength = 200

// Post is a published blog entry. Content is an opaque rich-text payload;
// the platform never interprets it beyond rendering.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPost creates a post with a fresh ID and both timestamps set to now.
// Title is expected to be trimmed and the slug already assigned via
// UniqueSlug; validation happens at the API boundary.
func NewPost(title, content, slug string) *Post {
	now := time.Now().UTC()
	return &Post{
		ID:        NewPostID(),
		Title:     title,
		Content:   content,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewPostID mints an opaque post identifier.
func NewPostID() string {
	return "post_" + uuid.New().String()[:8]
}
