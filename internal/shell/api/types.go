package api

import "time"

// =============================================================================
// Request Types
// =============================================================================

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdatePostRequest is the request body for updating a post. An empty or
// omitted field leaves the stored value untouched.
type UpdatePostRequest struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// =============================================================================
// Response Types
// =============================================================================

// Response is the envelope carried by every API response.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PostResponse is the wire representation of a post.
type PostResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PostListData is the data payload for listing posts.
type PostListData struct {
	Count int            `json:"count"`
	Posts []PostResponse `json:"posts"`
}

// DeletedPostData is the data payload returned after a deletion.
type DeletedPostData struct {
	DeletedPost DeletedPostSummary `json:"deletedPost"`
}

// DeletedPostSummary is a minimal summary of a removed post.
type DeletedPostSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the readiness check response.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
