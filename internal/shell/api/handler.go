// Package api provides the HTTP surface of the Inklet API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/inkletapp/inklet/internal/core/domain"
	"github.com/inkletapp/inklet/internal/core/validation"
	"github.com/inkletapp/inklet/internal/shell/api/openapi"
	"github.com/inkletapp/inklet/internal/shell/store"
)

// =============================================================================
// Handler
// =============================================================================

// SiteInfo carries the public site identity used by the feed and sitemap.
type SiteInfo struct {
	BaseURL     string
	Title       string
	Description string
}

// Handler provides HTTP handlers for the API.
type Handler struct {
	store  store.Store
	site   SiteInfo
	logger *slog.Logger
	spec   *openapi.Generator
}

// NewHandler creates a new API handler. The store is an injected capability;
// nothing in this package reaches for a global handle.
func NewHandler(s store.Store, site SiteInfo, l *slog.Logger) *Handler {
	if l == nil {
		l = slog.Default()
	}
	if site.BaseURL == "" {
		site.BaseURL = "http://localhost:8080"
	}
	spec := openapi.NewGenerator(site.Title+" API", "1.0.0", "Minimal blog platform API", site.BaseURL)
	spec.RegisterResource(openapi.ResourceInfo{
		Name:        "posts",
		Model:       PostResponse{},
		CreateModel: CreatePostRequest{},
		UpdateModel: UpdatePostRequest{},
	})
	return &Handler{
		store:  s,
		site:   site,
		logger: l,
		spec:   spec,
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.requestIDHeader)

	// Health endpoints
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)

	// API routes. All mutating endpoints are unauthenticated; gating them
	// behind an access-control middleware would happen on this block.
	r.Route("/api/posts", func(r chi.Router) {
		r.Use(h.jsonContentType)
		r.Get("/", h.handleListPosts)
		r.Post("/create", h.handleCreatePost)
		r.Get("/{slug}", h.handleGetPost)
		r.Put("/{slug}", h.handleUpdatePost)
		r.Delete("/{slug}", h.handleDeletePost)
	})

	// Syndication and discovery
	r.Get("/feed.xml", h.handleFeed)
	r.Get("/sitemap.xml", h.handleSitemap)
	r.Get("/openapi.json", h.spec.Handler())

	// Embedded web UI with SPA fallback for everything else
	r.NotFound(WebUIHandler().ServeHTTP)

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	// A cheap indexed lookup proves the database is reachable.
	if _, err := h.store.SlugExists(r.Context(), "-", ""); err != nil {
		checks["database"] = "failed"
		h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{
			Status: "not_ready",
			Checks: checks,
		})
		return
	}
	checks["database"] = "ok"

	h.writeJSON(w, http.StatusOK, ReadyResponse{
		Status: "ready",
		Checks: checks,
	})
}

// =============================================================================
// Post Handlers
// =============================================================================

func (h *Handler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body", "validation_error")
		return
	}

	title := strings.TrimSpace(req.Title)
	if field, msg := validation.ValidateCreatePostFields(title, req.Content); field != "" {
		h.writeError(w, http.StatusBadRequest, msg, "validation_error")
		return
	}

	// Slug probing and the insert share one transaction so the existence
	// check sees a consistent universe. Two racing creates can still pick
	// the same candidate; the UNIQUE constraint is the backstop.
	var post *domain.Post
	err := h.store.WithTx(r.Context(), func(tx store.Store) error {
		slug, err := domain.UniqueSlug(title, func(s string) (bool, error) {
			return tx.SlugExists(r.Context(), s, "")
		})
		if err != nil {
			return err
		}
		post = domain.NewPost(title, req.Content, slug)
		return tx.CreatePost(r.Context(), post)
	})
	if err != nil {
		if isConflict(err) {
			h.writeError(w, http.StatusConflict, "A post with this slug already exists", "slug_conflict")
			return
		}
		h.logger.Error("failed to create post", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Server error while creating post", "internal_error")
		return
	}

	h.writeSuccess(w, http.StatusCreated, "Post created successfully", postToResponse(post))
}

func (h *Handler) handleGetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := h.store.GetPostBySlug(r.Context(), slug)
	if err != nil {
		if isNotFound(err) {
			h.writeError(w, http.StatusNotFound, "Post not found", "post_not_found")
			return
		}
		h.logger.Error("failed to get post", "slug", slug, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Server error while fetching post", "internal_error")
		return
	}

	h.writeSuccess(w, http.StatusOK, "", postToResponse(post))
}

func (h *Handler) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListPosts(r.Context())
	if err != nil {
		h.logger.Error("failed to list posts", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Server error while fetching posts", "internal_error")
		return
	}

	data := PostListData{
		Count: len(posts),
		Posts: make([]PostResponse, 0, len(posts)),
	}
	for i := range posts {
		data.Posts = append(data.Posts, postToResponse(&posts[i]))
	}

	h.writeSuccess(w, http.StatusOK, "", data)
}

func (h *Handler) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body", "validation_error")
		return
	}

	// Empty fields mean "leave unchanged". A whitespace-only title trims to
	// empty and is treated as not supplied.
	title := strings.TrimSpace(req.Title)
	if title != "" {
		if field, msg := validation.ValidateTitle(title); field != "" {
			h.writeError(w, http.StatusBadRequest, msg, "validation_error")
			return
		}
	}

	var post *domain.Post
	err := h.store.WithTx(r.Context(), func(tx store.Store) error {
		var err error
		post, err = tx.GetPostBySlug(r.Context(), slug)
		if err != nil {
			return err
		}

		if title != "" && title != post.Title {
			// Title changed: recompute the slug, excluding the post's own
			// row so an unchanged base never collides with itself.
			newSlug, err := domain.UniqueSlug(title, func(s string) (bool, error) {
				return tx.SlugExists(r.Context(), s, post.ID)
			})
			if err != nil {
				return err
			}
			post.Slug = newSlug
		}
		if title != "" {
			post.Title = title
		}
		if req.Content != "" {
			post.Content = req.Content
		}
		post.UpdatedAt = time.Now().UTC()

		return tx.UpdatePost(r.Context(), post)
	})
	if err != nil {
		if isNotFound(err) {
			h.writeError(w, http.StatusNotFound, "Post not found", "post_not_found")
			return
		}
		if isConflict(err) {
			h.writeError(w, http.StatusConflict, "A post with this slug already exists", "slug_conflict")
			return
		}
		h.logger.Error("failed to update post", "slug", slug, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Server error while updating post", "internal_error")
		return
	}

	h.writeSuccess(w, http.StatusOK, "Post updated successfully", postToResponse(post))
}

func (h *Handler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := h.store.GetPostBySlug(r.Context(), slug)
	if err != nil {
		if isNotFound(err) {
			h.writeError(w, http.StatusNotFound, "Post not found", "post_not_found")
			return
		}
		h.logger.Error("failed to get post", "slug", slug, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Server error while deleting post", "internal_error")
		return
	}

	if err := h.store.DeletePost(r.Context(), post.ID); err != nil {
		if isNotFound(err) {
			// Deleted concurrently between lookup and delete.
			h.writeError(w, http.StatusNotFound, "Post not found", "post_not_found")
			return
		}
		h.logger.Error("failed to delete post", "slug", slug, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Server error while deleting post", "internal_error")
		return
	}

	h.writeSuccess(w, http.StatusOK, "Post deleted successfully", DeletedPostData{
		DeletedPost: DeletedPostSummary{
			ID:    post.ID,
			Title: post.Title,
			Slug:  post.Slug,
		},
	})
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	h.writeJSON(w, status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// writeError answers with the envelope's failure shape. The message is always
// human-readable; store internals never leak into it.
func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, Response{
		Success: false,
		Message: message,
		Error:   code,
	})
}

func postToResponse(p *domain.Post) PostResponse {
	return PostResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Slug:      p.Slug,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, store.ErrDuplicateSlug)
}
