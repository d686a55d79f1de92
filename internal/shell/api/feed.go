package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// feedLimit caps the number of items in the RSS feed.
const feedLimit = 20

func (h *Handler) handleFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListPosts(r.Context())
	if err != nil {
		h.logger.Error("failed to list posts for feed", "error", err)
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
		return
	}

	feed := &feeds.Feed{
		Title:       h.site.Title,
		Link:        &feeds.Link{Href: h.site.BaseURL},
		Description: h.site.Description,
		Created:     time.Now(),
	}

	if len(posts) > feedLimit {
		posts = posts[:feedLimit]
	}

	for _, post := range posts {
		feed.Items = append(feed.Items, &feeds.Item{
			Title:   post.Title,
			Link:    &feeds.Link{Href: h.site.BaseURL + "/posts/" + post.Slug},
			Id:      post.ID,
			Created: post.CreatedAt,
			Updated: post.UpdatedAt,
			Content: renderContent(post.Content),
		})
	}

	w.Header().Set("Content-Type", "application/xml")
	if err := feed.WriteRss(w); err != nil {
		h.logger.Error("failed to write RSS", "error", err)
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
	}
}

// renderContent renders markdown-authored content to HTML for feed readers.
// Content is an opaque payload; posts authored as raw HTML pass through
// goldmark untouched.
func renderContent(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	var b strings.Builder
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	if err := md.Convert([]byte(input), &b); err != nil {
		return input
	}
	return b.String()
}
