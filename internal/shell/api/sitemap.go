package api

import (
	"encoding/xml"
	"net/http"
)

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	URLs    []sitemapURL `xml:"url"`
}

func (h *Handler) handleSitemap(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListPosts(r.Context())
	if err != nil {
		h.logger.Error("failed to list posts for sitemap", "error", err)
		http.Error(w, "Failed to generate sitemap", http.StatusInternalServerError)
		return
	}

	urls := []sitemapURL{
		{Loc: h.site.BaseURL + "/", ChangeFreq: "daily", Priority: "1.0"},
	}
	for _, post := range posts {
		urls = append(urls, sitemapURL{
			Loc:        h.site.BaseURL + "/posts/" + post.Slug,
			LastMod:    post.UpdatedAt.Format("2006-01-02"),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(sitemapURLSet{URLs: urls}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
