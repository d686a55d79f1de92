package e2e

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Smoke Tests
// =============================================================================

// TestE2E_HealthCheck verifies the server is running and responding.
func TestE2E_HealthCheck(t *testing.T) {
	resp := HTTPGet(t, baseURL+"/health")
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}

// TestE2E_ReadyCheck verifies the server is ready (DB reachable).
func TestE2E_ReadyCheck(t *testing.T) {
	resp := HTTPGet(t, baseURL+"/ready")
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}

// TestE2E_PostLifecycle exercises create, read, update, and delete.
func TestE2E_PostLifecycle(t *testing.T) {
	// Create
	post := CreatePost(t, "Lifecycle Post", "<p>first draft</p>")
	require.NotEmpty(t, post.ID)
	assert.Equal(t, "lifecycle-post", post.Slug)

	// Read back
	status, fetched := GetPost(t, post.Slug)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, post.ID, fetched.ID)
	assert.Equal(t, "<p>first draft</p>", fetched.Content)

	// Update content, slug stays
	status, env := HTTPJSON(t, http.MethodPut, baseURL+"/api/posts/"+post.Slug, map[string]string{
		"content": "<p>second draft</p>",
	})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, fetched = GetPost(t, post.Slug)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "<p>second draft</p>", fetched.Content)
	assert.Equal(t, "lifecycle-post", fetched.Slug)

	// Delete
	status, env = DeletePost(t, post.Slug)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Post deleted successfully", env.Message)

	// Gone
	status, _ = GetPost(t, post.Slug)
	assert.Equal(t, http.StatusNotFound, status)

	t.Log("PASS: Post lifecycle completed successfully")
}

// TestE2E_SlugCollision verifies collision suffixes across real inserts.
func TestE2E_SlugCollision(t *testing.T) {
	first := CreatePost(t, "Collision Test", "a")
	second := CreatePost(t, "Collision Test!", "b")
	third := CreatePost(t, "collision test", "c")

	assert.Equal(t, "collision-test", first.Slug)
	assert.Equal(t, "collision-test-1", second.Slug)
	assert.Equal(t, "collision-test-2", third.Slug)
}

// TestE2E_RetitleMovesSlug verifies the read-after-rename contract.
func TestE2E_RetitleMovesSlug(t *testing.T) {
	post := CreatePost(t, "Original Name", "body")

	status, env := HTTPJSON(t, http.MethodPut, baseURL+"/api/posts/"+post.Slug, map[string]string{
		"title": "Completely New Name",
	})
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	// New slug resolves, old one does not.
	status, fetched := GetPost(t, "completely-new-name")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, post.ID, fetched.ID)

	status, _ = GetPost(t, "original-name")
	assert.Equal(t, http.StatusNotFound, status)
}

// TestE2E_ListOrdering verifies newest-first listing.
func TestE2E_ListOrdering(t *testing.T) {
	older := CreatePost(t, "Ordering Older", "a")
	newer := CreatePost(t, "Ordering Newer", "b")

	list := ListPosts(t)
	require.GreaterOrEqual(t, list.Count, 2)

	posOlder, posNewer := -1, -1
	for i, p := range list.Posts {
		switch p.ID {
		case older.ID:
			posOlder = i
		case newer.ID:
			posNewer = i
		}
	}
	require.NotEqual(t, -1, posOlder)
	require.NotEqual(t, -1, posNewer)
	assert.Less(t, posNewer, posOlder, "newer post listed before older")
}

// TestE2E_ValidationRejected verifies bad input never persists.
func TestE2E_ValidationRejected(t *testing.T) {
	before := ListPosts(t).Count

	status, env := HTTPJSON(t, http.MethodPost, baseURL+"/api/posts/create", map[string]string{
		"title": "No Content Here",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", env.Error)

	assert.Equal(t, before, ListPosts(t).Count)
}

// TestE2E_Discovery verifies the feed, sitemap, and OpenAPI endpoints.
func TestE2E_Discovery(t *testing.T) {
	CreatePost(t, "Discovery Post", "body")

	resp := HTTPGet(t, baseURL+"/feed.xml")
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "<rss"))

	resp = HTTPGet(t, baseURL+"/sitemap.xml")
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "discovery-post"))

	resp = HTTPGet(t, baseURL+"/openapi.json")
	resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}
