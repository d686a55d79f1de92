// Package e2e provides end-to-end testing utilities for Inklet.
package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// Wire Types
// =============================================================================

// Envelope mirrors the API's response envelope.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// PostData mirrors the post payload in responses.
type PostData struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Slug      string `json:"slug"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ListData mirrors the list payload.
type ListData struct {
	Count int        `json:"count"`
	Posts []PostData `json:"posts"`
}

// =============================================================================
// HTTP Helpers
// =============================================================================

// HTTPGet performs a GET request and fails the test on transport errors.
func HTTPGet(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := testClient.Get(url)
	require.NoError(t, err)
	return resp
}

// HTTPJSON performs a request with a JSON body and decodes the envelope.
func HTTPJSON(t *testing.T, method, url string, body any) (int, Envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := testClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

// CreatePost creates a post through the API and returns its payload.
func CreatePost(t *testing.T, title, content string) PostData {
	t.Helper()

	status, env := HTTPJSON(t, http.MethodPost, baseURL+"/api/posts/create", map[string]string{
		"title":   title,
		"content": content,
	})
	require.Equal(t, http.StatusCreated, status, "message: %s", env.Message)
	require.True(t, env.Success)

	var post PostData
	require.NoError(t, json.Unmarshal(env.Data, &post))
	return post
}

// GetPost fetches a post by slug, returning the status and payload.
func GetPost(t *testing.T, slug string) (int, PostData) {
	t.Helper()

	status, env := HTTPJSON(t, http.MethodGet, baseURL+"/api/posts/"+slug, nil)
	var post PostData
	if env.Success {
		require.NoError(t, json.Unmarshal(env.Data, &post))
	}
	return status, post
}

// DeletePost removes a post by slug.
func DeletePost(t *testing.T, slug string) (int, Envelope) {
	t.Helper()
	return HTTPJSON(t, http.MethodDelete, baseURL+"/api/posts/"+slug, nil)
}

// ListPosts fetches the full post list.
func ListPosts(t *testing.T) ListData {
	t.Helper()

	status, env := HTTPJSON(t, http.MethodGet, baseURL+"/api/posts/", nil)
	require.Equal(t, http.StatusOK, status)

	var list ListData
	require.NoError(t, json.Unmarshal(env.Data, &list))
	return list
}
