package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mbocharov/go-shortlink/internal/app/service"
	"github.com/mbocharov/go-shortlink/internal/models"
	"github.com/mbocharov/go-shortlink/internal/storage"
)

type testEnv struct {
	server *httptest.Server
	client *http.Client
	cookie *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mockStorage, _ := storage.CreateMemoryStorage()
	logger := zap.NewNop()
	allocator := service.NewSlugAllocator(mockStorage, logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	links := service.NewLink(ctx, mockStorage, allocator, logger)
	summary := service.NewSummary(mockStorage, logger)
	auth := service.NewAuth("test-secret")

	srv := httptest.NewServer(Init(logger, links, summary, auth))
	t.Cleanup(srv.Close)

	return &testEnv{
		server: srv,
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// do sends a request, keeping the identity cookie across calls.
func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}

	resp, err := e.client.Do(req)
	require.NoError(t, err)

	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			e.cookie = c
		}
	}
	return resp
}

func decodeLink(t *testing.T, resp *http.Response) models.LinkResponse {
	t.Helper()
	defer resp.Body.Close()

	var link models.LinkResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&link))
	return link
}

func TestServer_CreateAndRedirect(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/shortlinks", map[string]any{
		"slug":        "launch",
		"originalUrl": "https://example.com/launch",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeLink(t, resp)
	assert.Equal(t, "launch", created.Slug)
	assert.Equal(t, models.ComputedActive, created.Status)

	resp = env.do(t, http.MethodGet, "/launch", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "https://example.com/launch", resp.Header.Get("Location"))

	resp = env.do(t, http.MethodGet, "/api/shortlinks/"+created.ID, nil)
	got := decodeLink(t, resp)
	assert.Equal(t, int64(1), got.Clicks)
}

func TestServer_QuotaExhaustionEndsRedirects(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/shortlinks", map[string]any{
		"slug":        "limited",
		"originalUrl": "https://example.com",
		"maxClicks":   2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	for i := 0; i < 2; i++ {
		resp = env.do(t, http.MethodGet, "/limited", nil)
		resp.Body.Close()
		require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode, "click %d", i+1)
	}

	resp = env.do(t, http.MethodGet, "/limited", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusGone, resp.StatusCode)
}

func TestServer_DisableStopsRedirects(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/shortlinks", map[string]any{
		"slug":        "switchable",
		"originalUrl": "https://example.com",
	})
	created := decodeLink(t, resp)

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/shortlinks/%s/disable", created.ID), nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/switchable", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/shortlinks/%s/enable", created.ID), nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/switchable", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
}

func TestServer_OwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/shortlinks", map[string]any{
		"originalUrl": "https://example.com",
	})
	created := decodeLink(t, resp)

	// Dropping the cookie makes the next request a different visitor.
	env.cookie = nil

	resp = env.do(t, http.MethodGet, "/api/shortlinks/"+created.ID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_ReservedPathsAreRoutes(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/ping", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/metrics", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Creating a link that would shadow a route is rejected outright.
	resp = env.do(t, http.MethodPost, "/api/shortlinks", map[string]any{
		"slug":        "ping",
		"originalUrl": "https://example.com",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_RootWithoutSlug(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_ListAndSummary(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		resp := env.do(t, http.MethodPost, "/api/shortlinks", map[string]any{
			"originalUrl": fmt.Sprintf("https://example.com/%d", i),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := env.do(t, http.MethodGet, "/api/shortlinks?limit=2", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page models.ListLinksResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.Meta.Total)
	assert.True(t, page.Meta.HasNextPage)

	resp = env.do(t, http.MethodGet, "/api/summary", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary models.SummaryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Equal(t, 3, summary.TotalLinks)
	assert.Equal(t, 3, summary.ActiveLinks)
}
