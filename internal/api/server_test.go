package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luukumag/article-preview/internal/article"
	"github.com/luukumag/article-preview/internal/config"
	"github.com/luukumag/article-preview/internal/preview"
	"github.com/luukumag/article-preview/internal/storage"
	"github.com/luukumag/article-preview/internal/storage/memory"
)

const (
	crawlerUA = "facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)"
	browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/537.36 Chrome/120.0 Safari/537.36"
	edgePath  = "/functions/v1/article-preview"
)

func testConfig() config.Config {
	return config.Config{
		Site: config.SiteConfig{
			Domain:            "luukumag.com",
			Name:              "Luuku Magazine",
			TwitterHandle:     "@luukumag",
			FallbackAuthor:    "Luuku Magazine Editorial Team",
			FallbackImagePath: "/logo.png",
			FacebookAppID:     "000000000000000",
			Locale:            "en_US",
		},
		Routes: config.RoutesConfig{EdgePath: edgePath},
	}
}

func newTestServer(t *testing.T, pinger article.Pinger) *Server {
	t.Helper()

	slug := "hello-world"
	percentSlug := "50%25-off"
	slashSlug := "a/b"
	excerpt := "<p>Hello <b>readers</b></p>"
	store := memory.NewArticleStore(
		article.Article{
			ID:      "4b0e3c56-2f6d-4e5b-9c1a-7f8e9d0a1b2c",
			Slug:    &slug,
			Title:   "Hello World",
			Excerpt: &excerpt,
		},
		article.Article{ID: "5c1f4d67-3a7e-4f6c-8d2b-8a9f0e1b2c3d", Slug: &percentSlug, Title: "Half Off"},
		article.Article{ID: "6d2a5e78-4b8f-4a7d-9e3c-9b0a1f2c3d4e", Slug: &slashSlug, Title: "Slashed"},
	)
	cfg := testConfig()
	resolver := preview.NewResolver(store, preview.SiteFromConfig(cfg.Site), zap.NewNop())
	return NewServer(resolver, pinger, cfg, zap.NewNop())
}

func do(t *testing.T, s *Server, method, target, ua string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(t, nil), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(t, nil), http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())

	rec = do(t, newTestServer(t, memory.NewArticleStore()), http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzUnavailable(t *testing.T) {
	t.Parallel()

	p := &storage.MockProvider{}
	p.On("Ping", mock.Anything).Return(errors.New("connection refused"))

	rec := do(t, newTestServer(t, p), http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
	p.AssertExpectations(t)
}

func TestMissingIdentifier(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	for _, target := range []string{"/api/article", "/api/article/", edgePath, edgePath + "?id=", edgePath + "?id=%20%20"} {
		for _, ua := range []string{crawlerUA, browserUA, ""} {
			rec := do(t, s, http.MethodGet, target, ua)
			require.Equal(t, http.StatusBadRequest, rec.Code, "%s (%q)", target, ua)
			assert.Equal(t, preview.ContentTypePlain, rec.Header().Get("Content-Type"))
			assert.Equal(t, "Article ID required", rec.Body.String())
		}
	}
}

func TestHumanGetsRedirect(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	for _, target := range []string{"/api/article/hello-world", edgePath + "?id=hello-world"} {
		rec := do(t, s, http.MethodGet, target, browserUA)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, preview.ContentTypeHTML, rec.Header().Get("Content-Type"))
		assert.Empty(t, rec.Header().Get("Cache-Control"))
		assert.Contains(t, rec.Body.String(), `content="0;url=/articles/hello-world"`)
	}
}

func TestCrawlerGetsPreviewOnBothRoutes(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	byPath := do(t, s, http.MethodGet, "/api/article/hello-world", crawlerUA)
	byQuery := do(t, s, http.MethodGet, edgePath+"?id=hello-world", crawlerUA)

	for _, rec := range []*httptest.ResponseRecorder{byPath, byQuery} {
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, preview.ContentTypeHTML, rec.Header().Get("Content-Type"))
		assert.Equal(t, preview.CrawlerCacheControl, rec.Header().Get("Cache-Control"))
	}
	assert.Equal(t, byPath.Body.String(), byQuery.Body.String())

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(byPath.Body.String()))
	require.NoError(t, err)
	title, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	assert.Equal(t, "Hello World", title)
	desc, _ := doc.Find(`meta[property="og:description"]`).Attr("content")
	assert.Equal(t, "Hello readers", desc)
	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	assert.Equal(t, "https://www.luukumag.com/articles/hello-world", canonical)
}

func TestCrawlerLooksUpByID(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(t, nil), http.MethodGet, "/api/article/4B0E3C56-2F6D-4E5B-9C1A-7F8E9D0A1B2C", "Twitterbot/1.0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://www.luukumag.com/articles/hello-world")
}

func TestCrawlerNotFound(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(t, nil), http.MethodGet, "/api/article/nope", crawlerUA)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, preview.ContentTypeHTML, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Article Not Found")
	assert.Empty(t, rec.Header().Get("Cache-Control"))
}

func TestHeadIsServedLikeGet(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(t, nil), http.MethodHead, "/api/article/hello-world", crawlerUA)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, preview.ContentTypeHTML, rec.Header().Get("Content-Type"))
	assert.Equal(t, preview.CrawlerCacheControl, rec.Header().Get("Cache-Control"))
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(t, nil), http.MethodGet, "/healthz", "")
	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	require.NoError(t, err)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	do(t, s, http.MethodGet, "/api/article/hello-world", browserUA)

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "preview_responses_total")
}

func TestRecoverMiddleware(t *testing.T) {
	t.Parallel()

	h := recoverMiddleware(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, preview.ContentTypeHTML, rec.Header().Get("Content-Type"))
	assert.Equal(t, string(preview.ErrorResponse().Body), rec.Body.String())
}

func TestRequestIDFromContext(t *testing.T) {
	t.Parallel()

	assert.Empty(t, requestIDFromContext(context.Background()))
	ctx := context.WithValue(context.Background(), requestIDKey{}, "abc")
	assert.Equal(t, "abc", requestIDFromContext(ctx))
}

func TestPercentInIdentifierMatchesOnBothRoutes(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	byPath := do(t, s, http.MethodGet, "/api/article/50%2525-off", crawlerUA)
	byQuery := do(t, s, http.MethodGet, edgePath+"?id=50%2525-off", crawlerUA)

	require.Equal(t, http.StatusOK, byPath.Code)
	require.Equal(t, http.StatusOK, byQuery.Code)
	assert.Equal(t, byQuery.Body.String(), byPath.Body.String())
	assert.Contains(t, byPath.Body.String(), "https://www.luukumag.com/articles/50%2525-off")

	for _, target := range []string{"/api/article/50%2525-off", edgePath + "?id=50%2525-off"} {
		rec := do(t, s, http.MethodGet, target, browserUA)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Contains(t, rec.Body.String(), `content="0;url=/articles/50%2525-off"`, target)
	}
}

func TestEscapedSlashInPathIdentifier(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	byPath := do(t, s, http.MethodGet, "/api/article/a%2Fb", crawlerUA)
	byQuery := do(t, s, http.MethodGet, edgePath+"?id=a%2Fb", crawlerUA)

	require.Equal(t, http.StatusOK, byPath.Code)
	require.Equal(t, http.StatusOK, byQuery.Code)
	assert.Equal(t, byQuery.Body.String(), byPath.Body.String())
}
