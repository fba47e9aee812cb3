package web

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/config"
	"inkwell/internal/logging"
	"inkwell/internal/settings"
	"inkwell/internal/store"
	"inkwell/internal/testsupport"
)

type mapSettings map[string]string

func (m mapSettings) Read(_ context.Context, key string, _ settings.Access) (settings.Setting, error) {
	v, ok := m[key]
	if !ok {
		return settings.Setting{}, settings.ErrNotFound
	}
	return settings.Setting{Key: key, Value: &v}, nil
}

type memContent struct {
	posts []store.Post
	pages []store.Post
}

func (m memContent) PublishedPosts(_ context.Context, pages bool) ([]store.Post, error) {
	if pages {
		return m.pages, nil
	}
	return m.posts, nil
}

func (m memContent) PublishedPost(_ context.Context, slug string) (store.Post, error) {
	for _, p := range append(append([]store.Post(nil), m.posts...), m.pages...) {
		if p.Slug == slug {
			return p, nil
		}
	}
	return store.Post{}, store.ErrNotFound
}

type memSitemaps map[string][]byte

func (m memSitemaps) Enabled() bool { return m != nil }

func (m memSitemaps) Document(name string) ([]byte, bool) {
	doc, ok := m[name]
	return doc, ok
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.ThemePath = t.TempDir()
	return &cfg
}

func testBuilder() *Builder {
	published := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return &Builder{
		Settings: mapSettings{
			settings.KeyTitle:        "Field Notes",
			settings.KeyDescription:  "Short essays",
			settings.KeyPostsPerPage: "2",
			settings.KeyActiveTheme:  "casper",
			settings.KeyDBHash:       "hash-123",
		},
		Content: memContent{
			posts: []store.Post{
				{Slug: "third", Title: "Third", HTML: "<p>3</p>", PublishedAt: &published},
				{Slug: "second", Title: "Second", HTML: "<p>2</p>", PublishedAt: &published},
				{Slug: "first", Title: "First", HTML: "<p>1</p>", PublishedAt: &published},
			},
			pages: []store.Post{{Slug: "about", Title: "About", HTML: "<p>me</p>", Page: true}},
		},
	}
}

func build(t *testing.T, b *Builder, cfg *config.Config) http.Handler {
	t.Helper()
	handler, err := b.Build(context.Background(), cfg)
	require.NoError(t, err)
	return handler
}

func do(handler http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[http.CanonicalHeaderKey(k)] = v
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestBuildRegistersWoffMIME(t *testing.T) {
	build(t, testBuilder(), testConfig(t))
	assert.Equal(t, "application/font-woff", mime.TypeByExtension(".woff"))
}

func TestMIMERegistrationFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	addMIMEType(logger, "woff", "application/font-woff")
	assert.Contains(t, buf.String(), "register mime type failed")
	assert.Contains(t, buf.String(), "extension=woff")
}

func TestCompressFollowsConfig(t *testing.T) {
	gzipHeader := http.Header{"Accept-Encoding": []string{"gzip"}}

	enabled := build(t, testBuilder(), testConfig(t))
	rec := do(enabled, http.MethodGet, "/", gzipHeader)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	off := false
	cfg := testConfig(t)
	cfg.Server.Compress = &off
	disabled := build(t, testBuilder(), cfg)
	rec = do(disabled, http.MethodGet, "/", gzipHeader)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
}

func TestIndexUsesBuiltinThemeAndPostsPerPage(t *testing.T) {
	handler := build(t, testBuilder(), testConfig(t))
	rec := do(handler, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Field Notes")
	assert.Contains(t, body, "Short essays")
	assert.Contains(t, body, `href="/third/"`)
	assert.Contains(t, body, `href="/second/"`)
	assert.NotContains(t, body, `href="/first/"`)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	css := do(handler, http.MethodGet, "/assets/style.css", nil)
	assert.Equal(t, http.StatusOK, css.Code)
}

func TestPostRoutes(t *testing.T) {
	handler := build(t, testBuilder(), testConfig(t))

	rec := do(handler, http.MethodGet, "/second", nil)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/second/", rec.Header().Get("Location"))

	rec = do(handler, http.MethodGet, "/second/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<p>2</p>")

	rec = do(handler, http.MethodGet, "/about/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<p>me</p>")

	assert.Equal(t, http.StatusNotFound, do(handler, http.MethodGet, "/missing/", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(handler, http.MethodGet, "/a/b/", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(handler, http.MethodPost, "/second/", nil).Code)
}

func TestInstalledThemeIsServed(t *testing.T) {
	cfg := testConfig(t)
	testsupport.WriteTheme(t, cfg.Paths.ThemePath, "casper", map[string]string{
		"index.html":       `CASPER {{.Site.Title}}`,
		"post.html":        `POST {{.Post.Title}}`,
		"assets/font.woff": "woff",
	})

	handler := build(t, testBuilder(), cfg)
	rec := do(handler, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CASPER Field Notes", rec.Body.String())

	font := do(handler, http.MethodGet, "/assets/font.woff", nil)
	require.Equal(t, http.StatusOK, font.Code)
	assert.Equal(t, "application/font-woff", font.Header().Get("Content-Type"))
}

func TestBrokenThemeFailsBuild(t *testing.T) {
	cfg := testConfig(t)
	testsupport.WriteTheme(t, cfg.Paths.ThemePath, "casper", map[string]string{"index.html": `{{if}}`})

	_, err := testBuilder().Build(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse theme casper")
}

func TestBuildRequiresCollaborators(t *testing.T) {
	_, err := (&Builder{}).Build(context.Background(), testConfig(t))
	require.Error(t, err)
	_, err = testBuilder().Build(context.Background(), nil)
	require.Error(t, err)
}

func TestSitemapRoutes(t *testing.T) {
	b := testBuilder()
	b.Sitemap = memSitemaps{"sitemap.xml": []byte("<sitemapindex/>")}
	handler := build(t, b, testConfig(t))

	rec := do(handler, http.MethodGet, "/sitemap.xml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<sitemapindex/>", rec.Body.String())
	assert.Equal(t, http.StatusNotFound, do(handler, http.MethodGet, "/sitemap-posts.xml", nil).Code)
}

func TestAdminAndAPIRequireToken(t *testing.T) {
	hub := logging.NewStreamHub(10)
	hub.Publish(logging.LogEvent{Level: "INFO", Message: "first"})
	hub.Publish(logging.LogEvent{Level: "WARN", Message: "second"})

	b := testBuilder()
	b.Hub = hub
	cfg := testConfig(t)
	cfg.Server.APIToken = "s3cret"
	handler := build(t, b, cfg)

	assert.Equal(t, http.StatusUnauthorized, do(handler, http.MethodGet, "/admin/", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(handler, http.MethodGet, "/api/logs", nil).Code)

	auth := http.Header{"Authorization": []string{"Bearer s3cret"}}
	rec := do(handler, http.MethodGet, "/admin/", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hash-123")
	assert.Contains(t, rec.Body.String(), "second")

	rec = do(handler, http.MethodGet, "/api/logs?since=1", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	var payload LogsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Events, 1)
	assert.Equal(t, "second", payload.Events[0].Message)
	assert.Equal(t, uint64(2), payload.Next)
}

func TestHealth(t *testing.T) {
	handler := build(t, testBuilder(), testConfig(t))
	rec := do(handler, http.MethodGet, "/health", http.Header{requestIDHeader: []string{"req-1"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "req-1", rec.Header().Get(requestIDHeader))
}

func TestLogsFilterByLevelAndComponent(t *testing.T) {
	hub := logging.NewStreamHub(10)
	hub.Publish(logging.LogEvent{Level: "DEBUG", Message: "noise", Component: "boot"})
	hub.Publish(logging.LogEvent{Level: "WARN", Message: "slow ping", Component: "ping"})
	hub.Publish(logging.LogEvent{Level: "ERROR", Message: "theme broken", Component: "boot"})

	b := testBuilder()
	b.Hub = hub
	handler := build(t, b, testConfig(t))

	var payload LogsResponse
	rec := do(handler, http.MethodGet, "/api/logs?level=warn", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Events, 2)
	assert.Equal(t, "slow ping", payload.Events[0].Message)

	rec = do(handler, http.MethodGet, "/api/logs?component=BOOT&level=error", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Events, 1)
	assert.Equal(t, "theme broken", payload.Events[0].Message)
}
