package web

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"inkwell/internal/apps"
	"inkwell/internal/config"
	"inkwell/internal/logging"
	"inkwell/internal/settings"
	"inkwell/internal/sitemap"
	"inkwell/internal/store"
)

var sitemapDocuments = []string{sitemap.IndexDocument, sitemap.PostsDocument, sitemap.PagesDocument}

type handlers struct {
	cfg      *config.Config
	settings Settings
	content  Content
	sitemap  Sitemaps
	apps     AppLister
	hub      *logging.StreamHub
	views    *views
	logger   *slog.Logger
}

type siteView struct {
	Title       string
	Description string
	URL         string
}

type postView struct {
	Slug        string
	Title       string
	URL         string
	HTML        template.HTML
	Page        bool
	PublishedAt *time.Time
}

type pageData struct {
	Site  siteView
	Posts []postView
	Post  *postView
}

type adminData struct {
	Site           siteView
	Theme          string
	InstallationID string
	Apps           []apps.App
	Events         []logging.LogEvent
}

// LogsResponse is the /api/logs payload.
type LogsResponse struct {
	Events []logging.LogEvent `json:"events"`
	Next   uint64             `json:"next"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) index(c *gin.Context) {
	ctx := c.Request.Context()
	posts, err := h.content.PublishedPosts(ctx, false)
	if err != nil {
		h.fail(c, err)
		return
	}
	if limit := h.postsPerPage(c); limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	data := pageData{Site: h.site(c)}
	for _, p := range posts {
		data.Posts = append(data.Posts, h.postView(p))
	}
	h.render(c, h.views.site, "index.html", data)
}

func (h *handlers) post(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.String(http.StatusNotFound, "404 page not found")
		return
	}
	path := c.Request.URL.Path
	slug := strings.Trim(path, "/")
	if slug == "" || strings.Contains(slug, "/") {
		c.String(http.StatusNotFound, "404 page not found")
		return
	}
	if !strings.HasSuffix(path, "/") {
		c.Redirect(http.StatusMovedPermanently, "/"+slug+"/")
		return
	}

	post, err := h.content.PublishedPost(c.Request.Context(), slug)
	if errors.Is(err, store.ErrNotFound) {
		c.String(http.StatusNotFound, "404 page not found")
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	view := h.postView(post)
	h.render(c, h.views.site, "post.html", pageData{Site: h.site(c), Post: &view})
}

func (h *handlers) sitemapDocument(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, ok := h.sitemap.Document(name)
		if !ok {
			c.String(http.StatusNotFound, "404 page not found")
			return
		}
		c.Data(http.StatusOK, "application/xml; charset=utf-8", doc)
	}
}

func (h *handlers) admin(c *gin.Context) {
	data := adminData{
		Site:  h.site(c),
		Theme: h.views.theme,
	}
	if hash, err := readSetting(c.Request.Context(), h.settings, settings.KeyDBHash); err == nil {
		data.InstallationID = hash
	}
	if h.apps != nil {
		data.Apps = h.apps.Loaded()
	}
	data.Events = h.hub.Tail(20)
	h.render(c, h.views.admin, "index.html", data)
}

func (h *handlers) logs(c *gin.Context) {
	since, _ := strconv.ParseUint(c.Query("since"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 {
		limit = 200
	}

	level := strings.ToLower(strings.TrimSpace(c.Query("level")))
	component := strings.TrimSpace(c.Query("component"))

	var events []logging.LogEvent
	for _, evt := range h.hub.Tail(0) {
		if evt.Sequence <= since {
			continue
		}
		if level != "" && levelRank(evt.Level) < levelRank(level) {
			continue
		}
		if component != "" && !strings.EqualFold(evt.Component, component) {
			continue
		}
		events = append(events, evt)
	}
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	next := since
	if len(events) > 0 {
		next = events[len(events)-1].Sequence
	}
	c.JSON(http.StatusOK, LogsResponse{Events: events, Next: next})
}

func levelRank(level string) int {
	switch strings.ToLower(level) {
	case "debug":
		return 0
	case "warn", "warning":
		return 2
	case "error":
		return 3
	default:
		return 1
	}
}

func (h *handlers) render(c *gin.Context, tmpl *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *handlers) fail(c *gin.Context, err error) {
	logging.ErrorWithContext(logging.WithContext(c.Request.Context(), h.logger), "request failed", "request_error",
		logging.String("path", c.Request.URL.Path),
		logging.Error(err),
	)
	c.String(http.StatusInternalServerError, "500 internal server error")
}

func (h *handlers) site(c *gin.Context) siteView {
	ctx := c.Request.Context()
	view := siteView{Title: h.cfg.Site.Title, URL: h.cfg.Site.URL}
	if title, err := readSetting(ctx, h.settings, settings.KeyTitle); err == nil && title != "" {
		view.Title = title
	}
	if desc, err := readSetting(ctx, h.settings, settings.KeyDescription); err == nil {
		view.Description = desc
	}
	return view
}

func (h *handlers) postsPerPage(c *gin.Context) int {
	raw, err := readSetting(c.Request.Context(), h.settings, settings.KeyPostsPerPage)
	if err != nil {
		return 0
	}
	n, _ := strconv.Atoi(raw)
	return n
}

func (h *handlers) postView(p store.Post) postView {
	return postView{
		Slug:        p.Slug,
		Title:       p.Title,
		URL:         "/" + p.Slug + "/",
		HTML:        template.HTML(p.HTML),
		Page:        p.Page,
		PublishedAt: p.PublishedAt,
	}
}
