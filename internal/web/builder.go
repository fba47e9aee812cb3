package web

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"sync"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"inkwell/internal/apps"
	"inkwell/internal/config"
	"inkwell/internal/logging"
	"inkwell/internal/settings"
	"inkwell/internal/store"
)

// Settings reads cached settings.
type Settings interface {
	Read(ctx context.Context, key string, access settings.Access) (settings.Setting, error)
}

// Content lists published posts and pages.
type Content interface {
	PublishedPosts(ctx context.Context, pages bool) ([]store.Post, error)
	PublishedPost(ctx context.Context, slug string) (store.Post, error)
}

// Sitemaps serves rendered sitemap documents.
type Sitemaps interface {
	Enabled() bool
	Document(name string) ([]byte, bool)
}

// AppLister reports loaded apps for the admin view.
type AppLister interface {
	Loaded() []apps.App
}

// Builder builds the server handler. Sitemap, Apps, and Hub are optional.
type Builder struct {
	Settings Settings
	Content  Content
	Sitemap  Sitemaps
	Apps     AppLister
	Hub      *logging.StreamHub
	Logger   *slog.Logger
}

var mimeOnce sync.Once

func registerMIMETypes(logger *slog.Logger) {
	mimeOnce.Do(func() {
		addMIMEType(logger, ".woff", "application/font-woff")
	})
}

func addMIMEType(logger *slog.Logger, ext, typ string) {
	if err := mime.AddExtensionType(ext, typ); err != nil {
		logging.WarnWithContext(logger, "register mime type failed", "mime_register_failed",
			logging.String("extension", ext),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "assets with this extension are served with a sniffed type"),
		)
	}
}

// Build returns the handler for cfg.
func (b *Builder) Build(ctx context.Context, cfg *config.Config) (http.Handler, error) {
	if cfg == nil {
		return nil, errors.New("web: config is required")
	}
	if b.Settings == nil || b.Content == nil {
		return nil, errors.New("web: settings and content are required")
	}
	logger := logging.NewComponentLogger(b.Logger, "web")

	registerMIMETypes(logger)

	views, err := loadViews(ctx, b.Settings, cfg.Paths.ThemePath, logger)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(requestID(), requestLogger(logger), recovery(logger))
	if cfg.Server.CompressEnabled() {
		engine.Use(gzip.Gzip(gzip.DefaultCompression))
	}

	h := &handlers{
		cfg:      cfg,
		settings: b.Settings,
		content:  b.Content,
		sitemap:  b.Sitemap,
		apps:     b.Apps,
		hub:      b.Hub,
		views:    views,
		logger:   logger,
	}

	engine.GET("/health", h.health)
	engine.GET("/", h.index)
	engine.StaticFS("/assets", views.assets)
	if b.Sitemap != nil && b.Sitemap.Enabled() {
		for _, name := range sitemapDocuments {
			engine.GET("/"+name, h.sitemapDocument(name))
		}
	}

	admin := engine.Group("/admin", authMiddleware(cfg.Server.APIToken))
	admin.GET("/", h.admin)

	api := engine.Group("/api", authMiddleware(cfg.Server.APIToken))
	api.GET("/logs", h.logs)

	engine.NoRoute(h.post)

	logger.Info("server configured",
		logging.String(logging.FieldEventType, "server_configured"),
		logging.String("theme", views.theme),
		logging.Bool("compress", cfg.Server.CompressEnabled()),
	)
	return engine, nil
}
