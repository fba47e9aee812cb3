// Package sitemap renders the XML sitemaps for published content.
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"inkwell/internal/logging"
	"inkwell/internal/store"
)

// Document names, also used as URL paths.
const (
	IndexDocument = "sitemap.xml"
	PostsDocument = "sitemap-posts.xml"
	PagesDocument = "sitemap-pages.xml"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Source lists published content.
type Source interface {
	PublishedPosts(ctx context.Context, pages bool) ([]store.Post, error)
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []entry  `xml:"url"`
}

type indexSet struct {
	XMLName  xml.Name `xml:"sitemapindex"`
	Xmlns    string   `xml:"xmlns,attr"`
	Sitemaps []entry  `xml:"sitemap"`
}

type entry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Generator keeps rendered sitemaps in memory.
type Generator struct {
	source  Source
	baseURL string
	enabled bool
	logger  *slog.Logger

	// refreshMu serialises whole renders so a slow render never replaces
	// documents built from a later read.
	refreshMu sync.Mutex
	mu        sync.RWMutex
	documents map[string][]byte
	generated time.Time
}

// New returns a generator for siteURL. A disabled generator serves nothing.
func New(source Source, siteURL string, enabled bool, logger *slog.Logger) *Generator {
	return &Generator{
		source:  source,
		baseURL: strings.TrimRight(siteURL, "/"),
		enabled: enabled,
		logger:  logging.NewComponentLogger(logger, "sitemap"),
	}
}

// Enabled reports whether sitemaps are served.
func (g *Generator) Enabled() bool { return g.enabled }

// Init renders the initial sitemaps.
func (g *Generator) Init(ctx context.Context) error {
	if !g.enabled {
		g.logger.Debug("sitemap disabled")
		return nil
	}
	return g.Refresh(ctx)
}

// Refresh re-renders every document from the source.
func (g *Generator) Refresh(ctx context.Context) error {
	if !g.enabled {
		return nil
	}
	g.refreshMu.Lock()
	defer g.refreshMu.Unlock()

	posts, err := g.source.PublishedPosts(ctx, false)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}
	pages, err := g.source.PublishedPosts(ctx, true)
	if err != nil {
		return fmt.Errorf("list pages: %w", err)
	}

	now := time.Now().UTC()
	postsXML, postsMod, err := g.renderURLSet(posts)
	if err != nil {
		return err
	}
	pagesXML, pagesMod, err := g.renderURLSet(pages)
	if err != nil {
		return err
	}
	index := indexSet{Xmlns: xmlns, Sitemaps: []entry{
		{Loc: g.baseURL + "/" + PagesDocument, LastMod: lastMod(pagesMod, now)},
		{Loc: g.baseURL + "/" + PostsDocument, LastMod: lastMod(postsMod, now)},
	}}
	indexXML, err := marshal(index)
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.documents = map[string][]byte{
		IndexDocument: indexXML,
		PostsDocument: postsXML,
		PagesDocument: pagesXML,
	}
	g.generated = now
	g.mu.Unlock()

	g.logger.Info("sitemaps generated",
		logging.String(logging.FieldEventType, "sitemap_generated"),
		logging.Int("posts", len(posts)),
		logging.Int("pages", len(pages)),
	)
	return nil
}

// Document returns a rendered sitemap by name.
func (g *Generator) Document(name string) ([]byte, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	doc, ok := g.documents[name]
	return doc, ok
}

// Generated is when the documents were last rendered.
func (g *Generator) Generated() time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.generated
}

func (g *Generator) renderURLSet(posts []store.Post) ([]byte, time.Time, error) {
	set := urlSet{Xmlns: xmlns}
	var newest time.Time
	for _, p := range posts {
		modified := p.UpdatedAt
		if modified.IsZero() && p.PublishedAt != nil {
			modified = *p.PublishedAt
		}
		if modified.After(newest) {
			newest = modified
		}
		set.URLs = append(set.URLs, entry{
			Loc:     g.baseURL + "/" + p.Slug + "/",
			LastMod: lastMod(modified, time.Time{}),
		})
	}
	data, err := marshal(set)
	return data, newest, err
}

func marshal(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func lastMod(t, fallback time.Time) string {
	if t.IsZero() {
		t = fallback
	}
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
