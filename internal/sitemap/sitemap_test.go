package sitemap

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"inkwell/internal/store"
)

type staticSource struct {
	posts, pages []store.Post
	err          error
}

func (s staticSource) PublishedPosts(_ context.Context, pages bool) ([]store.Post, error) {
	if s.err != nil {
		return nil, s.err
	}
	if pages {
		return s.pages, nil
	}
	return s.posts, nil
}

func TestRefreshRendersDocuments(t *testing.T) {
	updated := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	src := staticSource{
		posts: []store.Post{{Slug: "hello-world", UpdatedAt: updated}},
		pages: []store.Post{{Slug: "about", UpdatedAt: updated.Add(-time.Hour)}},
	}
	g := New(src, "https://blog.example.com/", true, nil)
	if err := g.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	index, ok := g.Document(IndexDocument)
	if !ok {
		t.Fatal("index document missing")
	}
	for _, want := range []string{
		"<sitemapindex",
		"<loc>https://blog.example.com/sitemap-posts.xml</loc>",
		"<loc>https://blog.example.com/sitemap-pages.xml</loc>",
		"<lastmod>2024-03-01T12:00:00Z</lastmod>",
	} {
		if !strings.Contains(string(index), want) {
			t.Fatalf("index missing %q:\n%s", want, index)
		}
	}

	posts, _ := g.Document(PostsDocument)
	if !strings.Contains(string(posts), "<loc>https://blog.example.com/hello-world/</loc>") {
		t.Fatalf("unexpected posts sitemap:\n%s", posts)
	}
	pages, _ := g.Document(PagesDocument)
	if !strings.Contains(string(pages), "<lastmod>2024-03-01T11:00:00Z</lastmod>") {
		t.Fatalf("unexpected pages sitemap:\n%s", pages)
	}
	if g.Generated().IsZero() {
		t.Fatal("expected generation time")
	}
}

func TestDisabledGeneratorServesNothing(t *testing.T) {
	g := New(staticSource{err: errors.New("unused")}, "http://x", false, nil)
	if err := g.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, ok := g.Document(IndexDocument); ok {
		t.Fatal("disabled generator should not render")
	}
}

func TestInitSourceFailure(t *testing.T) {
	boom := errors.New("boom")
	g := New(staticSource{err: boom}, "http://x", true, nil)
	if err := g.Init(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("unexpected error: %v", err)
	}
}

// gatedSource blocks its first read until release is closed.
type gatedSource struct {
	mu      sync.Mutex
	posts   []store.Post
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (s *gatedSource) PublishedPosts(_ context.Context, pages bool) ([]store.Post, error) {
	if pages {
		return nil, nil
	}
	s.mu.Lock()
	s.calls++
	first := s.calls == 1
	posts := append([]store.Post(nil), s.posts...)
	s.mu.Unlock()
	if first {
		close(s.entered)
		<-s.release
	}
	return posts, nil
}

func (s *gatedSource) add(p store.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, p)
}

func TestSlowInitDoesNotOverwriteLaterRefresh(t *testing.T) {
	src := &gatedSource{entered: make(chan struct{}), release: make(chan struct{})}
	g := New(src, "https://blog.example.com", true, nil)

	initDone := make(chan error, 1)
	go func() { initDone <- g.Init(context.Background()) }()
	<-src.entered

	// Init has read an empty store; a post lands and Refresh runs.
	src.add(store.Post{Slug: "welcome"})
	refreshDone := make(chan error, 1)
	go func() { refreshDone <- g.Refresh(context.Background()) }()
	time.Sleep(20 * time.Millisecond)
	close(src.release)

	for _, done := range []chan error{initDone, refreshDone} {
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("render failed: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("render did not finish")
		}
	}

	posts, _ := g.Document(PostsDocument)
	if !strings.Contains(string(posts), "https://blog.example.com/welcome/") {
		t.Fatalf("stale render replaced the refreshed sitemap:\n%s", posts)
	}
}
