package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostStatusPublished marks content visible to readers and the sitemap.
const PostStatusPublished = "published"

// Post is a blog post or static page.
type Post struct {
	ID          int64
	Slug        string
	Title       string
	HTML        string
	Page        bool
	Status      string
	PublishedAt *time.Time
	UpdatedAt   time.Time
}

// InsertPost stores a new post and returns its id.
func (s *Store) InsertPost(ctx context.Context, post Post) (int64, error) {
	var published any
	if post.PublishedAt != nil {
		published = post.PublishedAt.UTC().Format(time.RFC3339Nano)
	}
	page := 0
	if post.Page {
		page = 1
	}
	status := post.Status
	if status == "" {
		status = "draft"
	}
	res, err := s.execWithRetry(ctx,
		`INSERT INTO posts (slug, title, html, page, status, published_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		post.Slug, post.Title, post.HTML, page, status, published, nowString(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert post %q: %w", post.Slug, err)
	}
	return res.LastInsertId()
}

const postColumns = `id, slug, title, html, page, status, published_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var (
		p          Post
		pageFlag   int
		published  sql.NullString
		updatedRaw string
	)
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.HTML, &pageFlag, &p.Status, &published, &updatedRaw); err != nil {
		return Post{}, err
	}
	p.Page = pageFlag != 0
	if published.Valid {
		if ts, err := parseTimeString(published.String); err == nil {
			p.PublishedAt = &ts
		}
	}
	if ts, err := parseTimeString(updatedRaw); err == nil {
		p.UpdatedAt = ts
	}
	return p, nil
}

// PublishedPosts returns published content, newest first. pages selects
// static pages instead of posts.
func (s *Store) PublishedPosts(ctx context.Context, pages bool) ([]Post, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	page := 0
	if pages {
		page = 1
	}
	rows, err := db.QueryContext(ctx, `
        SELECT `+postColumns+`
        FROM posts
        WHERE status = ? AND page = ?
        ORDER BY published_at DESC, id DESC`,
		PostStatusPublished, page,
	)
	if err != nil {
		return nil, fmt.Errorf("query published posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// PublishedPost returns the published post or page with slug.
func (s *Store) PublishedPost(ctx context.Context, slug string) (Post, error) {
	db, err := s.conn()
	if err != nil {
		return Post{}, err
	}
	row := db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE slug = ? AND status = ?`,
		slug, PostStatusPublished,
	)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("get post %q: %w", slug, err)
	}
	return p, nil
}
