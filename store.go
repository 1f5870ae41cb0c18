package landscaping

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Jt-schofield1/landscaping-website/content"
	"github.com/Jt-schofield1/landscaping-website/storage"
)

var notBlank = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New(blankField)
	}
	return nil
})

func canonicalSlug(value interface{}) error {
	s, _ := value.(string)
	if s != "" && !content.IsSlug(s) {
		return errors.New("must contain only lowercase letters, digits and single hyphens")
	}
	return nil
}

var imageURLRule = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s != "" && content.SafeURL(s) == "" {
		return errors.New("must be a relative path or an http(s) URL")
	}
	return nil
})

// Validate checks the required post fields. It runs before any store call.
func (in PostInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, notBlank),
		validation.Field(&in.Slug, notBlank, validation.By(canonicalSlug)),
		validation.Field(&in.Excerpt, notBlank),
		validation.Field(&in.Content, notBlank),
		validation.Field(&in.ImageURL, imageURLRule),
	)
}

// normalize trims the single-line fields and derives a missing slug from the
// title.
func (in PostInput) normalize() PostInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.Slug == "" {
		in.Slug = content.Slugify(in.Title)
	}
	return in
}

// Store wraps a SQLite database and provides CRUD operations for blog posts
// and uploaded image metadata.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets public reads proceed during admin writes; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    excerpt TEXT NOT NULL,
    content TEXT NOT NULL,
    image_url TEXT,
    published INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts (created_at DESC);
CREATE TABLE IF NOT EXISTS images (
    object_key TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    content_type TEXT NOT NULL,
    cache_control TEXT NOT NULL,
    size INTEGER NOT NULL,
    url TEXT NOT NULL,
    uploaded_at INTEGER NOT NULL
);
`)
	return err
}

const postColumns = `id, title, slug, excerpt, content, image_url, published, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (BlogPost, error) {
	var (
		p                BlogPost
		imageURL         sql.NullString
		published        int
		created, updated int64
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &imageURL, &published, &created, &updated); err != nil {
		return BlogPost{}, err
	}
	p.ImageURL = imageURL.String
	p.Published = published == 1
	p.CreatedAt = time.Unix(0, created).UTC()
	p.UpdatedAt = time.Unix(0, updated).UTC()
	return p, nil
}

func (s *Store) queryPosts(ctx context.Context, query string, args ...any) ([]BlogPost, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []BlogPost{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListAllPosts returns every post (published and drafts), newest first.
// Posts created in the same instant are ordered by insertion, latest first.
func (s *Store) ListAllPosts(ctx context.Context) ([]BlogPost, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, rowid DESC`)
}

// ListPublishedPosts returns published posts, newest first.
func (s *Store) ListPublishedPosts(ctx context.Context) ([]BlogPost, error) {
	return s.queryPosts(ctx, `SELECT `+postColumns+` FROM posts WHERE published = 1 ORDER BY created_at DESC, rowid DESC`)
}

// GetPost returns a post by id regardless of published status.
func (s *Store) GetPost(ctx context.Context, id string) (BlogPost, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return BlogPost{}, ErrNotFound
	}
	return p, err
}

// GetPublishedPost returns a published post by slug. Drafts are reported as
// ErrNotFound.
func (s *Store) GetPublishedPost(ctx context.Context, slug string) (BlogPost, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ? AND published = 1`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return BlogPost{}, ErrNotFound
	}
	return p, err
}

// CreatePost validates in and inserts a new post. Published defaults to false.
func (s *Store) CreatePost(ctx context.Context, in PostInput) (BlogPost, error) {
	in = in.normalize()
	if err := in.Validate(); err != nil {
		return BlogPost{}, newValidationError(err)
	}
	now := s.now().UTC()
	p := BlogPost{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Slug:      in.Slug,
		Excerpt:   in.Excerpt,
		Content:   in.Content,
		ImageURL:  in.ImageURL,
		Published: in.Published != nil && *in.Published,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Slug, p.Excerpt, p.Content, nullString(p.ImageURL), boolInt(p.Published), now.UnixNano(), now.UnixNano())
	if err != nil {
		if isUniqueViolation(err, "slug") {
			return BlogPost{}, ErrSlugTaken
		}
		return BlogPost{}, fmt.Errorf("insert post: %w", err)
	}
	return p, nil
}

// UpdatePost replaces every editable field of post id. A nil Published keeps
// the stored value. created_at never changes; updated_at is refreshed even
// when nothing else does.
func (s *Store) UpdatePost(ctx context.Context, id string, in PostInput) (BlogPost, error) {
	if strings.TrimSpace(id) == "" {
		return BlogPost{}, fieldError("id", blankField)
	}
	in = in.normalize()
	if err := in.Validate(); err != nil {
		return BlogPost{}, newValidationError(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return BlogPost{}, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	current, err := scanPost(tx.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BlogPost{}, ErrNotFound
		}
		return BlogPost{}, err
	}

	p := current
	p.Title = in.Title
	p.Slug = in.Slug
	p.Excerpt = in.Excerpt
	p.Content = in.Content
	p.ImageURL = in.ImageURL
	if in.Published != nil {
		p.Published = *in.Published
	}
	p.UpdatedAt = s.now().UTC()
	if p.UpdatedAt.Before(p.CreatedAt) {
		p.UpdatedAt = p.CreatedAt
	}

	_, err = tx.ExecContext(ctx, `UPDATE posts SET title = ?, slug = ?, excerpt = ?, content = ?, image_url = ?, published = ?, updated_at = ? WHERE id = ?`,
		p.Title, p.Slug, p.Excerpt, p.Content, nullString(p.ImageURL), boolInt(p.Published), p.UpdatedAt.UnixNano(), id)
	if err != nil {
		if isUniqueViolation(err, "slug") {
			return BlogPost{}, ErrSlugTaken
		}
		return BlogPost{}, fmt.Errorf("update post: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return BlogPost{}, err
	}
	return p, nil
}

// DeletePost removes a post by id. Deleting an unknown id is ErrNotFound.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveImage records metadata for a stored object. Keys are never reused.
func (s *Store) SaveImage(ctx context.Context, img Image) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO images (object_key, original_name, content_type, cache_control, size, url, uploaded_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		img.Key, img.OriginalName, img.ContentType, img.CacheControl, img.Size, img.URL, img.UploadedAt.UnixNano())
	if err != nil {
		if isUniqueViolation(err, "object_key") {
			return storage.ErrObjectExists
		}
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

const imageColumns = `object_key, original_name, content_type, cache_control, size, url, uploaded_at`

func scanImage(row rowScanner) (Image, error) {
	var (
		img      Image
		uploaded int64
	)
	if err := row.Scan(&img.Key, &img.OriginalName, &img.ContentType, &img.CacheControl, &img.Size, &img.URL, &uploaded); err != nil {
		return Image{}, err
	}
	img.UploadedAt = time.Unix(0, uploaded).UTC()
	return img, nil
}

// GetImage returns the metadata recorded for key.
func (s *Store) GetImage(ctx context.Context, key string) (Image, error) {
	img, err := scanImage(s.db.QueryRowContext(ctx, `SELECT `+imageColumns+` FROM images WHERE object_key = ?`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return Image{}, ErrNotFound
	}
	return img, err
}

// ListImages returns all uploaded images, newest first.
func (s *Store) ListImages(ctx context.Context) ([]Image, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+imageColumns+` FROM images ORDER BY uploaded_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []Image{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// violation on column.
func isUniqueViolation(err error, column string) bool {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, "."+column)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
