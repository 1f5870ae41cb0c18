package landscaping

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test_blog.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fixedClock returns a clock that starts at start and advances by step on
// every call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	current := start.Add(-step)
	return func() time.Time {
		current = current.Add(step)
		return current
	}
}

func testInput(title string) PostInput {
	return PostInput{
		Title:   title,
		Excerpt: "Summary of " + title,
		Content: "**Intro**\n\nBody of " + title,
	}
}

func boolPtr(b bool) *bool { return &b }

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestCreatePostDefaults(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	got, err := s.CreatePost(ctx, testInput("Test Post"))
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if got.ID == "" {
		t.Error("ID should be assigned")
	}
	if got.Slug != "test-post" {
		t.Errorf("Slug = %q, want %q", got.Slug, "test-post")
	}
	if got.Published {
		t.Error("Published should default to false")
	}
	if !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Errorf("CreatedAt %v != UpdatedAt %v", got.CreatedAt, got.UpdatedAt)
	}
	if got.ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty", got.ImageURL)
	}

	stored, err := s.GetPost(ctx, got.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if stored.Title != "Test Post" || stored.Slug != "test-post" || stored.Published {
		t.Errorf("stored post = %+v", stored)
	}
	if !stored.CreatedAt.Equal(got.CreatedAt) || !stored.UpdatedAt.Equal(got.UpdatedAt) {
		t.Errorf("timestamps changed on read: %+v vs %+v", stored, got)
	}
}

func TestCreatePostRequiredFields(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input PostInput
		field string
	}{
		{"missing title", PostInput{Slug: "x", Excerpt: "e", Content: "c"}, "title"},
		{"missing excerpt", PostInput{Title: "T", Content: "c"}, "excerpt"},
		{"blank content", PostInput{Title: "T", Excerpt: "e", Content: "  \n "}, "content"},
		{"bad slug", PostInput{Title: "T", Slug: "Not A Slug", Excerpt: "e", Content: "c"}, "slug"},
		{"double hyphen slug", PostInput{Title: "T", Slug: "spring--cleanup", Excerpt: "e", Content: "c"}, "slug"},
		{"leading hyphen slug", PostInput{Title: "T", Slug: "-spring", Excerpt: "e", Content: "c"}, "slug"},
		{"unicode slug", PostInput{Title: "T", Slug: "jardín", Excerpt: "e", Content: "c"}, "slug"},
		{"bad image url", PostInput{Title: "T", Excerpt: "e", Content: "c", ImageURL: "javascript:alert(1)"}, "image_url"},
		{"title without slug characters", PostInput{Title: "!!!", Excerpt: "e", Content: "c"}, "slug"},
	}
	for _, tt := range tests {
		_, err := s.CreatePost(ctx, tt.input)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: err = %v, want ValidationError", tt.name, err)
			continue
		}
		if _, ok := verr.Fields[tt.field]; !ok {
			t.Errorf("%s: fields = %v, want %q", tt.name, verr.Fields, tt.field)
		}
	}

	posts, err := s.ListAllPosts(ctx)
	if err != nil {
		t.Fatalf("ListAllPosts failed: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("validation failures should not write, got %d posts", len(posts))
	}
}

func TestCreatePostSlugTaken(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.CreatePost(ctx, testInput("Spring Cleanup")); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	_, err := s.CreatePost(ctx, testInput("Spring Cleanup"))
	if !errors.Is(err, ErrSlugTaken) {
		t.Errorf("duplicate slug err = %v, want ErrSlugTaken", err)
	}
}

func TestListAllPostsOrdering(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

	s.now = fixedClock(base, time.Hour)
	for _, title := range []string{"Post 1", "Post 2", "Post 3"} {
		if _, err := s.CreatePost(ctx, testInput(title)); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}
	// Two posts created in the same instant are ordered by insertion.
	s.now = func() time.Time { return base.Add(10 * time.Hour) }
	for _, title := range []string{"Tie A", "Tie B"} {
		if _, err := s.CreatePost(ctx, testInput(title)); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}

	got, err := s.ListAllPosts(ctx)
	if err != nil {
		t.Fatalf("ListAllPosts failed: %v", err)
	}
	want := []string{"tie-b", "tie-a", "post-3", "post-2", "post-1"}
	if len(got) != len(want) {
		t.Fatalf("ListAllPosts count = %d, want %d", len(got), len(want))
	}
	for i, slug := range want {
		if got[i].Slug != slug {
			t.Errorf("ListAllPosts[%d] = %s, want %s", i, got[i].Slug, slug)
		}
	}
}

func TestListPublishedPosts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	draft := testInput("Draft")
	published := testInput("Live")
	published.Published = boolPtr(true)
	for _, in := range []PostInput{draft, published} {
		if _, err := s.CreatePost(ctx, in); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}

	got, err := s.ListPublishedPosts(ctx)
	if err != nil {
		t.Fatalf("ListPublishedPosts failed: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "live" {
		t.Errorf("ListPublishedPosts = %+v, want only live", got)
	}

	all, err := s.ListAllPosts(ctx)
	if err != nil {
		t.Fatalf("ListAllPosts failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListAllPosts count = %d, want 2 (including drafts)", len(all))
	}
}

func TestGetPublishedPost(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p, err := s.CreatePost(ctx, testInput("Hidden"))
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if _, err := s.GetPublishedPost(ctx, "hidden"); !errors.Is(err, ErrNotFound) {
		t.Errorf("draft lookup err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetPublishedPost(ctx, "nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing lookup err = %v, want ErrNotFound", err)
	}

	in := p.Input()
	in.Published = boolPtr(true)
	if _, err := s.UpdatePost(ctx, p.ID, in); err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	got, err := s.GetPublishedPost(ctx, "hidden")
	if err != nil {
		t.Fatalf("GetPublishedPost failed: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("ID = %q, want %q", got.ID, p.ID)
	}
}

func TestUpdatePostReplacesFields(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	in := testInput("Original Title")
	in.ImageURL = "/images/service-cleanup.jpg"
	p, err := s.CreatePost(ctx, in)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	got, err := s.UpdatePost(ctx, p.ID, PostInput{
		Title:   "Updated Title",
		Slug:    "updated-title",
		Excerpt: "new excerpt",
		Content: "new content",
	})
	if err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	if got.Title != "Updated Title" || got.Slug != "updated-title" || got.Excerpt != "new excerpt" || got.Content != "new content" {
		t.Errorf("updated post = %+v", got)
	}
	if got.ImageURL != "" {
		t.Errorf("ImageURL = %q, full replace should clear it", got.ImageURL)
	}

	stored, err := s.GetPost(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if stored.Title != "Updated Title" || stored.ImageURL != "" {
		t.Errorf("stored post = %+v", stored)
	}
}

func TestUpdatePostPublishIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = fixedClock(base, time.Minute)

	in := testInput("Toggle")
	in.Published = boolPtr(true)
	p, err := s.CreatePost(ctx, in)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	got, err := s.UpdatePost(ctx, p.ID, p.Input())
	if err != nil {
		t.Fatalf("UpdatePost true->true failed: %v", err)
	}
	if !got.Published {
		t.Error("Published should stay true")
	}
	if !got.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", p.CreatedAt, got.CreatedAt)
	}
	if !got.UpdatedAt.After(p.UpdatedAt) {
		t.Errorf("UpdatedAt not refreshed: %v -> %v", p.UpdatedAt, got.UpdatedAt)
	}
}

func TestUpdatePostNilPublishedKeepsValue(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	in := testInput("Keep")
	in.Published = boolPtr(true)
	p, err := s.CreatePost(ctx, in)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	in.Published = nil
	in.Slug = p.Slug
	got, err := s.UpdatePost(ctx, p.ID, in)
	if err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	if !got.Published {
		t.Error("nil Published should keep the stored value")
	}
}

func TestUpdatePostClockSkew(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return base }
	p, err := s.CreatePost(ctx, testInput("Skew"))
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	s.now = func() time.Time { return base.Add(-time.Hour) }
	got, err := s.UpdatePost(ctx, p.ID, p.Input())
	if err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Errorf("UpdatedAt %v before CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestUpdatePostNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.UpdatePost(context.Background(), "missing-id", testInput("Nothing"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	_, err = s.UpdatePost(context.Background(), "", testInput("Nothing"))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("empty id err = %v, want ValidationError", err)
	}
}

func TestUpdatePostSlugTaken(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.CreatePost(ctx, testInput("First")); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	second, err := s.CreatePost(ctx, testInput("Second"))
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	in := second.Input()
	in.Slug = "first"
	if _, err := s.UpdatePost(ctx, second.ID, in); !errors.Is(err, ErrSlugTaken) {
		t.Errorf("err = %v, want ErrSlugTaken", err)
	}
	stored, err := s.GetPost(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if stored.Slug != "second" {
		t.Errorf("Slug = %q, failed update should not change it", stored.Slug)
	}
}

func TestDeletePost(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p, err := s.CreatePost(ctx, testInput("To Delete"))
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if err := s.DeletePost(ctx, p.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if _, err := s.GetPost(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("post should be gone, got err: %v", err)
	}
}

func TestDeleteNonexistentPost(t *testing.T) {
	s := setupTestStore(t)
	if err := s.DeletePost(context.Background(), "nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeletePost on nonexistent err = %v, want ErrNotFound", err)
	}
}

func TestSaveAndGetImage(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	img := Image{
		Key:          "blog/1700000000000-abc123.png",
		OriginalName: "yard.PNG",
		ContentType:  "image/png",
		CacheControl: imageCacheControl,
		Size:         42,
		URL:          "http://localhost:3000/media/blog-images/blog/1700000000000-abc123.png",
		UploadedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := s.SaveImage(ctx, img); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	if err := s.SaveImage(ctx, img); err == nil {
		t.Error("SaveImage with a reused key should fail")
	}

	got, err := s.GetImage(ctx, img.Key)
	if err != nil {
		t.Fatalf("GetImage failed: %v", err)
	}
	if !got.UploadedAt.Equal(img.UploadedAt) {
		t.Errorf("UploadedAt = %v, want %v", got.UploadedAt, img.UploadedAt)
	}
	got.UploadedAt = img.UploadedAt
	if got != img {
		t.Errorf("GetImage = %+v, want %+v", got, img)
	}
	if _, err := s.GetImage(ctx, "blog/missing.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing image err = %v, want ErrNotFound", err)
	}

	images, err := s.ListImages(ctx)
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}
	if len(images) != 1 {
		t.Errorf("ListImages count = %d, want 1", len(images))
	}
}
