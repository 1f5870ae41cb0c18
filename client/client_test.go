package client

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	landscaping "github.com/Jt-schofield1/landscaping-website"
)

const secret = "hunter2-but-longer"

func newTestServer(t *testing.T) (*httptest.Server, *landscaping.App) {
	t.Helper()
	dir := t.TempDir()
	app := landscaping.New(landscaping.SiteConfig{
		URL:           "http://example.com",
		DatabasePath:  filepath.Join(dir, "blog.db"),
		MediaDir:      filepath.Join(dir, "media"),
		LogLevel:      "error",
		AdminPassword: secret,
		SessionSecret: "abcdefghijklmnopqrstuvwxyz012345",
	}, landscaping.ViewFuncs{})
	if err := app.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	srv := httptest.NewServer(app.Echo)
	t.Cleanup(func() {
		srv.Close()
		app.Close()
	})
	return srv, app
}

func signedIn(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c := New(srv.URL, WithHTTPClient(srv.Client()))
	if err := c.SignIn(context.Background(), secret); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	return c
}

func TestSignIn(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	if err := c.SignIn(ctx, "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("SignIn(wrong) err = %v, want ErrUnauthorized", err)
	}
	if c.SignedIn() {
		t.Error("a rejected password should not be kept")
	}
	if _, err := c.ListPosts(ctx); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("ListPosts signed out err = %v", err)
	}

	if err := c.SignIn(ctx, secret); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if !c.SignedIn() {
		t.Error("SignedIn should be true")
	}
	c.SignOut()
	if c.SignedIn() {
		t.Error("SignOut should clear the credential")
	}
}

func TestNoClientTimeout(t *testing.T) {
	c := New("http://example.com")
	if c.http.Timeout != 0 {
		t.Errorf("default HTTP timeout = %v, want none", c.http.Timeout)
	}
}

func TestStaleTokenIsDiscarded(t *testing.T) {
	srv, _ := newTestServer(t)
	c := New(srv.URL, WithHTTPClient(srv.Client()), WithToken("old-password"))
	if _, err := c.ListPosts(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if c.SignedIn() {
		t.Error("client should discard the rejected credential")
	}
}

func TestPostLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	c := signedIn(t, srv)
	ctx := context.Background()

	post, err := c.CreatePost(ctx, landscaping.PostInput{
		Title:   "Test Post",
		Excerpt: "Short summary",
		Content: "Body",
	})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if post.Slug != "test-post" || post.Published {
		t.Fatalf("post = %+v", post)
	}

	toggled, err := c.TogglePublished(ctx, post)
	if err != nil {
		t.Fatalf("TogglePublished failed: %v", err)
	}
	if !toggled.Published || toggled.ID != post.ID {
		t.Errorf("toggled = %+v", toggled)
	}

	posts, err := c.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 1 || !posts[0].Published {
		t.Errorf("posts = %+v", posts)
	}

	if err := c.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	err = c.DeletePost(ctx, post.ID)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("second DeletePost err = %v, want 404 APIError", err)
	}
}

func TestCreatePostErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	c := signedIn(t, srv)
	ctx := context.Background()

	_, err := c.CreatePost(ctx, landscaping.PostInput{Title: "No body"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400 APIError", err)
	}
	if _, ok := apiErr.Fields["content"]; !ok {
		t.Errorf("fields = %v", apiErr.Fields)
	}

	in := landscaping.PostInput{Title: "Dup", Excerpt: "e", Content: "c"}
	if _, err := c.CreatePost(ctx, in); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	_, err = c.CreatePost(ctx, in)
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusConflict {
		t.Errorf("duplicate err = %v, want 409 APIError", err)
	}

	if _, err := c.UpdatePost(ctx, in); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("UpdatePost without id err = %v", err)
	}
}

func TestUploadImage(t *testing.T) {
	srv, _ := newTestServer(t)
	c := signedIn(t, srv)
	ctx := context.Background()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	u, err := c.UploadImage(ctx, "lawn.png", "image/png", buf.Bytes())
	if err != nil {
		t.Fatalf("UploadImage failed: %v", err)
	}
	if !strings.HasPrefix(u, "http://example.com/media/blog-images/blog/") || !strings.HasSuffix(u, ".png") {
		t.Errorf("url = %q", u)
	}

	if _, err := c.UploadImage(ctx, "doc.pdf", "application/pdf", []byte("%PDF")); !errors.Is(err, landscaping.ErrUnsupportedImageType) {
		t.Errorf("pdf err = %v, want ErrUnsupportedImageType", err)
	}
	if _, err := c.UploadImage(ctx, "big.png", "image/png", make([]byte, 11<<20)); !errors.Is(err, landscaping.ErrImageTooLarge) {
		t.Errorf("oversized err = %v, want ErrImageTooLarge", err)
	}
}
