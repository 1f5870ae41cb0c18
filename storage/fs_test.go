package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestBucket(t *testing.T) (*FS, string) {
	t.Helper()
	root := t.TempDir()
	b, err := NewFS(root, "blog-images", "http://localhost:3000/media/")
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return b, root
}

func TestNewFSCreatesBucketDir(t *testing.T) {
	_, root := newTestBucket(t)
	info, err := os.Stat(filepath.Join(root, "blog-images"))
	if err != nil {
		t.Fatalf("bucket dir missing: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("bucket path is not a directory")
	}
}

func TestNewFSRejectsBadName(t *testing.T) {
	for _, name := range []string{"", "a/b", `a\b`} {
		if _, err := NewFS(t.TempDir(), name, ""); err == nil {
			t.Errorf("NewFS(%q) should fail", name)
		}
	}
}

func TestPutAndOpen(t *testing.T) {
	b, _ := newTestBucket(t)
	n, err := b.Put(context.Background(), "blog/1-abc.png", strings.NewReader("pngdata"), PutOptions{ContentType: "image/png"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n != 7 {
		t.Errorf("written = %d, want 7", n)
	}
	rc, err := b.Open("blog/1-abc.png")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "pngdata" {
		t.Errorf("data = %q", data)
	}
}

func TestPutNeverOverwrites(t *testing.T) {
	b, _ := newTestBucket(t)
	ctx := context.Background()
	if _, err := b.Put(ctx, "blog/x.png", strings.NewReader("first"), PutOptions{}); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	_, err := b.Put(ctx, "blog/x.png", strings.NewReader("second"), PutOptions{})
	if !errors.Is(err, ErrObjectExists) {
		t.Fatalf("second Put err = %v, want ErrObjectExists", err)
	}
	rc, err := b.Open("blog/x.png")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "first" {
		t.Errorf("object was clobbered: %q", data)
	}
}

func TestTraversalRejected(t *testing.T) {
	b, _ := newTestBucket(t)
	for _, key := range []string{"../escape.png", "blog/../../escape.png", "/etc/passwd", ""} {
		if _, err := b.Put(context.Background(), key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Errorf("Put(%q) should fail", key)
		}
	}
}

func TestOpenMissing(t *testing.T) {
	b, _ := newTestBucket(t)
	if _, err := b.Open("blog/missing.png"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Open missing err = %v, want ErrObjectNotFound", err)
	}
	if _, err := b.Open("blog"); err == nil {
		t.Error("Open of a directory should fail")
	}
}

func TestPutCanceledContext(t *testing.T) {
	b, _ := newTestBucket(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.Put(ctx, "blog/c.png", strings.NewReader("x"), PutOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Put err = %v, want context.Canceled", err)
	}
}

func TestPublicURL(t *testing.T) {
	b, _ := newTestBucket(t)
	got := b.PublicURL("blog/1-abc.png")
	want := "http://localhost:3000/media/blog-images/blog/1-abc.png"
	if got != want {
		t.Errorf("PublicURL = %q, want %q", got, want)
	}
	if b.Name() != "blog-images" {
		t.Errorf("Name = %q", b.Name())
	}
}
