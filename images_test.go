package landscaping

import (
	"errors"
	"regexp"
	"testing"
	"time"
)

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		want        error
	}{
		{"15 MiB png", "image/png", 15 << 20, ErrImageTooLarge},
		{"15 MiB pdf", "application/pdf", 15 << 20, ErrImageTooLarge},
		{"2 MiB pdf", "application/pdf", 2 << 20, ErrUnsupportedImageType},
		{"2 MiB png", "image/png", 2 << 20, nil},
		{"exactly 10 MiB", "image/jpeg", 10 << 20, nil},
		{"one byte over", "image/jpeg", 10<<20 + 1, ErrImageTooLarge},
		{"webp", "image/webp", 1024, nil},
		{"gif with params", "image/GIF; charset=binary", 1024, nil},
		{"svg", "image/svg+xml", 1024, ErrUnsupportedImageType},
		{"empty type", "", 1024, ErrUnsupportedImageType},
	}
	for _, tt := range tests {
		err := ValidateImage(tt.contentType, tt.size)
		if !errors.Is(err, tt.want) || (tt.want == nil && err != nil) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
		if err != nil && !errors.Is(err, ErrUploadRejected) {
			t.Errorf("%s: %v should wrap ErrUploadRejected", tt.name, err)
		}
	}
}

func TestCheckImageContent(t *testing.T) {
	png := pngOfSize(t, 0)
	if err := checkImageContent("image/png", png); err != nil {
		t.Errorf("valid png rejected: %v", err)
	}
	if err := checkImageContent("image/jpeg", png); !errors.Is(err, ErrImageContentMismatch) {
		t.Errorf("png declared as jpeg err = %v", err)
	}
	if err := checkImageContent("image/webp", []byte("RIFF....WEBPjunk")); !errors.Is(err, ErrImageContentMismatch) {
		t.Errorf("truncated webp err = %v", err)
	}
}

var imageKeyPattern = regexp.MustCompile(`^blog/1767225600000-[0-9a-z]{6}\.([a-z0-9]+)$`)

func TestNewImageKey(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		filename string
		ext      string
	}{
		{"yard.JPG", "jpg"},
		{"photo.final.WebP", "webp"},
		{"noext", "jpg"},
		{"weird.p!n@g", "png"},
		{"trailing.", "jpg"},
	}
	for _, tt := range tests {
		key, err := NewImageKey(tt.filename, now)
		if err != nil {
			t.Fatalf("NewImageKey(%q) failed: %v", tt.filename, err)
		}
		m := imageKeyPattern.FindStringSubmatch(key)
		if m == nil {
			t.Errorf("NewImageKey(%q) = %q, bad shape", tt.filename, key)
			continue
		}
		if m[1] != tt.ext {
			t.Errorf("NewImageKey(%q) ext = %q, want %q", tt.filename, m[1], tt.ext)
		}
	}

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		key, err := NewImageKey("a.png", now)
		if err != nil {
			t.Fatalf("NewImageKey failed: %v", err)
		}
		if seen[key] {
			t.Fatalf("duplicate key %q within the same millisecond", key)
		}
		seen[key] = true
	}
}
