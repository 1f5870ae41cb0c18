package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FS implements Bucket on the local file system. Each bucket is a directory
// under root; keys map to relative paths inside it.
type FS struct {
	root    string // absolute path to the bucket directory
	name    string
	baseURL string
}

// NewFS creates the bucket directory root/name if needed and returns an FS
// bucket whose objects are served from baseURL/name/<key>.
func NewFS(root, name, baseURL string) (*FS, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("storage: invalid bucket name %q", name)
	}
	abs, err := filepath.Abs(filepath.Join(root, name))
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create bucket dir: %w", err)
	}
	return &FS{root: abs, name: name, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Name returns the bucket name.
func (f *FS) Name() string { return f.name }

// safePath resolves key against the bucket root and rejects anything that
// escapes it.
func (f *FS) safePath(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("storage: empty key")
	}
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute keys not allowed: %s", key)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: key escapes bucket: %s", key)
	}
	return abs, nil
}

// Put writes r to key using an exclusive create, so an existing object is
// never clobbered. A partially written file is removed on failure. FS keeps
// no metadata of its own; callers record opts next to the key.
func (f *FS) Put(ctx context.Context, key string, r io.Reader, _ PutOptions) (int64, error) {
	abs, err := f.safePath(key)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return 0, fmt.Errorf("storage: create dir: %w", err)
	}
	dst, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, ErrObjectExists
		}
		return 0, fmt.Errorf("storage: create object: %w", err)
	}
	n, err := io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(abs)
		return 0, fmt.Errorf("storage: write object: %w", err)
	}
	return n, nil
}

// Open opens the object stored at key.
func (f *FS) Open(key string) (io.ReadSeekCloser, error) {
	abs, err := f.safePath(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, ErrObjectNotFound
	}
	return file, nil
}

// PublicURL returns baseURL/name/key.
func (f *FS) PublicURL(key string) string {
	return f.baseURL + "/" + path.Join(f.name, key)
}
