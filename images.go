package landscaping

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math/big"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	_ "golang.org/x/image/webp"

	"github.com/Jt-schofield1/landscaping-website/storage"
)

const (
	maxUploadSize     = 10 << 20 // 10 MiB
	imageKeyPrefix    = "blog"
	imageCacheControl = "public, max-age=31536000"
	uploadField       = "file"
	suffixLen         = 6
	suffixAlphabet    = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var (
	// ErrUploadRejected is the parent of every upload validation error.
	ErrUploadRejected = errors.New("upload rejected")

	ErrImageTooLarge        = fmt.Errorf("%w: file too large (max 10MB)", ErrUploadRejected)
	ErrUnsupportedImageType = fmt.Errorf("%w: invalid file type, allowed: JPEG, PNG, WebP, GIF", ErrUploadRejected)
	ErrImageContentMismatch = fmt.Errorf("%w: file content does not match its type", ErrUploadRejected)
	ErrNoFile               = fmt.Errorf("%w: no file provided", ErrUploadRejected)
)

// allowedImageTypes maps accepted MIME types to the format name reported by
// image.DecodeConfig.
var allowedImageTypes = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// ValidateImage checks a declared MIME type and byte size. Size is checked
// first, so an oversized file is rejected whatever its type.
func ValidateImage(contentType string, size int64) error {
	if size > maxUploadSize {
		return ErrImageTooLarge
	}
	if _, ok := allowedImageTypes[normalizeMIME(contentType)]; !ok {
		return ErrUnsupportedImageType
	}
	return nil
}

// checkImageContent decodes the image header and compares its format with the
// declared type.
func checkImageContent(contentType string, data []byte) error {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || format != allowedImageTypes[normalizeMIME(contentType)] {
		return ErrImageContentMismatch
	}
	return nil
}

func normalizeMIME(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// NewImageKey returns blog/<unix-millis>-<6 base36 chars>.<ext>. The
// extension is the original one, lower-cased, or jpg when there is none.
func NewImageKey(filename string, now time.Time) (string, error) {
	suffix, err := randomSuffix(suffixLen)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s-%s.%s", imageKeyPrefix, strconv.FormatInt(now.UnixMilli(), 10), suffix, imageExt(filename)), nil
}

func imageExt(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	var b strings.Builder
	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "jpg"
	}
	return b.String()
}

func randomSuffix(n int) (string, error) {
	max := big.NewInt(int64(len(suffixAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random suffix: %w", err)
		}
		buf[i] = suffixAlphabet[v.Int64()]
	}
	return string(buf), nil
}

func (a *App) handleImageUpload(c echo.Context) error {
	file, err := c.FormFile(uploadField)
	if err != nil {
		return apiError(c, ErrNoFile)
	}
	img, err := a.acceptUpload(c, file)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": img.URL})
}

// acceptUpload validates an uploaded file by declared type, size and decoded
// header, then stores it.
func (a *App) acceptUpload(c echo.Context, file *multipart.FileHeader) (Image, error) {
	contentType := file.Header.Get(echo.HeaderContentType)
	if err := ValidateImage(contentType, file.Size); err != nil {
		return Image{}, err
	}

	src, err := file.Open()
	if err != nil {
		return Image{}, err
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return Image{}, err
	}
	if err := ValidateImage(contentType, int64(len(data))); err != nil {
		return Image{}, err
	}
	if err := checkImageContent(contentType, data); err != nil {
		return Image{}, err
	}
	return a.storeImage(c, file.Filename, normalizeMIME(contentType), data)
}

// storeImage writes validated bytes to the image bucket under a fresh key and
// records the metadata.
func (a *App) storeImage(c echo.Context, filename, contentType string, data []byte) (Image, error) {
	ctx := c.Request().Context()
	now := a.now().UTC()
	key, err := NewImageKey(filename, now)
	if err != nil {
		return Image{}, err
	}
	n, err := a.Bucket.Put(ctx, key, bytes.NewReader(data), storage.PutOptions{
		ContentType:  contentType,
		CacheControl: imageCacheControl,
	})
	if err != nil {
		return Image{}, err
	}
	img := Image{
		Key:          key,
		OriginalName: filename,
		ContentType:  contentType,
		CacheControl: imageCacheControl,
		Size:         n,
		URL:          a.Bucket.PublicURL(key),
		UploadedAt:   now,
	}
	if err := a.Store.SaveImage(ctx, img); err != nil {
		return Image{}, err
	}
	c.Logger().Infof("stored image %s (%d bytes)", key, n)
	return img, nil
}

func (a *App) handleImageList(c echo.Context) error {
	images, err := a.Store.ListImages(c.Request().Context())
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, images)
}

// handleMedia serves an uploaded object with the content type and cache
// directive recorded at upload time.
func (a *App) handleMedia(c echo.Context) error {
	key := c.Param("*")
	img, err := a.Store.GetImage(c.Request().Context(), key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	rc, err := a.Bucket.Open(key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	defer rc.Close()
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, img.ContentType)
	h.Set("Cache-Control", img.CacheControl)
	http.ServeContent(c.Response(), c.Request(), "", img.UploadedAt, rc)
	return nil
}
