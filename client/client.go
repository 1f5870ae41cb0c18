// Package client is a Go client for the blog admin API. It holds the shared
// admin secret and sends it as the bearer credential on every request.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"

	landscaping "github.com/Jt-schofield1/landscaping-website"
)

// ErrUnauthorized is returned when the server rejects the credential. The
// client forgets the credential before returning it.
var ErrUnauthorized = errors.New("client: unauthorized")

// ErrNotSignedIn is returned by admin calls made without a credential.
var ErrNotSignedIn = errors.New("client: not signed in")

// APIError is a non-401 error response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: %d %s", e.StatusCode, e.Message)
}

// Client talks to the admin API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.Mutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithToken starts the client signed in with token, as when restoring a
// stored session.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New returns a client for the site at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SignIn stores password as the credential and checks it by listing posts.
// A rejected password leaves the client signed out.
func (c *Client) SignIn(ctx context.Context, password string) error {
	if password == "" {
		return ErrUnauthorized
	}
	c.setToken(password)
	_, err := c.ListPosts(ctx)
	return err
}

// SignOut forgets the credential.
func (c *Client) SignOut() {
	c.setToken("")
}

// SignedIn reports whether the client holds a credential.
func (c *Client) SignedIn() bool {
	return c.currentToken() != ""
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// forget clears the credential if it is still the rejected one.
func (c *Client) forget(rejected string) {
	c.mu.Lock()
	if c.token == rejected {
		c.token = ""
	}
	c.mu.Unlock()
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// ListPosts returns every post, drafts included, newest first.
func (c *Client) ListPosts(ctx context.Context) ([]landscaping.BlogPost, error) {
	var posts []landscaping.BlogPost
	err := c.doJSON(ctx, http.MethodGet, "/api/admin", nil, &posts)
	return posts, err
}

// CreatePost creates a post. An empty slug is derived from the title by the
// server.
func (c *Client) CreatePost(ctx context.Context, in landscaping.PostInput) (landscaping.BlogPost, error) {
	in.ID = ""
	var post landscaping.BlogPost
	err := c.doJSON(ctx, http.MethodPost, "/api/admin", in, &post)
	return post, err
}

// UpdatePost replaces every editable field of post in.ID.
func (c *Client) UpdatePost(ctx context.Context, in landscaping.PostInput) (landscaping.BlogPost, error) {
	var post landscaping.BlogPost
	if in.ID == "" {
		return post, &APIError{StatusCode: http.StatusBadRequest, Message: "missing post id", Fields: map[string]string{"id": "cannot be blank"}}
	}
	err := c.doJSON(ctx, http.MethodPut, "/api/admin", in, &post)
	return post, err
}

// TogglePublished resends post with published flipped.
func (c *Client) TogglePublished(ctx context.Context, post landscaping.BlogPost) (landscaping.BlogPost, error) {
	in := post.Input()
	*in.Published = !post.Published
	return c.UpdatePost(ctx, in)
}

// DeletePost permanently deletes post id.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/admin?id="+url.QueryEscape(id), nil, nil)
}

// UploadImage validates and uploads an image, returning its public URL. Type
// and size are checked before any request is sent.
func (c *Client) UploadImage(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if err := landscaping.ValidateImage(contentType, int64(len(data))); err != nil {
		return "", err
	}
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/admin/upload", w.FormDataContentType(), &body, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, body, out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	token := c.currentToken()
	if token == "" {
		return ErrNotSignedIn
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.forget(token)
		return ErrUnauthorized
	}
	if resp.StatusCode >= 300 {
		var eb struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&eb)
		if eb.Error == "" {
			eb.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: eb.Error, Fields: eb.Fields}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}
