// Package editor holds the state of one post-editing session: the form, the
// auto-slug latch, the preview toggle, and the save and upload lifecycle.
//
// A Session never talks HTTP itself. It drives an API, normally a
// *client.Client.
package editor

import (
	"context"
	"errors"
	"strings"
	"sync"

	landscaping "github.com/Jt-schofield1/landscaping-website"
	"github.com/Jt-schofield1/landscaping-website/client"
	"github.com/Jt-schofield1/landscaping-website/content"
)

// API is the part of the admin API a Session needs.
type API interface {
	ListPosts(ctx context.Context) ([]landscaping.BlogPost, error)
	CreatePost(ctx context.Context, in landscaping.PostInput) (landscaping.BlogPost, error)
	UpdatePost(ctx context.Context, in landscaping.PostInput) (landscaping.BlogPost, error)
	UploadImage(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

var (
	ErrMissingFields    = errors.New("missing required fields")
	ErrPostNotFound     = errors.New("post not found")
	ErrSaveInProgress   = errors.New("a save is already in progress")
	ErrUploadInProgress = errors.New("wait for the image upload to finish before saving")
)

const (
	msgMissing    = "Please fill in all required fields (title, slug, excerpt, content)."
	msgCreated    = "Post created!"
	msgUpdated    = "Post updated!"
	msgSaveFailed = "Failed to save post. Please try again."
	msgLoadFailed = "Failed to load post"
)

// Mode is the identity state of a session.
type Mode int

const (
	Loading Mode = iota
	Creating
	Editing
)

func (m Mode) String() string {
	switch m {
	case Loading:
		return "loading"
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	}
	return "unknown"
}

// Form is the editable post content.
type Form struct {
	Title     string
	Slug      string
	Excerpt   string
	Content   string
	ImageURL  string
	Published bool
}

func (f Form) complete() bool {
	for _, v := range []string{f.Title, f.Slug, f.Excerpt, f.Content} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

func formFrom(p landscaping.BlogPost) Form {
	return Form{
		Title:     p.Title,
		Slug:      p.Slug,
		Excerpt:   p.Excerpt,
		Content:   p.Content,
		ImageURL:  p.ImageURL,
		Published: p.Published,
	}
}

// State is a snapshot of a Session.
type State struct {
	Mode       Mode
	ID         string
	Form       Form
	AutoSlug   bool
	Previewing bool
	Saving     bool
	Uploading  bool
	Message    string // last success message
	Error      string // last error message
}

// Session is one editor tab. It is safe for concurrent use, so an upload can
// run alongside text edits.
type Session struct {
	api API

	mu          sync.Mutex
	mode        Mode
	id          string
	form        Form
	autoSlug    bool
	previewing  bool
	saving      bool
	uploads     int
	message     string
	errMsg      string
	needsSignIn bool
}

// New starts a session for a new post: empty form, auto-slug on.
func New(api API) *Session {
	return &Session{api: api, mode: Creating, autoSlug: true}
}

// Open starts a session for post id. It fetches the post list, hydrates the
// form from the matching post, and turns auto-slug off.
func Open(ctx context.Context, api API, id string) (*Session, error) {
	s := &Session{api: api, mode: Loading}
	posts, err := api.ListPosts(ctx)
	if err != nil {
		s.fail(err, msgLoadFailed)
		return s, err
	}
	for _, p := range posts {
		if p.ID == id {
			s.mode = Editing
			s.id = p.ID
			s.form = formFrom(p)
			return s, nil
		}
	}
	s.errMsg = msgLoadFailed
	return s, ErrPostNotFound
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Mode:       s.mode,
		ID:         s.id,
		Form:       s.form,
		AutoSlug:   s.autoSlug,
		Previewing: s.previewing,
		Saving:     s.saving,
		Uploading:  s.uploads > 0,
		Message:    s.message,
		Error:      s.errMsg,
	}
}

// NeedsSignIn reports whether the API rejected the credential.
func (s *Session) NeedsSignIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.needsSignIn
}

// SetTitle sets the title and, while auto-slug is on, regenerates the slug.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Title = title
	if s.autoSlug {
		s.form.Slug = content.Slugify(title)
	}
}

// SetSlug sets the slug by hand. Auto-slug stays off for the rest of the
// session.
func (s *Session) SetSlug(slug string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Slug = slug
	s.autoSlug = false
}

func (s *Session) SetExcerpt(excerpt string) {
	s.mu.Lock()
	s.form.Excerpt = excerpt
	s.mu.Unlock()
}

func (s *Session) SetContent(body string) {
	s.mu.Lock()
	s.form.Content = body
	s.mu.Unlock()
}

func (s *Session) SetImageURL(u string) {
	s.mu.Lock()
	s.form.ImageURL = u
	s.mu.Unlock()
}

// TogglePreview flips between editing and preview and returns the new
// preview state.
func (s *Session) TogglePreview() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewing = !s.previewing
	return s.previewing
}

// PreviewBlocks formats the current content exactly as the public post page
// does.
func (s *Session) PreviewBlocks() []content.Block {
	s.mu.Lock()
	body := s.form.Content
	s.mu.Unlock()
	return content.Format(body)
}

// Save stores the form, keeping the current published flag.
func (s *Session) Save(ctx context.Context) error {
	return s.save(ctx, nil)
}

// Publish stores the form with published set.
func (s *Session) Publish(ctx context.Context) error {
	published := true
	return s.save(ctx, &published)
}

// Unpublish stores the form with published cleared.
func (s *Session) Unpublish(ctx context.Context) error {
	published := false
	return s.save(ctx, &published)
}

func (s *Session) save(ctx context.Context, publish *bool) error {
	s.mu.Lock()
	switch {
	case s.mode == Loading:
		s.mu.Unlock()
		return ErrPostNotFound
	case s.saving:
		s.mu.Unlock()
		return ErrSaveInProgress
	case s.uploads > 0:
		s.errMsg = ErrUploadInProgress.Error()
		s.mu.Unlock()
		return ErrUploadInProgress
	case !s.form.complete():
		s.errMsg = msgMissing
		s.mu.Unlock()
		return ErrMissingFields
	}
	published := s.form.Published
	if publish != nil {
		published = *publish
	}
	in := landscaping.PostInput{
		ID:        s.id,
		Title:     s.form.Title,
		Slug:      s.form.Slug,
		Excerpt:   s.form.Excerpt,
		Content:   s.form.Content,
		ImageURL:  s.form.ImageURL,
		Published: &published,
	}
	creating := s.mode == Creating
	s.saving = true
	s.message = ""
	s.errMsg = ""
	s.mu.Unlock()

	var post landscaping.BlogPost
	var err error
	if creating {
		post, err = s.api.CreatePost(ctx, in)
	} else {
		post, err = s.api.UpdatePost(ctx, in)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if err != nil {
		s.fail(err, msgSaveFailed)
		return err
	}
	if creating {
		s.mode = Editing
		s.id = post.ID
		s.message = msgCreated
	} else {
		s.message = msgUpdated
	}
	s.form.Published = post.Published
	return nil
}

// UploadImage uploads an image and, on success, sets the form's image URL.
// Text edits stay possible while it runs; Save is refused until it ends.
func (s *Session) UploadImage(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	s.uploads++
	s.mu.Unlock()

	u, err := s.api.UploadImage(ctx, filename, contentType, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads--
	if err != nil {
		s.fail(err, "Upload failed")
		return "", err
	}
	s.form.ImageURL = u
	return u, nil
}

// fail records err as the user-facing error. Callers hold s.mu, except Open
// before the session is shared.
func (s *Session) fail(err error, fallback string) {
	var apiErr *client.APIError
	var verr *landscaping.ValidationError
	switch {
	case errors.Is(err, client.ErrUnauthorized), errors.Is(err, client.ErrNotSignedIn):
		s.needsSignIn = true
		s.errMsg = "Session expired. Please sign in again."
	case errors.As(err, &apiErr) && apiErr.Message != "":
		s.errMsg = apiErr.Message
	case errors.Is(err, landscaping.ErrUploadRejected):
		s.errMsg = err.Error()
	case errors.As(err, &verr):
		s.errMsg = verr.Error()
	default:
		s.errMsg = fallback
	}
}
