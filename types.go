package landscaping

import "time"

// BlogPost is the core content type stored in SQLite and rendered by views.
type BlogPost struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Link returns the public path of the post.
func (p BlogPost) Link() string {
	return "/blog/" + p.Slug + "/"
}

// Input returns the editable fields of p, as resent on a full update.
func (p BlogPost) Input() PostInput {
	published := p.Published
	return PostInput{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Excerpt:   p.Excerpt,
		Content:   p.Content,
		ImageURL:  p.ImageURL,
		Published: &published,
	}
}

// PostInput is the request body for creating or replacing a post.
// Published is optional: nil means false on create and "unchanged" on update.
type PostInput struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Excerpt   string `json:"excerpt"`
	Content   string `json:"content"`
	ImageURL  string `json:"image_url,omitempty"`
	Published *bool  `json:"published,omitempty"`
}

// Image is the metadata recorded for an uploaded object.
type Image struct {
	Key          string    `json:"key"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	CacheControl string    `json:"cache_control"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// PageMeta carries per-page SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical
	OGType      string // "website" or "article"
	Image       string
}

// EditorPage is what the browser post editor renders: the form fields, the
// outcome of the last action and, when asked for, a preview of the fields.
type EditorPage struct {
	Post      PostInput // Post.ID is empty while creating
	Published bool
	Message   string
	Error     string
	Preview   bool
	CSRFToken string
}

// Creating reports whether the page edits a post that has not been saved yet.
func (p EditorPage) Creating() bool { return p.Post.ID == "" }
