package landscaping

import (
	"bytes"
	"encoding/xml"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus renders cmp into a buffer and writes it with code. Nothing is
// written when rendering fails, so the error handler can still respond.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	var buf bytes.Buffer
	if err := cmp.Render(c.Request().Context(), &buf); err != nil {
		return err
	}
	return c.HTMLBlob(code, buf.Bytes())
}

// writeXML encodes v with the XML header and sends it as contentType.
func writeXML(c echo.Context, contentType string, v any) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	AtomNS  string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Self          atomLink  `xml:"atom:link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description"`
	PubDate     string  `xml:"pubDate"`
	GUID        rssGUID `xml:"guid"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

// feedFor builds the RSS 2.0 document for published posts, newest first.
func (a *App) feedFor(posts []BlogPost) rssDoc {
	base := a.Config.URL
	items := make([]rssItem, 0, len(posts))
	var latest time.Time
	for _, p := range posts {
		link := BuildURL(base, "blog", p.Slug)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        link,
			Description: p.Excerpt,
			PubDate:     p.CreatedAt.UTC().Format(time.RFC1123Z),
			GUID:        rssGUID{Value: link, IsPermaLink: true},
		})
		if p.UpdatedAt.After(latest) {
			latest = p.UpdatedAt
		}
	}
	ch := rssChannel{
		Title:       a.Config.Name + " Blog",
		Link:        BuildURL(base, "blog"),
		Self:        atomLink{Href: base + "/feed.xml", Rel: "self", Type: "application/rss+xml"},
		Description: a.Config.Description,
		Items:       items,
	}
	if !latest.IsZero() {
		ch.LastBuildDate = latest.UTC().Format(time.RFC1123Z)
	}
	return rssDoc{Version: "2.0", AtomNS: "http://www.w3.org/2005/Atom", Channel: ch}
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	ImageNS string       `xml:"xmlns:image,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string         `xml:"loc"`
	LastMod string         `xml:"lastmod,omitempty"`
	Images  []sitemapImage `xml:"image:image,omitempty"`
}

type sitemapImage struct {
	Loc string `xml:"image:loc"`
}

// sitemapFor lists the home page, the blog index and every published post.
// Posts with a cover image carry an image:image entry.
func (a *App) sitemapFor(posts []BlogPost) urlSet {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
		{Loc: BuildURL(base, "blog")},
	}
	for _, p := range posts {
		u := sitemapURL{
			Loc:     BuildURL(base, "blog", p.Slug),
			LastMod: p.UpdatedAt.UTC().Format("2006-01-02"),
		}
		if img := absoluteURL(base, p.ImageURL); img != "" {
			u.Images = []sitemapImage{{Loc: img}}
		}
		urls = append(urls, u)
	}
	return urlSet{
		XMLNS:   "http://www.sitemaps.org/schemas/sitemap/0.9",
		ImageNS: "http://www.google.com/schemas/sitemap-image/1.1",
		URLs:    urls,
	}
}
