package content

import (
	"bytes"
	"html"
	"net/url"
	"strings"

	"github.com/a-h/templ"
)

// Component returns a templ.Component that renders raw post content as HTML.
func Component(raw string) templ.Component {
	return templ.Raw(RenderString(raw))
}

// Render writes the HTML for blocks to buf. Headings become <h3>, paragraphs
// <p> with <strong> for bold spans. All text is escaped.
func Render(buf *bytes.Buffer, blocks []Block) {
	for _, b := range blocks {
		if b.Kind == Heading {
			buf.WriteString(`<h3 class="post-heading">`)
			buf.WriteString(html.EscapeString(b.Text()))
			buf.WriteString("</h3>")
			continue
		}
		buf.WriteString(`<p class="post-paragraph">`)
		for _, s := range b.Spans {
			if s.Bold {
				buf.WriteString("<strong>")
				buf.WriteString(html.EscapeString(s.Text))
				buf.WriteString("</strong>")
				continue
			}
			buf.WriteString(html.EscapeString(s.Text))
		}
		buf.WriteString("</p>")
	}
}

// RenderString is a convenience wrapper returning the HTML for raw content.
func RenderString(raw string) string {
	var buf bytes.Buffer
	Render(&buf, Format(raw))
	return buf.String()
}

// SafeURL validates a cover image URL for use in an HTML attribute. Relative
// paths and http(s) URLs pass through escaped; anything else yields "".
func SafeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") && !strings.HasPrefix(val, "//") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return html.EscapeString(val)
	default:
		return ""
	}
}
