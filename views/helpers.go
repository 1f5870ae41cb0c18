package views

import (
	"net/url"
	"time"
)

// PathEscape wraps url.PathEscape for use in templ expressions.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// cardClass returns the CSS classes for a post card on the index page.
func cardClass(hasImage bool) string {
	base := "group flex flex-col overflow-hidden rounded-lg border border-stone-200 bg-white shadow-sm transition hover:-translate-y-0.5 hover:shadow-md"
	if hasImage {
		base += " md:flex-row"
	}
	return base
}

// isoDate formats t for a <time datetime> attribute.
func isoDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
