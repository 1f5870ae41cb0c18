package content

import (
	"strings"
	"unicode"
)

// Slugify converts a post title to a URL-safe slug.
//
// Letters are lower-cased, anything other than a-z, 0-9, whitespace or '-'
// is dropped, whitespace runs become a single hyphen, hyphen runs collapse,
// and leading/trailing hyphens are trimmed.
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pendingHyphen = true
		}
	}
	return b.String()
}

// IsSlug reports whether s is already in canonical slug form.
func IsSlug(s string) bool {
	return s != "" && Slugify(s) == s
}
