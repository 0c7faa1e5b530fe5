// Package slugify derives URL-safe post identifiers from titles.
package slugify

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Make lowercases the title, strips non-word characters, and replaces
// runs of whitespace with single hyphens.
func Make(title string) string {
	s := strings.ToLower(title)
	s = nonWord.ReplaceAllString(s, "")
	return whitespace.ReplaceAllString(s, "-")
}

// WithSuffix disambiguates a slug that collides with an existing post.
func WithSuffix(slug string, n int) string {
	return fmt.Sprintf("%s-%d", slug, n)
}
