package store

import (
	"regexp"
	"strings"
)

var (
	slugStrip       = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	slugWhitespace  = regexp.MustCompile(`\s+`)
	slugUnderscores = regexp.MustCompile(`_+`)
)

// Slugify derives the on-disk filename (and therefore the book id) from a
// title. Every id already in a catalog directory was produced by this exact
// normalization, so the steps and their order must not change.
func Slugify(title, format string) string {
	s := slugStrip.ReplaceAllString(title, "")
	s = slugWhitespace.ReplaceAllString(s, "_")
	s = slugUnderscores.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		s = "book"
	}
	return s + "." + strings.ToLower(format)
}
