// Package sanitize strips markup from free-text input before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// maxPasses bounds how many layers of entity encoding are peeled off.
const maxPasses = 8

// Text removes every HTML element from s and trims surrounding whitespace.
// Entity-encoded markup is decoded and stripped too, so Text(Text(s)) == Text(s).
func Text(s string) string {
	for range maxPasses {
		clean := strict.Sanitize(s)
		next := html.UnescapeString(clean)
		if next == s {
			return strings.TrimSpace(next)
		}
		s = next
	}
	// still layered after maxPasses: keep the escaped form, it cannot render as markup
	return strings.TrimSpace(strict.Sanitize(s))
}

// Ptr sanitizes the string p points to, if any.
func Ptr(p *string) *string {
	if p == nil {
		return nil
	}
	out := Text(*p)
	return &out
}
