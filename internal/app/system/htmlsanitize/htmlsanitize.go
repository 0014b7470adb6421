// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips markup from user-supplied text before it is
// stored. Session titles, descriptions, and re-match reasons are plain text;
// anything that looks like HTML is removed outright rather than escaped.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Sanitize removes all HTML from the input and trims surrounding whitespace.
func Sanitize(input string) string {
	return strings.TrimSpace(policy.Sanitize(input))
}
