// Package sanitizer cleans user supplied text before it is stored.
package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once
)

func policy() *bluemonday.Policy {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// StripHTML removes every tag and returns plain text. Entities are decoded
// so the result is escaped once, at render time.
func StripHTML(s string) string {
	return html.UnescapeString(policy().Sanitize(s))
}

// Line strips markup and collapses runs of whitespace into single spaces.
// Use it for one-line fields such as titles and names.
func Line(s string) string {
	return strings.Join(strings.Fields(StripHTML(s)), " ")
}
