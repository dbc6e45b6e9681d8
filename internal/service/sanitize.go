package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// sanitizeText strips markup from free text and undoes the entity escaping
// the strict policy applies, so stored values stay plain text.
func sanitizeText(value string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(value)))
}
