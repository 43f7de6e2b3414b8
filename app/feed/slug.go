package feed

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const MaxSlugLength = 100

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug turns a title into the identifier used for deduplication.
// Titles that differ only in case or punctuation share a slug. Lowercasing
// uses the full Unicode mapping, so "İ" becomes "i" plus a combining dot.
func GenerateSlug(title string) string {
	lower := cases.Lower(language.Und).String(title)
	slug := nonSlugChars.ReplaceAllString(lower, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}

	return slug
}
