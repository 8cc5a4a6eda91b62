// Package normalize standardizes scraped place names for matching and
// cache identity.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// stripMarks decomposes to NFD, drops combining marks, and recomposes,
// turning e.g. "Mahābodhi" into "Mahabodhi".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases a name, strips diacritics, and collapses internal
// whitespace. Pure; always returns a value, empty input included.
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if stripped, _, err := transform.String(stripMarks, n); err == nil {
		n = stripped
	}
	n = multiSpaceRe.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}

// CacheKey builds the durable cache identity for a resolution query.
// AnchorState is deliberately excluded: two queries for the same name and
// city in different states share an entry. That maximizes reuse across
// nearby queries but means same-named cities in different states collide;
// changing the shape would invalidate every existing cache row.
func CacheKey(name, categoryHint string, scope, anchorCity string) string {
	parts := []string{Normalize(name), categoryHint, scope, anchorCity}
	return strings.ToLower(strings.Join(parts, "|"))
}
