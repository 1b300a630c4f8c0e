// Package slug normalizes category names into URL-safe slugs and
// validates admin-supplied ones. Slugs appear in every content URL and
// are immutable once referenced, so validation is strict.
package slug

import (
	"regexp"
	"strings"
)

var (
	// stripped matches anything that isn't a lowercase letter, digit,
	// space, or hyphen.
	stripped = regexp.MustCompile(`[^a-z0-9\s-]`)
	// hyphenRuns collapses consecutive hyphens into one.
	hyphenRuns = regexp.MustCompile(`-{2,}`)
	// valid is the shape every stored slug must satisfy.
	valid = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Generate derives a slug from a display name.
// Example: "CI / BI Assets 2026" → "ci-bi-assets-2026"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "/", " ")
	s = stripped.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Valid reports whether s is an acceptable slug: non-empty, lowercase
// alphanumeric segments joined by single hyphens.
func Valid(s string) bool {
	return valid.MatchString(s)
}
