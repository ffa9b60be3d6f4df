package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugInvalid    = regexp.MustCompile(`[^\x{0600}-\x{06FF}a-z0-9-]`)
	slugDashes     = regexp.MustCompile(`-+`)

	// SlugPattern validates caller-supplied slugs: Persian letters,
	// ASCII letters, digits and single hyphens between segments.
	SlugPattern = regexp.MustCompile(`^[\x{0600}-\x{06FF}a-z0-9]+(?:-[\x{0600}-\x{06FF}a-z0-9]+)*$`)
)

// MakeSlug derives a URL-safe identifier from a display name. Only
// Persian letters, ASCII letters, digits and hyphens survive; runs of
// whitespace and invalid characters collapse to single hyphens and
// leading/trailing hyphens are trimmed. When nothing survives, the
// fallback prefix plus the current timestamp is returned so the result
// is never empty.
func MakeSlug(name, fallback string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugWhitespace.ReplaceAllString(s, "-")
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		return fmt.Sprintf("%s-%d", fallback, time.Now().UnixMilli())
	}
	return s
}

// IsValidSlug reports whether a caller-supplied slug matches the
// allowed pattern.
func IsValidSlug(slug string) bool {
	return SlugPattern.MatchString(slug)
}
