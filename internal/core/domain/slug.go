package domain

import (
	"strconv"
	"unicode"
)

// =============================================================================
// Slug Generation
// =============================================================================

// Slugify derives a URL-safe slug from a post title.
//
// The transformation rules, applied in order:
//   - Lowercase the input and trim surrounding whitespace
//   - Drop every rune that is not an ASCII letter, digit, underscore,
//     whitespace, or hyphen
//   - Collapse each run of whitespace, underscores, and hyphens into a
//     single hyphen
//   - Strip leading and trailing hyphens
//
// This is a pure function with no side effects. It returns "" when the title
// contains no retainable characters.
//
// Example:
//
//	Slugify("Hello World")      // returns "hello-world"
//	Slugify("Hello, World!!")   // returns "hello-world"
//	Slugify("snake_case title") // returns "snake-case-title"
func Slugify(title string) string {
	slug := make([]byte, 0, len(title))
	pendingSep := false
	for _, r := range title {
		if r >= 'A' && r <= 'Z' {
			r += 32 // lowercase
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep && len(slug) > 0 {
				slug = append(slug, '-')
			}
			pendingSep = false
			slug = append(slug, byte(r))
		case r == '_' || r == '-' || unicode.IsSpace(r):
			pendingSep = true
		}
		// All other runes are dropped and do not act as separators.
	}
	return string(slug)
}

// =============================================================================
// Uniqueness Resolution
// =============================================================================

// SlugExistsFunc reports whether a slug is already taken by some other post.
// The caller binds it to a store lookup, excluding the post's own ID during
// updates so a post never collides with itself.
type SlugExistsFunc func(slug string) (bool, error)

// UniqueSlug derives the base slug for title and resolves collisions by
// appending an incrementing numeric suffix: base, base-1, base-2, ...
//
// The loop has no upper bound; it terminates because the candidate space is
// unbounded while the set of stored posts is finite. The check-then-insert
// sequence is not atomic against concurrent creates — the store's UNIQUE
// constraint on slug is the backstop.
func UniqueSlug(title string, exists SlugExistsFunc) (string, error) {
	base := Slugify(title)
	candidate := base
	for counter := 1; ; counter++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(counter)
	}
}
