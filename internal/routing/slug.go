// internal/routing/slug.go
//
// Slug and path helpers.
//
// • MakeSlug(text) ─ converts arbitrary text into a URL-safe slug
//   restricted to ASCII a-z, 0-9 and “-”.  Used for tenant slugs at
//   registration and page slugs at creation.
// • BuildPath(parent, slug) ─ joins parent path + slug with a single
//   “/” and guarantees exactly one leading slash.
//
// Rules (MakeSlug)
// ----------------
// 1. Lower-case everything.
// 2. Convert any run of non-[a-z0-9] characters to one “-”.  That
//    strips spaces, punctuation, emoji, and non-ASCII.
// 3. Trim leading / trailing “-”.
// 4. Cap at MaxSlugLen bytes, never cutting mid-run ending in “-”.
// 5. If nothing survives, return "" — callers reject that as a
//    validation failure instead of inventing a placeholder, because a
//    generated tenant slug doubles as the login-scoping key.
//
// Notes
// -----
// • No Unicode transliteration; slugs are ASCII by contract since they
//   appear in tenant URLs and in site-admin login bodies.

package routing

import "strings"

// MaxSlugLen matches the tightest slug column in the schema (tenant.slug
// VARCHAR(64)); page slugs share the cap for uniformity.
const MaxSlugLen = 64

// MakeSlug converts text → lower-kebab ASCII, or "" when no slug-safe
// characters survive.
func MakeSlug(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastWasDash := false
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			// any non-ASCII or punctuation becomes a single dash
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > MaxSlugLen {
		slug = strings.TrimRight(slug[:MaxSlugLen], "-")
	}
	return slug
}

// BuildPath joins parent + slug ensuring exactly one leading slash and no
// duplicate separators.
func BuildPath(parent, slug string) string {
	parent = strings.Trim(parent, "/")
	slug = strings.Trim(slug, "/")

	switch {
	case parent == "" && slug == "":
		return "/"
	case parent == "":
		return "/" + slug
	case slug == "":
		return "/" + parent
	default:
		return "/" + parent + "/" + slug
	}
}
