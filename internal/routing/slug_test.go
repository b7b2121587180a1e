// internal/routing/slug_test.go
//
// Unit-tests for the slug and path helpers.

package routing

import (
	"strings"
	"testing"
)

func TestMakeSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Acme Plumbing & Heating", "acme-plumbing-heating"},
		{"  --Already--Kebab--  ", "already-kebab"},
		{"ÜBER café!", "ber-caf"},
		{"!!!", ""},
		{"", ""},
		{"MixedCASE123", "mixedcase123"},
		{strings.Repeat("a", 80), strings.Repeat("a", MaxSlugLen)},
	}
	for _, c := range cases {
		if got := MakeSlug(c.in); got != c.want {
			t.Errorf("MakeSlug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBuildPath(t *testing.T) {
	cases := []struct {
		parent, slug, want string
	}{
		{"", "", "/"},
		{"", "about", "/about"},
		{"services", "", "/services"},
		{"/services/", "/plumbing/", "/services/plumbing"},
	}
	for _, c := range cases {
		if got := BuildPath(c.parent, c.slug); got != c.want {
			t.Errorf("BuildPath(%q, %q) = %q, want %q", c.parent, c.slug, got, c.want)
		}
	}
}
