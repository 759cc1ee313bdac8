// Package filter selects fact tags for listing, the way a facts debugger
// narrows its tree: a search box, search toggles, favorites and an
// only-defined switch.
package filter

import (
	"strings"

	"github.com/nathoo/factcore/engine/tag"
)

// Options configures one filtering pass. The zero value matches everything.
type Options struct {
	// Search terms must all appear in the tag name.
	Search []string
	// Toggles match when any one of them matches. A toggle holds terms
	// joined by "&", all of which must appear.
	Toggles []string
	// Favorites are tags pinned by the user.
	Favorites []tag.Tag
	// OnlyFavorites keeps favorites and their descendants.
	OnlyFavorites bool
	// OnlyDefined drops tags without a value.
	OnlyDefined bool
}

// Defined reports whether a tag currently has a value.
type Defined interface {
	IsDefined(t tag.Tag) bool
}

// Match reports whether t passes every enabled filter. Text matching is
// case-insensitive.
func (o Options) Match(t tag.Tag, defined Defined) bool {
	if !t.IsValid() {
		return false
	}
	name := strings.ToLower(t.String())
	if !matchSearch(o.Search, name) || !matchToggles(o.Toggles, name) {
		return false
	}
	if o.OnlyFavorites && !o.IsFavorite(t) {
		return false
	}
	if o.OnlyDefined && (defined == nil || !defined.IsDefined(t)) {
		return false
	}
	return true
}

// Apply returns the tags of in that match, keeping their order.
func (o Options) Apply(in []tag.Tag, defined Defined) []tag.Tag {
	var out []tag.Tag
	for _, t := range in {
		if o.Match(t, defined) {
			out = append(out, t)
		}
	}
	return out
}

// IsFavorite reports whether t is a favorite or descends from one.
func (o Options) IsFavorite(t tag.Tag) bool {
	for _, f := range o.Favorites {
		if t.MatchesTag(f) {
			return true
		}
	}
	return false
}

func matchSearch(terms []string, name string) bool {
	for _, term := range terms {
		if !strings.Contains(name, strings.ToLower(term)) {
			return false
		}
	}
	return true
}

func matchToggles(toggles []string, name string) bool {
	if len(toggles) == 0 {
		return true
	}
	for _, toggle := range toggles {
		if allContained(strings.Split(toggle, "&"), name) {
			return true
		}
	}
	return false
}

func allContained(tokens []string, name string) bool {
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if !strings.Contains(name, strings.ToLower(tok)) {
			return false
		}
	}
	return true
}
