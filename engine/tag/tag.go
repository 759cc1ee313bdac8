// Package tag implements hierarchical dotted identifiers used as fact keys.
// "Quest.Chapter1.Progress" is a child of "Quest.Chapter1", which is a child
// of "Quest".
package tag

import (
	"fmt"
	"strings"
)

// Separator splits a tag into its hierarchy segments.
const Separator = "."

// noneName is how the invalid tag prints.
const noneName = "None"

// Tag is a hierarchical identifier. The zero value is the invalid tag and is
// never a legal key into a fact store.
type Tag struct {
	name string
}

// None is the invalid tag.
var None = Tag{}

// Request returns the tag for name, or None if name is not well formed.
func Request(name string) Tag {
	if !IsValidName(name) {
		return None
	}
	return Tag{name: name}
}

// MustRequest is like Request but panics on a malformed name. Meant for
// package-level tag variables.
func MustRequest(name string) Tag {
	t := Request(name)
	if !t.IsValid() {
		panic(fmt.Sprintf("tag: malformed tag name %q", name))
	}
	return t
}

// IsValidName reports whether name is a well-formed tag: non-empty segments
// separated by dots, with no whitespace, quotes or commas.
func IsValidName(name string) bool {
	if name == "" {
		return false
	}
	for _, seg := range strings.Split(name, Separator) {
		if seg == "" {
			return false
		}
		if strings.ContainsAny(seg, " \t\r\n\",") {
			return false
		}
	}
	return true
}

// IsValid reports whether t is a usable key.
func (t Tag) IsValid() bool {
	return t.name != ""
}

// String returns the dotted name, or "None" for the invalid tag.
func (t Tag) String() string {
	if t.name == "" {
		return noneName
	}
	return t.name
}

// MatchesTag reports whether t equals other or descends from it.
// "Quest.Step" matches "Quest" but not the reverse. Invalid tags match nothing.
func (t Tag) MatchesTag(other Tag) bool {
	if !t.IsValid() || !other.IsValid() {
		return false
	}
	if t.name == other.name {
		return true
	}
	return strings.HasPrefix(t.name, other.name+Separator)
}

// MatchesTagExact reports whether t and other are the same valid tag.
func (t Tag) MatchesTagExact(other Tag) bool {
	return t.IsValid() && t == other
}

// Parent returns the direct parent of t, or None for a root tag.
func (t Tag) Parent() Tag {
	i := strings.LastIndex(t.name, Separator)
	if i < 0 {
		return None
	}
	return Tag{name: t.name[:i]}
}

// Depth returns the number of segments, 0 for None.
func (t Tag) Depth() int {
	if t.name == "" {
		return 0
	}
	return strings.Count(t.name, Separator) + 1
}

// Segments splits t into its hierarchy segments.
func (t Tag) Segments() []string {
	if t.name == "" {
		return nil
	}
	return strings.Split(t.name, Separator)
}

// Leaf returns the last segment ("Progress" for "Quest.Chapter1.Progress").
func (t Tag) Leaf() string {
	i := strings.LastIndex(t.name, Separator)
	return t.name[i+1:]
}

// MarshalText encodes the tag name. The invalid tag encodes as empty text.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.name), nil
}

// UnmarshalText decodes a tag name. Malformed names decode to None without
// error so that callers can report them individually.
func (t *Tag) UnmarshalText(text []byte) error {
	*t = Request(string(text))
	return nil
}

// Less orders tags by name; used for stable listings.
func Less(a, b Tag) bool {
	return a.name < b.name
}
