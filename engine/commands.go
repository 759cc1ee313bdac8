package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/factcore/engine/facts"
	"github.com/nathoo/factcore/engine/filter"
	"github.com/nathoo/factcore/engine/rules"
	"github.com/nathoo/factcore/engine/tag"
	"github.com/nathoo/factcore/types"
)

var helpText = []string{
	"Commands:",
	"  set <tag> <value> [set|add]  change a fact",
	"  add <tag> <value>            add to a fact",
	"  get <tag>                    show a fact",
	"  reset <tag>                  put a defined fact back to 0",
	"  dump [search...]             list defined facts",
	"  tags [search...] [+a&b...] [--defined] [--fav]",
	"                               list known tags",
	"  check <tag> <op> [value]     evaluate one comparison",
	"  cond <name>                  evaluate a named condition",
	"  preset <name>...             apply presets",
	"  presets, conditions          list loaded content",
	"  watch [tag], unwatch <tag>   follow fact notifications",
	"  fav [tag]                    toggle or list favorites",
}

// HelpLines returns the console command reference.
func HelpLines() []string {
	return append([]string(nil), helpText...)
}

func (s *Session) cmdChange(args []string, ct types.ChangeType, allowType bool) []string {
	usage := "Usage: add <tag> <value>"
	if allowType {
		usage = "Usage: set <tag> <value> [set|add]"
	}
	if len(args) < 2 || len(args) > 3 || (!allowType && len(args) == 3) {
		return []string{usage}
	}
	t, msg := parseTag(args[0])
	if msg != "" {
		return []string{msg}
	}
	v, msg := parseValue(args[1])
	if msg != "" {
		return []string{msg}
	}
	if len(args) == 3 {
		parsed, ok := facts.ParseChangeType(args[2])
		if !ok {
			return []string{fmt.Sprintf("Unknown change type %q (want set or add).", args[2])}
		}
		ct = parsed
	}

	s.Store.ChangeValue(t, v, ct)
	return []string{s.describe(t)}
}

func (s *Session) cmdGet(args []string) []string {
	if len(args) != 1 {
		return []string{"Usage: get <tag>"}
	}
	t, msg := parseTag(args[0])
	if msg != "" {
		return []string{msg}
	}
	return []string{s.describe(t)}
}

func (s *Session) cmdReset(args []string) []string {
	if len(args) != 1 {
		return []string{"Usage: reset <tag>"}
	}
	t, msg := parseTag(args[0])
	if msg != "" {
		return []string{msg}
	}
	s.Store.ResetValue(t)
	return []string{s.describe(t)}
}

func (s *Session) cmdDump(args []string) []string {
	opts := filter.Options{Search: args}
	tags := opts.Apply(s.Store.Tags(), s.Store)
	if len(tags) == 0 {
		return []string{"No facts defined."}
	}
	out := []string{fmt.Sprintf("Facts (%d):", len(tags))}
	for _, t := range tags {
		out = append(out, "  "+s.describe(t))
	}
	return out
}

func (s *Session) cmdTags(args []string) []string {
	opts := filter.Options{Favorites: s.Favorites}
	for _, a := range args {
		switch a {
		case "--defined":
			opts.OnlyDefined = true
		case "--fav":
			opts.OnlyFavorites = true
		default:
			if strings.HasPrefix(a, "+") && len(a) > 1 {
				opts.Toggles = append(opts.Toggles, a[1:])
				continue
			}
			opts.Search = append(opts.Search, a)
		}
	}

	tags := opts.Apply(s.KnownTags(), s.Store)
	if len(tags) == 0 {
		return []string{"No matching tags."}
	}
	var out []string
	for _, t := range tags {
		line := "  " + s.describe(t)
		if opts.IsFavorite(t) {
			line += " *"
		}
		out = append(out, line)
	}
	return out
}

func (s *Session) cmdCheck(args []string) []string {
	if len(args) < 2 || len(args) > 3 {
		return []string{"Usage: check <tag> <op> [value]"}
	}
	t, msg := parseTag(args[0])
	if msg != "" {
		return []string{msg}
	}
	op, ok := rules.ParseOperator(args[1])
	if !ok {
		return []string{fmt.Sprintf("Unknown operator %q.", args[1])}
	}
	sc := types.SimpleCondition{Tag: t, Operator: op}
	if rules.UsesValue(op) {
		if len(args) != 3 {
			return []string{fmt.Sprintf("Operator %s needs a value.", rules.OperatorString(op))}
		}
		v, msg := parseValue(args[2])
		if msg != "" {
			return []string{msg}
		}
		sc.Wanted = v
	}
	return []string{fmt.Sprintf("%s: %t", rules.SimpleString(sc), s.Store.CheckSimpleCondition(sc))}
}

func (s *Session) cmdCond(args []string) []string {
	if len(args) != 1 {
		return []string{"Usage: cond <name>"}
	}
	ok, err := s.CheckCondition(args[0])
	if err != nil {
		return []string{err.Error()}
	}
	c := s.Content.Conditions[args[0]]
	return []string{fmt.Sprintf("%s: %s -> %t", args[0], rules.ConditionString(c), ok)}
}

func (s *Session) cmdPreset(args []string) []string {
	if len(args) == 0 {
		return []string{"Usage: preset <name>..."}
	}
	n, err := s.ApplyPreset(args...)
	if err != nil {
		return []string{err.Error()}
	}
	return []string{fmt.Sprintf("Applied %d facts from %s.", n, strings.Join(args, ", "))}
}

func (s *Session) cmdPresets() []string {
	if len(s.Content.Presets) == 0 {
		return []string{"No presets loaded."}
	}
	names := make([]string, 0, len(s.Content.Presets))
	for name := range s.Content.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	var out []string
	for _, name := range names {
		out = append(out, fmt.Sprintf("  %s (%d facts)", name, len(s.Content.Presets[name].Entries)))
	}
	return out
}

func (s *Session) cmdConditions() []string {
	if len(s.Content.Conditions) == 0 {
		return []string{"No conditions loaded."}
	}
	names := make([]string, 0, len(s.Content.Conditions))
	for name := range s.Content.Conditions {
		names = append(names, name)
	}
	sort.Strings(names)
	var out []string
	for _, name := range names {
		out = append(out, fmt.Sprintf("  %s: %s", name, rules.ConditionString(s.Content.Conditions[name])))
	}
	return out
}

func (s *Session) cmdWatch(args []string) []string {
	if len(args) == 0 {
		watching := s.Watching()
		if len(watching) == 0 {
			return []string{"Not watching any facts."}
		}
		out := []string{"Watching:"}
		for _, t := range watching {
			out = append(out, "  "+t.String())
		}
		return out
	}
	var out []string
	for _, a := range args {
		t, msg := parseTag(a)
		if msg != "" {
			out = append(out, msg)
			continue
		}
		if !s.Watch(t) {
			out = append(out, fmt.Sprintf("Already watching %s.", t))
			continue
		}
		out = append(out, fmt.Sprintf("Watching %s.", t))
	}
	return out
}

func (s *Session) cmdUnwatch(args []string) []string {
	if len(args) == 0 {
		return []string{"Usage: unwatch <tag>..."}
	}
	var out []string
	for _, a := range args {
		t, msg := parseTag(a)
		if msg != "" {
			out = append(out, msg)
			continue
		}
		if !s.Unwatch(t) {
			out = append(out, fmt.Sprintf("Not watching %s.", t))
			continue
		}
		out = append(out, fmt.Sprintf("Stopped watching %s.", t))
	}
	return out
}

func (s *Session) cmdFav(args []string) []string {
	if len(args) == 0 {
		if len(s.Favorites) == 0 {
			return []string{"No favorites."}
		}
		out := []string{"Favorites:"}
		for _, t := range s.Favorites {
			out = append(out, "  "+t.String())
		}
		return out
	}
	t, msg := parseTag(args[0])
	if msg != "" {
		return []string{msg}
	}
	for i, f := range s.Favorites {
		if f == t {
			s.Favorites = append(s.Favorites[:i], s.Favorites[i+1:]...)
			return []string{fmt.Sprintf("Removed %s from favorites.", t)}
		}
	}
	s.Favorites = append(s.Favorites, t)
	sortTags(s.Favorites)
	return []string{fmt.Sprintf("Added %s to favorites.", t)}
}

// describe renders one fact the way the console prints it.
func (s *Session) describe(t tag.Tag) string {
	v, ok := s.Store.ValueIfDefined(t)
	if !ok {
		return fmt.Sprintf("Fact %s is undefined", t)
	}
	return fmt.Sprintf("%s: %d", t, v)
}
