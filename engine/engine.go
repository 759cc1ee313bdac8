// Package engine provides the Session that wires a fact store, loaded
// content and console commands together for one play session.
package engine

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/factcore/engine/facts"
	"github.com/nathoo/factcore/engine/parser"
	"github.com/nathoo/factcore/engine/preset"
	"github.com/nathoo/factcore/engine/tag"
	"github.com/nathoo/factcore/types"
)

// Session owns the fact store of one session and the watches made on it.
// Like the store, it is not safe for concurrent use.
type Session struct {
	Content    *types.Content
	Store      *facts.Store
	Favorites  []tag.Tag
	CommandLog []string

	logger  *log.Logger
	watches map[tag.Tag]*facts.Listener
	pending []types.Event
}

// New creates a session over content. A nil logger uses log.Default().
func New(content *types.Content, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		Content: normalizeContent(content),
		Store:   facts.NewStore(logger),
		logger:  logger,
		watches: map[tag.Tag]*facts.Listener{},
	}
}

// SetContent swaps the loaded presets and conditions. Facts, watches and
// favorites are kept.
func (s *Session) SetContent(content *types.Content) {
	s.Content = normalizeContent(content)
}

func normalizeContent(content *types.Content) *types.Content {
	if content == nil {
		content = &types.Content{}
	}
	if content.Presets == nil {
		content.Presets = map[string]types.Preset{}
	}
	if content.Conditions == nil {
		content.Conditions = map[string]types.Condition{}
	}
	return content
}

// Close cancels every watch and releases the store's facts and subscriptions.
func (s *Session) Close() {
	for _, l := range s.watches {
		l.Cancel()
	}
	s.watches = map[tag.Tag]*facts.Listener{}
	s.pending = nil
	s.Store.Close()
}

// Exec runs one console line and returns what it produced. Notifications
// seen by watches while the command ran are returned in Result.Events and
// rendered ahead of the command's own output.
func (s *Session) Exec(input string) types.Result {
	var result types.Result

	cmd := parser.Parse(input)
	if cmd.Verb == "" {
		result.Output = append(result.Output, "Enter a command. Type help for a list.")
		return result
	}
	s.CommandLog = append(s.CommandLog, input)

	output := s.run(cmd)

	result.Events = s.pending
	s.pending = nil
	for _, ev := range result.Events {
		result.Output = append(result.Output, RenderEvent(ev))
	}
	result.Output = append(result.Output, output...)
	return result
}

func (s *Session) run(cmd types.Command) []string {
	switch cmd.Verb {
	case "set":
		return s.cmdChange(cmd.Args, types.Set, true)
	case "add":
		return s.cmdChange(cmd.Args, types.Add, false)
	case "get":
		return s.cmdGet(cmd.Args)
	case "reset":
		return s.cmdReset(cmd.Args)
	case "dump":
		return s.cmdDump(cmd.Args)
	case "tags":
		return s.cmdTags(cmd.Args)
	case "check":
		return s.cmdCheck(cmd.Args)
	case "cond":
		return s.cmdCond(cmd.Args)
	case "preset":
		return s.cmdPreset(cmd.Args)
	case "presets":
		return s.cmdPresets()
	case "conditions":
		return s.cmdConditions()
	case "watch":
		return s.cmdWatch(cmd.Args)
	case "unwatch":
		return s.cmdUnwatch(cmd.Args)
	case "fav":
		return s.cmdFav(cmd.Args)
	case "help":
		return HelpLines()
	default:
		return []string{fmt.Sprintf("Unknown command %q. Type help for a list.", cmd.Verb)}
	}
}

// ApplyPreset applies the named presets in order. Unknown names are
// reported together and nothing is applied.
func (s *Session) ApplyPreset(names ...string) (int, error) {
	found, missing := preset.Lookup(s.Content, names)
	if len(missing) > 0 {
		return 0, fmt.Errorf("unknown preset: %s", strings.Join(missing, ", "))
	}
	return preset.ApplyAll(s.Store, found, s.logger), nil
}

// CheckCondition evaluates the named condition against the store.
func (s *Session) CheckCondition(name string) (bool, error) {
	c, ok := s.Content.Conditions[name]
	if !ok {
		return false, fmt.Errorf("unknown condition %q", name)
	}
	return s.Store.CheckCondition(c), nil
}

// Watch starts following t. It reports false if t is invalid or already
// watched.
func (s *Session) Watch(t tag.Tag) bool {
	if !t.IsValid() {
		return false
	}
	if _, ok := s.watches[t]; ok {
		return false
	}
	s.watches[t] = s.Store.Listen(t,
		func(v int32) { s.record(types.EventValueChanged, t, v) },
		func(v int32) { s.record(types.EventBecameDefined, t, v) },
	)
	return true
}

// Unwatch stops following t. It reports false if t was not watched.
func (s *Session) Unwatch(t tag.Tag) bool {
	l, ok := s.watches[t]
	if !ok {
		return false
	}
	l.Cancel()
	delete(s.watches, t)
	return true
}

// Watching returns the watched tags in name order.
func (s *Session) Watching() []tag.Tag {
	out := make([]tag.Tag, 0, len(s.watches))
	for t := range s.watches {
		out = append(out, t)
	}
	sortTags(out)
	return out
}

// KnownTags returns every tag the session knows about: defined facts, tags
// referenced by content, watches and favorites. Sorted, without duplicates.
func (s *Session) KnownTags() []tag.Tag {
	seen := map[tag.Tag]bool{}
	add := func(t tag.Tag) {
		if t.IsValid() {
			seen[t] = true
		}
	}
	for _, t := range s.Store.Tags() {
		add(t)
	}
	for _, p := range s.Content.Presets {
		for _, e := range p.Entries {
			add(e.Tag)
		}
	}
	for _, c := range s.Content.Conditions {
		for _, sc := range c.And {
			add(sc.Tag)
		}
		for _, sc := range c.Or {
			add(sc.Tag)
		}
	}
	for t := range s.watches {
		add(t)
	}
	for _, t := range s.Favorites {
		add(t)
	}

	out := make([]tag.Tag, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sortTags(out)
	return out
}

func (s *Session) record(kind types.EventKind, t tag.Tag, v int32) {
	s.pending = append(s.pending, types.Event{Kind: kind, Tag: t, Value: v})
}

// RenderEvent formats a watch notification for display.
func RenderEvent(ev types.Event) string {
	switch ev.Kind {
	case types.EventBecameDefined:
		return fmt.Sprintf("[defined] %s = %d", ev.Tag, ev.Value)
	default:
		return fmt.Sprintf("[changed] %s = %d", ev.Tag, ev.Value)
	}
}

func sortTags(tags []tag.Tag) {
	sort.Slice(tags, func(i, j int) bool { return tag.Less(tags[i], tags[j]) })
}

func parseTag(arg string) (tag.Tag, string) {
	t := tag.Request(arg)
	if !t.IsValid() {
		return tag.None, fmt.Sprintf("Fact tag %q is not valid.", arg)
	}
	return t, ""
}

func parseValue(arg string) (int32, string) {
	v, err := strconv.ParseInt(arg, 10, 32)
	if err != nil {
		return 0, fmt.Sprintf("Value %q is not a 32-bit integer.", arg)
	}
	return int32(v), ""
}
