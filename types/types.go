// Package types defines the shared data structures for the factcore engine.
// It holds type definitions only; behaviour lives in the engine packages.
package types

import "github.com/nathoo/factcore/engine/tag"

// ChangeType selects how a new value is combined with the current one.
type ChangeType uint8

const (
	// Set replaces the current value.
	Set ChangeType = iota
	// Add accumulates onto the current value (0 when undefined).
	Add
)

// Operator is the comparison applied by a simple condition.
type Operator uint8

const (
	Equals Operator = iota
	NotEquals
	Greater
	GreaterOrEqual
	Less
	LessOrEqual
	IsUndefined
	IsDefined
)

// SimpleCondition compares one fact against a literal.
type SimpleCondition struct {
	Tag      tag.Tag
	Operator Operator
	Wanted   int32
}

// Condition holds all of And and any of Or. Empty groups are vacuously true.
type Condition struct {
	Name string // optional, set by the loader
	And  []SimpleCondition
	Or   []SimpleCondition
}

// PresetEntry is one tag/value pair of a preset. Name keeps the raw source
// text so invalid tags can be reported.
type PresetEntry struct {
	Name  string
	Tag   tag.Tag
	Value int32
}

// Preset is a named, ordered batch of values applied with Set.
type Preset struct {
	Name    string
	Entries []PresetEntry
}

// Content is everything loaded from a content directory.
type Content struct {
	Presets    map[string]Preset
	Conditions map[string]Condition
}

// Command is the parsed representation of a console line.
type Command struct {
	Verb string
	Args []string
}

// EventKind names a notification stream.
type EventKind string

const (
	EventBecameDefined EventKind = "defined"
	EventValueChanged  EventKind = "changed"
)

// Event is a notification observed by a session watch.
type Event struct {
	Kind  EventKind
	Tag   tag.Tag
	Value int32
}

// Result is the output of a single console command.
type Result struct {
	Events []Event
	Output []string
}
