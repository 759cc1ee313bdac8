// Package facts holds the tag-keyed integer world state of one session.
//
// A fact is either undefined (absent) or defined with an int32 value.
// Mutations notify subscribers synchronously, on the caller's goroutine,
// after the map entry has been updated. A Store is not safe for concurrent
// use; hosts that share one across goroutines must serialise every call.
package facts

import (
	"log"
	"sort"

	"github.com/nathoo/factcore/engine/events"
	"github.com/nathoo/factcore/engine/rules"
	"github.com/nathoo/factcore/engine/tag"
	"github.com/nathoo/factcore/types"
)

// Store maps fact tags to values and owns their notification registries.
type Store struct {
	defined map[tag.Tag]int32

	valueDelegates      *events.Registry
	definitionDelegates *events.Registry

	logger *log.Logger
}

// NewStore creates an empty store. A nil logger uses log.Default().
func NewStore(logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		defined:             map[tag.Tag]int32{},
		valueDelegates:      events.NewRegistry("value changed", logger),
		definitionDelegates: events.NewRegistry("became defined", logger),
		logger:              logger,
	}
}

// ChangeValue applies value to the fact t according to ct.
//
// An undefined fact starts from 0 and becomes defined; the became-defined
// notification fires before the value-changed one. A defined fact only
// notifies when its value actually changes. Add wraps on int32 overflow.
func (s *Store) ChangeValue(t tag.Tag, value int32, ct types.ChangeType) {
	if !s.checkTag(t) {
		return
	}
	if ct != types.Set && ct != types.Add {
		s.logger.Printf("facts: unknown change type %d for fact tag %s", ct, t)
		return
	}

	update := func(current int32) int32 {
		if ct == types.Add {
			return current + value
		}
		return value
	}

	if current, ok := s.defined[t]; ok {
		updated := update(current)
		if updated == current {
			return
		}
		s.defined[t] = updated
		s.valueDelegates.Dispatch(t, updated)
		return
	}

	updated := update(0)
	s.defined[t] = updated
	s.definitionDelegates.Dispatch(t, updated)
	s.valueDelegates.Dispatch(t, updated)
}

// ResetValue puts a defined fact back to 0 and always notifies value-changed,
// even when it already was 0. Undefined facts are left alone.
func (s *Store) ResetValue(t tag.Tag) {
	if !s.checkTag(t) {
		return
	}
	if _, ok := s.defined[t]; !ok {
		return
	}
	s.defined[t] = 0
	s.valueDelegates.Dispatch(t, 0)
}

// ValueIfDefined returns the value of t and whether it is defined.
func (s *Store) ValueIfDefined(t tag.Tag) (int32, bool) {
	if !s.checkTag(t) {
		return 0, false
	}
	v, ok := s.defined[t]
	return v, ok
}

// IsDefined reports whether t has a value.
func (s *Store) IsDefined(t tag.Tag) bool {
	if !s.checkTag(t) {
		return false
	}
	_, ok := s.defined[t]
	return ok
}

// CheckSimpleCondition evaluates one comparison. An invalid tag is logged and
// fails.
func (s *Store) CheckSimpleCondition(c types.SimpleCondition) bool {
	if !s.checkTag(c.Tag) {
		return false
	}
	return rules.EvalSimple(c, s)
}

// CheckCondition evaluates all of c.And and any of c.Or. A sub-condition with
// an invalid tag is logged and fails within its group.
func (s *Store) CheckCondition(c types.Condition) bool {
	return rules.EvalCompound(c, s.CheckSimpleCondition)
}

// OnValueChanged subscribes fn to value changes of t.
func (s *Store) OnValueChanged(t tag.Tag, fn events.Handler) events.Handle {
	return s.valueDelegates.Subscribe(t, fn)
}

// OnBecameDefined subscribes fn to t turning from undefined to defined.
func (s *Store) OnBecameDefined(t tag.Tag, fn events.Handler) events.Handle {
	return s.definitionDelegates.Subscribe(t, fn)
}

// RemoveValueChanged cancels a subscription made with OnValueChanged.
func (s *Store) RemoveValueChanged(t tag.Tag, h events.Handle) {
	s.valueDelegates.Unsubscribe(t, h)
}

// RemoveBecameDefined cancels a subscription made with OnBecameDefined.
func (s *Store) RemoveBecameDefined(t tag.Tag, h events.Handle) {
	s.definitionDelegates.Unsubscribe(t, h)
}

// SubscriberCount returns the number of value and definition subscribers of t.
func (s *Store) SubscriberCount(t tag.Tag) (value, definition int) {
	return s.valueDelegates.Count(t), s.definitionDelegates.Count(t)
}

// Len returns the number of defined facts.
func (s *Store) Len() int {
	return len(s.defined)
}

// Tags returns the defined tags in name order.
func (s *Store) Tags() []tag.Tag {
	tags := make([]tag.Tag, 0, len(s.defined))
	for t := range s.defined {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tag.Less(tags[i], tags[j]) })
	return tags
}

// Export returns a copy of every defined fact.
func (s *Store) Export() map[tag.Tag]int32 {
	out := make(map[tag.Tag]int32, len(s.defined))
	for t, v := range s.defined {
		out[t] = v
	}
	return out
}

// Replace swaps the defined facts for facts wholesale. No notifications fire
// and subscriptions are kept. Invalid tags are logged and dropped.
func (s *Store) Replace(facts map[tag.Tag]int32) {
	next := make(map[tag.Tag]int32, len(facts))
	for t, v := range facts {
		if !s.checkTag(t) {
			continue
		}
		next[t] = v
	}
	s.defined = next
}

// Close drops every fact and subscription. The store stays usable.
func (s *Store) Close() {
	s.defined = map[tag.Tag]int32{}
	s.valueDelegates.Clear()
	s.definitionDelegates.Clear()
}

func (s *Store) checkTag(t tag.Tag) bool {
	if t.IsValid() {
		return true
	}
	s.logger.Printf("facts: passed fact tag %s is not valid", t)
	return false
}
