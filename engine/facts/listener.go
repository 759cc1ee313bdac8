package facts

import (
	"strings"

	"github.com/nathoo/factcore/engine/events"
	"github.com/nathoo/factcore/engine/tag"
	"github.com/nathoo/factcore/types"
)

// Listener follows both notification streams of one fact until cancelled.
type Listener struct {
	store    *Store
	tag      tag.Tag
	valueH   events.Handle
	definedH events.Handle
	active   bool

	onChanged events.Handler
	onDefined events.Handler
}

// Listen subscribes to value changes and definition of t in one step.
// Either callback may be nil; a listener with neither cancels itself on its
// first notification.
func (s *Store) Listen(t tag.Tag, onChanged, onDefined events.Handler) *Listener {
	l := &Listener{
		store:     s,
		tag:       t,
		active:    true,
		onChanged: onChanged,
		onDefined: onDefined,
	}
	l.valueH = s.OnValueChanged(t, l.handleValueChanged)
	l.definedH = s.OnBecameDefined(t, l.handleBecameDefined)
	return l
}

// Tag returns the fact being followed.
func (l *Listener) Tag() tag.Tag {
	return l.tag
}

// Active reports whether Cancel has not been called yet.
func (l *Listener) Active() bool {
	return l.active
}

// Cancel removes both subscriptions. Safe to call more than once, including
// from inside a callback.
func (l *Listener) Cancel() {
	if !l.active {
		return
	}
	l.active = false
	l.store.RemoveValueChanged(l.tag, l.valueH)
	l.store.RemoveBecameDefined(l.tag, l.definedH)
}

func (l *Listener) handleValueChanged(v int32) {
	if l.unbound() {
		l.Cancel()
		return
	}
	if l.onChanged != nil {
		l.onChanged(v)
	}
}

func (l *Listener) handleBecameDefined(v int32) {
	if l.unbound() {
		l.Cancel()
		return
	}
	if l.onDefined != nil {
		l.onDefined(v)
	}
}

func (l *Listener) unbound() bool {
	return l.onChanged == nil && l.onDefined == nil
}

// ParseChangeType accepts "set" and "add", case-insensitively.
func ParseChangeType(s string) (types.ChangeType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "set":
		return types.Set, true
	case "add":
		return types.Add, true
	default:
		return 0, false
	}
}
