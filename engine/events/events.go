// Package events implements per-tag multicast notification lists.
// Dispatch is synchronous and unguarded: a handler that re-enters the
// owner of the registry nests inside the current dispatch.
package events

import (
	"log"

	"github.com/nathoo/factcore/engine/tag"
)

// Handler receives the fact value carried by a notification.
type Handler func(value int32)

// Handle identifies one subscription. The zero handle is never issued.
type Handle uint64

type subscriber struct {
	handle Handle
	fn     Handler
}

// Registry maps tags to their subscriber lists. Entries are created on first
// subscription and removed when their last subscriber leaves.
type Registry struct {
	name   string
	logger *log.Logger
	next   Handle
	subs   map[tag.Tag][]subscriber
}

// NewRegistry creates an empty registry. name appears in log lines.
func NewRegistry(name string, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		name:   name,
		logger: logger,
		subs:   map[tag.Tag][]subscriber{},
	}
}

// Subscribe registers fn for t and returns its handle. An invalid tag is
// logged but still accepted; nothing ever dispatches for it.
func (r *Registry) Subscribe(t tag.Tag, fn Handler) Handle {
	if !t.IsValid() {
		r.logger.Printf("%s: passed fact tag %s is not valid", r.name, t)
	}
	if fn == nil {
		r.logger.Printf("%s: nil handler for fact tag %s", r.name, t)
		return 0
	}
	r.next++
	h := r.next
	r.subs[t] = append(r.subs[t], subscriber{handle: h, fn: fn})
	return h
}

// Unsubscribe removes the subscription h from t. Unknown handles are ignored.
func (r *Registry) Unsubscribe(t tag.Tag, h Handle) {
	list, ok := r.subs[t]
	if !ok {
		return
	}
	for i, s := range list {
		if s.handle != h {
			continue
		}
		// Copy so an in-flight dispatch keeps its own snapshot intact.
		next := make([]subscriber, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(r.subs, t)
		} else {
			r.subs[t] = next
		}
		return
	}
}

// Dispatch calls every handler subscribed to t, in subscription order.
// Handlers removed by an earlier handler of the same dispatch are skipped.
func (r *Registry) Dispatch(t tag.Tag, value int32) {
	list, ok := r.subs[t]
	if !ok {
		return
	}
	for _, s := range list {
		if !r.subscribed(t, s.handle) {
			continue
		}
		s.fn(value)
	}
}

// Count returns the number of subscribers for t.
func (r *Registry) Count(t tag.Tag) int {
	return len(r.subs[t])
}

// Len returns the number of tags with at least one subscriber.
func (r *Registry) Len() int {
	return len(r.subs)
}

// Clear drops every subscription.
func (r *Registry) Clear() {
	r.subs = map[tag.Tag][]subscriber{}
}

func (r *Registry) subscribed(t tag.Tag, h Handle) bool {
	for _, s := range r.subs[t] {
		if s.handle == h {
			return true
		}
	}
	return false
}
