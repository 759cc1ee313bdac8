// Package tui provides a Bubble Tea terminal console for a factcore session.
package tui

// History keeps recent console lines for Up/Down recall. Re-entering a line
// moves it to the newest position instead of storing it twice.
type History struct {
	entries []string
	limit   int
	back    int // 0 = editing a fresh line, n = n steps back from newest
}

// NewHistory creates a history holding at most limit lines.
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{limit: limit}
}

// Push records line as the newest entry.
func (h *History) Push(line string) {
	for i, e := range h.entries {
		if e == line {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}
	h.entries = append(h.entries, line)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = h.entries[over:]
	}
}

// Prev steps to the next older entry, stopping at the oldest.
// Returns ("", false) if history is empty.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.back < len(h.entries) {
		h.back++
	}
	return h.entries[len(h.entries)-h.back], true
}

// Next steps to the next newer entry. Returns ("", false) once past the
// newest entry, leaving the cursor on a fresh line.
func (h *History) Next() (string, bool) {
	if h.back <= 1 {
		h.back = 0
		return "", false
	}
	h.back--
	return h.entries[len(h.entries)-h.back], true
}

// ResetCursor returns to a fresh line.
func (h *History) ResetCursor() {
	h.back = 0
}

// Len returns the number of stored lines.
func (h *History) Len() int {
	return len(h.entries)
}
