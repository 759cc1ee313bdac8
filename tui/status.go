package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing the
// defined fact count, watched tags and command count.
func (m Model) renderStatusBar() string {
	s := m.session

	left := fmt.Sprintf(" Facts: %d", s.Store.Len())
	right := fmt.Sprintf("Cmd:%d ", len(s.CommandLog))

	// Show watched tags if they fit, otherwise just count.
	if watching := s.Watching(); len(watching) > 0 {
		names := make([]string, 0, len(watching))
		for _, t := range watching {
			names = append(names, t.String())
		}
		candidate := fmt.Sprintf("%s | Watch: %s", left, strings.Join(names, ", "))
		if lipgloss.Width(candidate)+lipgloss.Width(right)+2 < m.width {
			left = candidate
		} else {
			left = fmt.Sprintf("%s | Watch: %d", left, len(watching))
		}
	}
	if m.meta.Trace {
		right = "trace | " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
