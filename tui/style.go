package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleFactName = lipgloss.NewStyle().
			Bold(true)

	styleUndefined = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	styleEvent = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleTrue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))

	styleFalse = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindValue lineKind = iota
	kindEvent
	kindUndefined
	kindTrue
	kindFalse
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "[trace]"):
		return kindTrace
	case strings.HasPrefix(trimmed, "[defined]"), strings.HasPrefix(trimmed, "[changed]"):
		return kindEvent
	case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
		return kindSystem
	case strings.HasPrefix(trimmed, "Usage:"),
		strings.HasPrefix(trimmed, "Unknown"),
		strings.HasPrefix(trimmed, "unknown"),
		strings.HasSuffix(trimmed, "is not valid."),
		strings.HasSuffix(trimmed, "is not a 32-bit integer."):
		return kindError
	case strings.HasPrefix(trimmed, "Fact ") && strings.HasSuffix(trimmed, " is undefined"):
		return kindUndefined
	case strings.HasSuffix(trimmed, ": true"), strings.HasSuffix(trimmed, "-> true"):
		return kindTrue
	case strings.HasSuffix(trimmed, ": false"), strings.HasSuffix(trimmed, "-> false"):
		return kindFalse
	default:
		return kindValue
	}
}

// styledFactValue renders "Quest.Step: 3" with the tag name bold.
func styledFactValue(line string) string {
	i := strings.LastIndex(line, ": ")
	if i < 0 {
		return styleValue.Render(line)
	}
	return styleFactName.Render(line[:i]) + styleValue.Render(line[i:])
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
