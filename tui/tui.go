package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/factcore/cli"
	"github.com/nathoo/factcore/engine"
)

// origin records who produced a scrollback line.
type origin int

const (
	fromSession origin = iota
	fromInput
	fromMeta
)

// rawLine is one unstyled scrollback line. Lines are kept raw so the
// scrollback can be re-wrapped after a resize.
type rawLine struct {
	text   string
	origin origin
	kind   lineKind
}

func (rl rawLine) render(width int) string {
	if rl.text == "" {
		return ""
	}
	wrapped := wordWrap(rl.text, width)
	switch rl.origin {
	case fromInput:
		return stylePlayerInput.Render(wrapped)
	case fromMeta:
		return styledSystemMsg(wrapped)
	}
	return renderLineKind(wrapped, rl.kind)
}

// Model is the Bubble Tea model for the factcore console.
type Model struct {
	session *engine.Session
	meta    *cli.Meta
	ctx     context.Context
	banner  []string
	changes <-chan struct{}

	viewport viewport.Model
	input    textinput.Model
	history  *History
	rawLines []rawLine

	width    int
	height   int
	ready    bool
	quitting bool
	lastCmd  string
}

// bannerMsg delivers the startup banner once the program is running.
type bannerMsg []string

// contentChangedMsg reports that the content directory changed on disk.
type contentChangedMsg struct{}

// waitForChange blocks on changes and turns the next signal into a message.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return contentChangedMsg{}
	}
}

// New creates a console model over s. Slash commands go to meta.
func New(ctx context.Context, s *engine.Session, meta *cli.Meta, banner []string) Model {
	in := textinput.New()
	in.Prompt = "> "
	in.PromptStyle = styleInputPrompt
	in.CharLimit = 256
	in.Focus()

	return Model{
		session: s,
		meta:    meta,
		ctx:     ctx,
		banner:  banner,
		input:   in,
		history: NewHistory(100),
	}
}

// Run starts the console in the alternate screen and blocks until it exits
// or ctx is cancelled. Each signal on changes reloads content through meta;
// changes may be nil.
func Run(ctx context.Context, s *engine.Session, meta *cli.Meta, banner []string, changes <-chan struct{}) error {
	m := New(ctx, s, meta, banner)
	m.changes = changes
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	banner := bannerMsg(m.banner)
	cmds := []tea.Cmd{textinput.Blink, func() tea.Msg { return banner }}
	if m.changes != nil {
		cmds = append(cmds, waitForChange(m.changes))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	case bannerMsg:
		m.appendLines(fromMeta, msg)
		m.appendLines(fromSession, []string{""})
	case contentChangedMsg:
		m.appendLines(fromMeta, append([]string{"Content changed on disk."}, m.meta.Reload()...))
		m.appendLines(fromSession, []string{""})
		return m, waitForChange(m.changes)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	// Status bar and input line take one row each.
	vpHeight := max(height-2, 1)

	if m.ready {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	} else {
		m.viewport = viewport.New(width, vpHeight)
		m.viewport.KeyMap = viewportKeyMap()
		m.ready = true
	}
	m.refreshViewport()
}

// handleKey reacts to console keys. handled is false for keys that belong
// to the text input.
func (m Model) handleKey(msg tea.KeyMsg) (next tea.Model, cmd tea.Cmd, handled bool) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit, true
	case "enter":
		next, cmd = m.handleEnter()
		return next, cmd, true
	case "up":
		if line, ok := m.history.Prev(); ok {
			m.input.SetValue(line)
			m.input.CursorEnd()
		}
		return m, nil, true
	case "down":
		line, _ := m.history.Next()
		m.input.SetValue(line)
		m.input.CursorEnd()
		return m, nil, true
	case "pgup", "pgdown":
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd, true
	}
	return m, nil, false
}

// handleEnter runs the submitted line as a meta-command or a console command.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if line == "" {
		return m, nil
	}
	m.history.Push(line)
	m.history.ResetCursor()

	if strings.HasPrefix(line, "/") {
		out, quit := m.meta.Handle(m.ctx, line)
		if line == "/help" {
			out = append(out, "", "Navigation: PgUp/PgDn to scroll, Up/Down for command history")
		}
		m.appendBlock(line, fromMeta, out)
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch strings.ToLower(line) {
	case "again", "g":
		if m.lastCmd == "" {
			m.appendBlock(line, fromMeta, []string{"Nothing to repeat."})
			return m, nil
		}
		line = m.lastCmd
	default:
		m.lastCmd = line
	}

	result := m.session.Exec(line)
	out := result.Output
	if m.meta.Trace {
		out = append(out, cli.TraceLines(result)...)
	}
	m.appendBlock(line, fromSession, out)
	return m, nil
}

// appendBlock echoes input, adds its output and a blank separator.
func (m *Model) appendBlock(input string, from origin, lines []string) {
	m.rawLines = append(m.rawLines, rawLine{text: "> " + input, origin: fromInput})
	m.appendLines(from, lines)
	m.rawLines = append(m.rawLines, rawLine{})
	m.refreshViewport()
}

func (m *Model) appendLines(from origin, lines []string) {
	for _, text := range lines {
		rl := rawLine{text: text, origin: from}
		if from == fromSession {
			rl.kind = classifyLine(text)
		}
		m.rawLines = append(m.rawLines, rl)
	}
	m.refreshViewport()
}

// refreshViewport re-renders the whole scrollback at the current width and
// scrolls to the end.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := max(m.width, 10)
	rendered := make([]string, len(m.rawLines))
	for i, rl := range m.rawLines {
		rendered[i] = rl.render(width)
	}
	m.viewport.SetContent(strings.Join(rendered, "\n"))
	m.viewport.GotoBottom()
}

func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindEvent:
		return styleEvent.Render(line)
	case kindUndefined:
		return styleUndefined.Render(line)
	case kindTrue:
		return styleTrue.Render(line)
	case kindFalse:
		return styleFalse.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	}
	return styledFactValue(line)
}

// wordWrap breaks text at spaces so no line exceeds width where possible.
// Leading indentation is kept on the first line so listings stay aligned.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	indent := text[:len(text)-len(strings.TrimLeft(text, " "))]
	var b strings.Builder
	b.WriteString(indent)
	col := len(indent)

	for i, word := range strings.Fields(text) {
		if i > 0 {
			if col+1+len(word) > width {
				b.WriteByte('\n')
				col = 0
			} else {
				b.WriteByte(' ')
				col++
			}
		}
		b.WriteString(word)
		col += len(word)
	}
	return b.String()
}

// View implements tea.Model.
func (m Model) View() string {
	switch {
	case m.quitting:
		return ""
	case !m.ready:
		return "Loading..."
	}
	return strings.Join([]string{m.viewport.View(), m.renderStatusBar(), m.input.View()}, "\n")
}

// viewportKeyMap keeps paging keys on the viewport and leaves Up/Down to
// the input history.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
