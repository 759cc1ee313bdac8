// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for a factcore session.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/factcore/engine"
	"github.com/nathoo/factcore/engine/save"
)

// CLI handles line-based terminal interaction.
type CLI struct {
	Session   *engine.Session
	Meta      *Meta
	In        io.Reader
	Out       io.Writer
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given session. slots may be nil, in which
// case saves go to JSON files under saveDir.
func New(s *engine.Session, slots *save.Slots, saveDir string) *CLI {
	return &CLI{
		Session: s,
		Meta:    &Meta{Session: s, Slots: slots, SaveDir: saveDir},
		In:      os.Stdin,
		Out:     os.Stdout,
	}
}

// Run reads lines until EOF, /quit, or ctx is cancelled. Blank lines and
// lines starting with '#' are skipped so script files can carry comments.
func (c *CLI) Run(ctx context.Context) {
	scanner := bufio.NewScanner(c.In)
	for ctx.Err() == nil {
		fmt.Fprint(c.Out, "> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if c.EchoInput {
			fmt.Fprintln(c.Out, line)
		}
		if quit := c.step(ctx, line); quit {
			return
		}
	}
}

// step handles one input line and reports whether the session should end.
func (c *CLI) step(ctx context.Context, line string) bool {
	if strings.HasPrefix(line, "/") {
		out, quit := c.Meta.Handle(ctx, line)
		for _, text := range out {
			fmt.Fprintf(c.Out, "[%s]\n", text)
		}
		return quit
	}

	switch strings.ToLower(line) {
	case "again", "g":
		if c.lastCmd == "" {
			fmt.Fprintln(c.Out, "Nothing to repeat.")
			return false
		}
		line = c.lastCmd
	default:
		c.lastCmd = line
	}

	result := c.Session.Exec(line)
	c.writeLines(result.Output)
	if c.Meta.Trace {
		c.writeLines(TraceLines(result))
	}
	return false
}

func (c *CLI) writeLines(lines []string) {
	for _, text := range lines {
		fmt.Fprintln(c.Out, text)
	}
}
