package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nathoo/factcore/engine"
	"github.com/nathoo/factcore/engine/save"
	"github.com/nathoo/factcore/loader"
	"github.com/nathoo/factcore/types"
)

// Meta handles slash commands shared by the line CLI and the TUI.
type Meta struct {
	Session *engine.Session
	// Slots stores named saves. When nil, saves are JSON files in SaveDir.
	Slots   *save.Slots
	SaveDir string
	Trace   bool

	// ContentDir and Logger are used by /reload. An empty ContentDir
	// disables it.
	ContentDir string
	Logger     *log.Logger
}

// Handle dispatches one meta-command. Returns output lines and whether the
// session should exit.
func (m *Meta) Handle(ctx context.Context, input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true
	case "/save":
		return m.cmdSave(ctx, arg), false
	case "/load":
		return m.cmdLoad(ctx, arg), false
	case "/slots":
		return m.cmdSlots(ctx), false
	case "/delete":
		return m.cmdDelete(ctx, arg), false
	case "/export":
		return m.cmdExport(arg), false
	case "/import":
		return m.cmdImport(arg), false
	case "/reload":
		return m.Reload(), false
	case "/state":
		return m.cmdState(), false
	case "/help":
		return HelpLines(), false
	case "/trace":
		m.Trace = !m.Trace
		if m.Trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false
	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Meta) cmdSave(ctx context.Context, name string) []string {
	if name == "" {
		name = "quicksave"
	}
	data, err := save.Save(m.Session.Store)
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	if m.Slots != nil {
		if err := m.Slots.Put(ctx, name, data); err != nil {
			return []string{fmt.Sprintf("Save failed: %v", err)}
		}
		return []string{fmt.Sprintf("Facts saved to slot %s.", name)}
	}

	if err := os.MkdirAll(m.SaveDir, 0o755); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	path := filepath.Join(m.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	return []string{fmt.Sprintf("Facts saved to %s.", name)}
}

func (m *Meta) cmdLoad(ctx context.Context, name string) []string {
	if name == "" {
		name = "quicksave"
	}

	var (
		data []byte
		err  error
	)
	if m.Slots != nil {
		data, err = m.Slots.Get(ctx, name)
	} else {
		data, err = os.ReadFile(filepath.Join(m.SaveDir, name+".json"))
	}
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	sd, err := save.Load(data)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	save.Apply(m.Session.Store, sd, m.Logger)
	return []string{fmt.Sprintf("Facts loaded from %s (%d facts).", name, m.Session.Store.Len())}
}

func (m *Meta) cmdSlots(ctx context.Context) []string {
	if m.Slots == nil {
		return []string{"Save slots are not enabled."}
	}
	slots, err := m.Slots.List(ctx)
	if err != nil {
		return []string{fmt.Sprintf("Listing slots failed: %v", err)}
	}
	if len(slots) == 0 {
		return []string{"No saved slots."}
	}
	out := []string{"Slots:"}
	for _, sl := range slots {
		out = append(out, fmt.Sprintf("  %s (%d facts, %s)", sl.Name, sl.Facts, humanize.Time(sl.UpdatedAt)))
	}
	return out
}

func (m *Meta) cmdDelete(ctx context.Context, name string) []string {
	if m.Slots == nil {
		return []string{"Save slots are not enabled."}
	}
	if name == "" {
		return []string{"Usage: /delete <slot>"}
	}
	if err := m.Slots.Delete(ctx, name); err != nil {
		return []string{fmt.Sprintf("Delete failed: %v", err)}
	}
	return []string{fmt.Sprintf("Deleted slot %s.", name)}
}

func (m *Meta) cmdExport(path string) []string {
	if path == "" {
		return []string{"Usage: /export <file>"}
	}
	data, err := save.Save(m.Session.Store)
	if err != nil {
		return []string{fmt.Sprintf("Export failed: %v", err)}
	}
	if err := save.WriteFile(path, data); err != nil {
		return []string{fmt.Sprintf("Export failed: %v", err)}
	}
	return []string{fmt.Sprintf("Exported %d facts to %s.", m.Session.Store.Len(), path)}
}

func (m *Meta) cmdImport(path string) []string {
	if path == "" {
		return []string{"Usage: /import <file>"}
	}
	data, err := save.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("Import failed: %v", err)}
	}
	sd, err := save.Load(data)
	if err != nil {
		return []string{fmt.Sprintf("Import failed: %v", err)}
	}
	save.Apply(m.Session.Store, sd, m.Logger)
	return []string{fmt.Sprintf("Imported %d facts from %s.", m.Session.Store.Len(), path)}
}

// Reload reads the content directory again and swaps the session's presets
// and conditions. Facts are kept. On error the old content stays.
func (m *Meta) Reload() []string {
	if m.ContentDir == "" {
		return []string{"No content directory to reload."}
	}
	content, err := loader.Load(m.ContentDir, m.Logger)
	if err != nil {
		return []string{fmt.Sprintf("Reload failed: %v", err)}
	}
	m.Session.SetContent(content)
	return []string{fmt.Sprintf("Reloaded %d presets and %d conditions.", len(content.Presets), len(content.Conditions))}
}

func (m *Meta) cmdState() []string {
	s := m.Session
	return []string{
		fmt.Sprintf("Facts: %d", s.Store.Len()),
		fmt.Sprintf("Watching: %d", len(s.Watching())),
		fmt.Sprintf("Favorites: %d", len(s.Favorites)),
		fmt.Sprintf("Commands: %d", len(s.CommandLog)),
		fmt.Sprintf("Presets: %d, Conditions: %d", len(s.Content.Presets), len(s.Content.Conditions)),
	}
}

// TraceLines describes the notifications carried by result.
func TraceLines(result types.Result) []string {
	if len(result.Events) == 0 {
		return nil
	}
	lines := []string{fmt.Sprintf("[trace] Events: %d", len(result.Events))}
	for _, e := range result.Events {
		lines = append(lines, fmt.Sprintf("[trace]   %s %s %d", e.Kind, e.Tag, e.Value))
	}
	return lines
}

// HelpLines returns the meta-command help followed by the console help.
func HelpLines() []string {
	lines := []string{
		"System:",
		"  /save [name]    Save facts (default: quicksave)",
		"  /load [name]    Load facts (default: quicksave)",
		"  /slots          List save slots",
		"  /delete <name>  Delete a save slot",
		"  /export <file>  Write facts to a compressed file",
		"  /import <file>  Replace facts from a compressed file",
		"  /reload         Reload presets and conditions from disk",
		"  /state          Session summary",
		"  /trace          Toggle notification trace",
		"  /quit           Exit",
		"  again (g)       Repeat the last command",
		"",
	}
	return append(lines, engine.HelpLines()...)
}
