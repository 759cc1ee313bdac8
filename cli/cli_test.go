package cli

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/factcore/engine"
	"github.com/nathoo/factcore/engine/save"
	"github.com/nathoo/factcore/engine/tag"
	"github.com/nathoo/factcore/types"
)

var questStep = tag.MustRequest("Quest.Step")

// testContent returns a minimal content set for CLI testing.
func testContent() *types.Content {
	return &types.Content{
		Presets: map[string]types.Preset{
			"start": {Name: "start", Entries: []types.PresetEntry{
				{Name: "Quest.Step", Tag: questStep, Value: 1},
			}},
		},
	}
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	s := engine.New(testContent(), log.New(&bytes.Buffer{}, "", 0))
	c := New(s, nil, t.TempDir())
	var out bytes.Buffer
	c.In = strings.NewReader(input)
	c.Out = &out
	return c, &out
}

func newTestCLIWithSlots(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	slots, err := save.OpenSlots(filepath.Join(t.TempDir(), "slots.db"))
	if err != nil {
		t.Fatalf("OpenSlots failed: %v", err)
	}
	t.Cleanup(func() { slots.Close() })

	c, out := newTestCLI(t, input)
	c.Meta.Slots = slots
	return c, out
}

func TestCLI_BasicCommands(t *testing.T) {
	c, out := newTestCLI(t, "set Quest.Step 2\nget Quest.Step\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if strings.Count(output, "Quest.Step: 2") != 2 {
		t.Errorf("expected value printed twice, got:\n%s", output)
	}
	if !strings.Contains(output, "[Goodbye.]") {
		t.Error("expected goodbye message")
	}
}

func TestCLI_StopsAtQuit(t *testing.T) {
	c, out := newTestCLI(t, "/quit\nset Quest.Step 9\n")
	c.Run(context.Background())

	if c.Session.Store.IsDefined(questStep) {
		t.Error("commands after /quit should not run")
	}
	if strings.Contains(out.String(), "Quest.Step: 9") {
		t.Error("unexpected output after /quit")
	}
}

func TestCLI_EOFEndsLoop(t *testing.T) {
	c, _ := newTestCLI(t, "preset start\n")
	c.Run(context.Background())
	if v, _ := c.Session.Store.ValueIfDefined(questStep); v != 1 {
		t.Errorf("expected preset applied, got %d", v)
	}
}

func TestCLI_HelpCommand(t *testing.T) {
	c, out := newTestCLI(t, "/help\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	for _, want := range []string{"/save", "/export", "set <tag> <value>"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in help output", want)
		}
	}
}

func TestCLI_SaveAndLoadFiles(t *testing.T) {
	c, out := newTestCLI(t, "set Quest.Step 5\n/save test1\nset Quest.Step 9\nset Other.Fact 1\n/load test1\nget Quest.Step\nget Other.Fact\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "Facts saved to test1.") {
		t.Errorf("expected save confirmation, got:\n%s", output)
	}
	if !strings.Contains(output, "Facts loaded from test1 (1 facts).") {
		t.Errorf("expected load confirmation, got:\n%s", output)
	}
	if v, _ := c.Session.Store.ValueIfDefined(questStep); v != 5 {
		t.Errorf("expected Quest.Step 5 after load, got %d", v)
	}
	if !strings.Contains(output, "Fact Other.Fact is undefined") {
		t.Error("expected load to replace facts wholesale")
	}
}

func TestCLI_SaveAndLoadSlots(t *testing.T) {
	c, out := newTestCLIWithSlots(t, "set Quest.Step 5\n/save alpha\n/slots\nreset Quest.Step\n/load alpha\n/delete alpha\n/slots\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	for _, want := range []string{
		"Facts saved to slot alpha.",
		"alpha (1 facts,",
		"Facts loaded from alpha (1 facts).",
		"Deleted slot alpha.",
		"No saved slots.",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
	if v, _ := c.Session.Store.ValueIfDefined(questStep); v != 5 {
		t.Errorf("expected Quest.Step 5 after load, got %d", v)
	}
}

func TestCLI_SlotsDisabled(t *testing.T) {
	c, out := newTestCLI(t, "/slots\n/delete x\n/quit\n")
	c.Run(context.Background())
	if strings.Count(out.String(), "Save slots are not enabled.") != 2 {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestCLI_ExportImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.zst")
	c, out := newTestCLI(t, "set Quest.Step 3\n/export "+path+"\nset Quest.Step 8\n/import "+path+"\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "Exported 1 facts to") || !strings.Contains(output, "Imported 1 facts from") {
		t.Errorf("unexpected output:\n%s", output)
	}
	if v, _ := c.Session.Store.ValueIfDefined(questStep); v != 3 {
		t.Errorf("expected Quest.Step 3 after import, got %d", v)
	}
}

func TestCLI_UsageErrors(t *testing.T) {
	c, out := newTestCLI(t, "/export\n/import\n/import /nonexistent/file.zst\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	for _, want := range []string{"Usage: /export <file>", "Usage: /import <file>", "Import failed"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestCLI_UnknownMetaCommand(t *testing.T) {
	c, out := newTestCLI(t, "/foo\n/quit\n")
	c.Run(context.Background())

	if !strings.Contains(out.String(), "Unknown command: /foo") {
		t.Error("expected unknown command message")
	}
}

func TestCLI_TraceToggle(t *testing.T) {
	c, out := newTestCLI(t, "/trace\nwatch Quest.Step\nset Quest.Step 1\n/trace\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "Trace output enabled.") {
		t.Error("expected trace enabled message")
	}
	if !strings.Contains(output, "[trace] Events: 2") {
		t.Errorf("expected trace of two events, got:\n%s", output)
	}
	if !strings.Contains(output, "[trace]   defined Quest.Step 1") {
		t.Errorf("expected defined event trace, got:\n%s", output)
	}
	if !strings.Contains(output, "Trace output disabled.") {
		t.Error("expected trace disabled message")
	}
}

func TestCLI_StateCommand(t *testing.T) {
	c, out := newTestCLI(t, "set Quest.Step 1\n/state\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "Facts: 1") || !strings.Contains(output, "Presets: 1, Conditions: 0") {
		t.Errorf("unexpected state output:\n%s", output)
	}
}

func TestCLI_CommentsAndBlankLines(t *testing.T) {
	c, out := newTestCLI(t, "# comment\n\n   \n/quit\n")
	c.Run(context.Background())

	if strings.Contains(out.String(), "Enter a command") {
		t.Error("blank and comment lines should be skipped")
	}
	if len(c.Session.CommandLog) != 0 {
		t.Errorf("expected no logged commands, got %v", c.Session.CommandLog)
	}
}

func TestCLI_EchoInput(t *testing.T) {
	c, out := newTestCLI(t, "get Quest.Step\n/quit\n")
	c.EchoInput = true
	c.Run(context.Background())

	if !strings.Contains(out.String(), "> get Quest.Step\n") {
		t.Errorf("expected echoed input, got:\n%s", out.String())
	}
}

func TestCLI_LoadNonexistent(t *testing.T) {
	c, out := newTestCLI(t, "/load nope\n/quit\n")
	c.Run(context.Background())

	if !strings.Contains(out.String(), "Load failed") {
		t.Error("expected load failure message")
	}
}

func TestCLI_Again_RepeatsLastCommand(t *testing.T) {
	c, _ := newTestCLI(t, "add Quest.Step 2\nagain\ng\n/quit\n")
	c.Run(context.Background())

	if v, _ := c.Session.Store.ValueIfDefined(questStep); v != 6 {
		t.Errorf("expected three adds (6), got %d", v)
	}
}

func TestCLI_Again_NothingToRepeat(t *testing.T) {
	c, out := newTestCLI(t, "again\n/quit\n")
	c.Run(context.Background())

	if !strings.Contains(out.String(), "Nothing to repeat.") {
		t.Error("expected 'Nothing to repeat.' message")
	}
}

func TestCLI_Reload(t *testing.T) {
	dir := t.TempDir()
	yaml := "presets:\n  late:\n    Quest.Step: 9\nconditions:\n  done:\n    all:\n      - {tag: Quest.Step, op: \">=\", value: 9}\n"
	if err := os.WriteFile(filepath.Join(dir, "content.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	c, out := newTestCLI(t, "preset start\n/reload\npreset late\ncond done\n/quit\n")
	c.Meta.ContentDir = dir
	c.Meta.Logger = log.New(&bytes.Buffer{}, "", 0)
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "[Reloaded 1 presets and 1 conditions.]") {
		t.Errorf("expected reload message, got:\n%s", output)
	}
	if !strings.Contains(output, "-> true") {
		t.Errorf("expected reloaded condition to pass, got:\n%s", output)
	}
	if v, _ := c.Session.Store.ValueIfDefined(questStep); v != 9 {
		t.Errorf("expected Quest.Step = 9, got %d", v)
	}
}

func TestCLI_ReloadErrors(t *testing.T) {
	c, out := newTestCLI(t, "/reload\n/quit\n")
	c.Run(context.Background())
	if !strings.Contains(out.String(), "No content directory to reload.") {
		t.Errorf("expected no-dir message, got:\n%s", out.String())
	}

	c, out = newTestCLI(t, "/reload\npreset start\n/quit\n")
	c.Meta.ContentDir = t.TempDir()
	c.Run(context.Background())
	if !strings.Contains(out.String(), "Reload failed") {
		t.Errorf("expected reload failure, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Applied 1 facts from start.") {
		t.Errorf("expected old content kept after failed reload, got:\n%s", out.String())
	}
}
