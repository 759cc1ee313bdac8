package loader

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/factcore/engine/tag"
	"github.com/nathoo/factcore/types"
)

func testLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

func TestLoad_Lua(t *testing.T) {
	logger, buf := testLogger()
	content, err := Load("testdata/lua", logger)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(content.Presets) != 3 {
		t.Errorf("expected 3 presets, got %d", len(content.Presets))
	}

	start := content.Presets["start"]
	if len(start.Entries) != 1 || start.Entries[0].Tag != tag.MustRequest("Quest.Step") || start.Entries[0].Value != 1 {
		t.Errorf("unexpected start preset: %+v", start)
	}

	ch2 := content.Presets["chapter2"]
	var got []string
	for _, e := range ch2.Entries {
		got = append(got, e.Tag.String())
	}
	if strings.Join(got, ",") != "Quest.Step,World.Door.Open,Player.Level" {
		t.Errorf("expected array entries in order then keyed ones, got %v", got)
	}

	broken := content.Presets["broken_tag"]
	if len(broken.Entries) != 2 || broken.Entries[0].Tag.IsValid() {
		t.Errorf("expected invalid tag kept as entry, got %+v", broken.Entries)
	}
	if !strings.Contains(buf.String(), `fact tag "Not A Tag" is not valid`) {
		t.Errorf("expected invalid tag warning, got %q", buf.String())
	}

	door := content.Conditions["door_ready"]
	if len(door.And) != 1 || door.And[0].Operator != types.GreaterOrEqual || door.And[0].Wanted != 3 {
		t.Errorf("unexpected door_ready all: %+v", door.And)
	}
	if len(door.Or) != 2 || door.Or[0].Operator != types.IsUndefined || door.Or[1].Operator != types.Equals {
		t.Errorf("unexpected door_ready any: %+v", door.Or)
	}

	always := content.Conditions["always"]
	if len(always.And) != 0 || len(always.Or) != 0 {
		t.Errorf("expected empty condition, got %+v", always)
	}

	raw := content.Conditions["raw_table"]
	if len(raw.And) != 1 || raw.And[0].Operator != types.Greater || raw.And[0].Tag != tag.MustRequest("Player.Level") {
		t.Errorf("unexpected raw_table condition: %+v", raw)
	}
}

func TestLoad_YAML(t *testing.T) {
	logger, buf := testLogger()
	content, err := Load("testdata/yaml", logger)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	ch3 := content.Presets["chapter3"]
	want := []types.PresetEntry{
		{Name: "Quest.Step", Tag: tag.MustRequest("Quest.Step"), Value: 7},
		{Name: "World.Door.Open", Tag: tag.MustRequest("World.Door.Open"), Value: 0},
		{Name: "Npc.Mood", Tag: tag.MustRequest("Npc.Mood"), Value: -2},
	}
	if len(ch3.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), ch3.Entries)
	}
	for i := range want {
		if ch3.Entries[i] != want[i] {
			t.Errorf("entry %d: expected %+v, got %+v", i, want[i], ch3.Entries[i])
		}
	}

	if _, ok := content.Presets["empty"]; !ok {
		t.Error("expected empty preset to load")
	}
	if !strings.Contains(buf.String(), `preset "empty" is empty`) {
		t.Errorf("expected empty preset warning, got %q", buf.String())
	}

	late := content.Conditions["late_game"]
	if len(late.And) != 2 || late.And[1].Operator != types.IsDefined {
		t.Errorf("unexpected late_game: %+v", late)
	}
	mood := content.Conditions["mood_any"]
	if len(mood.Or) != 2 || mood.Or[0].Operator != types.Less || mood.Or[0].Wanted != 0 {
		t.Errorf("unexpected mood_any: %+v", mood)
	}
}

func TestLoad_Mixed(t *testing.T) {
	logger, _ := testLogger()
	content, err := Load("testdata/mixed", logger)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := content.Presets["from_lua"]; !ok {
		t.Error("expected Lua preset")
	}
	if _, ok := content.Presets["from_yaml"]; !ok {
		t.Error("expected YAML preset")
	}
}

func TestLoad_Errors(t *testing.T) {
	logger, _ := testLogger()
	_, err := Load("testdata/bad", logger)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}

	all := strings.Join(ve.Errors, "\n")
	for _, want := range []string{
		`duplicate preset "twice" (dupes.lua`,
		`duplicate preset "twice" (dupes.yaml`,
		`preset "fractional" entry 1 (Quest.Step): value 1.5 is not an integer`,
		`preset "huge" entry 1 (Quest.Step): value 3000000000 is out of int32 range`,
		`preset "stringy" entry 1 (Quest.Step): value lots (string) is not an integer`,
		`condition "bad_op" all[0]: unknown operator "~="`,
		`condition "no_value" all[0]: operator >= needs a value`,
	} {
		if !strings.Contains(all, want) {
			t.Errorf("expected error containing %q, got:\n%s", want, all)
		}
	}
	if len(ve.Errors) != 7 {
		t.Errorf("expected 7 errors, got %d:\n%s", len(ve.Errors), all)
	}
}

func TestLoad_Sandbox(t *testing.T) {
	logger, _ := testLogger()
	_, err := Load("testdata/sandbox", logger)
	if err == nil || !strings.Contains(err.Error(), "executing escape.lua") {
		t.Errorf("expected sandboxed dofile to fail, got %v", err)
	}
}

func TestLoad_NoContent(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	logger, _ := testLogger()
	if _, err := Load(dir, logger); err == nil || !strings.Contains(err.Error(), "no .lua or .yaml files") {
		t.Errorf("expected no-content error, got %v", err)
	}
}

func TestLoad_MissingDir(t *testing.T) {
	logger, _ := testLogger()
	if _, err := Load(filepath.Join(t.TempDir(), "nope"), logger); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.yaml"), []byte("presets: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	logger, _ := testLogger()
	if _, err := Load(dir, logger); err == nil || !strings.Contains(err.Error(), "decoding x.yaml") {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestLoad_PresetsNotMapping(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.yaml"), []byte("presets: [1, 2]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	logger, _ := testLogger()
	if _, err := Load(dir, logger); err == nil || !strings.Contains(err.Error(), "presets must be a mapping") {
		t.Errorf("expected shape error, got %v", err)
	}
}
