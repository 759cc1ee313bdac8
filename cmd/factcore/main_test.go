package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/factcore/config"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		cfg     config.Config
		want    options
		wantErr string
	}{
		{
			name: "content dir and flags",
			args: []string{"--plain", "--trace", "--preset", "a", "content", "--preset", "b"},
			want: options{plain: true, trace: true, contentDir: "content", presets: []string{"a", "b"}},
		},
		{
			name: "env fills defaults",
			cfg:  config.Config{ContentDir: "env", Watch: true, Presets: []string{"start"}},
			args: []string{"--no-slots"},
			want: options{watch: true, noSlots: true, contentDir: "env", presets: []string{"start"}},
		},
		{
			name: "first positional wins",
			args: []string{"one", "two"},
			want: options{contentDir: "one"},
		},
		{
			name: "version needs no content dir",
			args: []string{"--version"},
			want: options{version: true},
		},
		{name: "missing content dir", wantErr: "Usage:"},
		{name: "script without path", args: []string{"content", "--script"}, wantErr: "--script requires"},
		{name: "preset without name", args: []string{"content", "--preset"}, wantErr: "--preset requires"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args, tt.cfg)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseArgs failed: %v", err)
			}
			if got.version != tt.want.version || got.plain != tt.want.plain ||
				got.trace != tt.want.trace || got.watch != tt.want.watch ||
				got.noSlots != tt.want.noSlots || got.contentDir != tt.want.contentDir ||
				got.scriptFile != tt.want.scriptFile {
				t.Errorf("parseArgs = %+v, want %+v", got, tt.want)
			}
			if strings.Join(got.presets, ",") != strings.Join(tt.want.presets, ",") {
				t.Errorf("presets = %v, want %v", got.presets, tt.want.presets)
			}
		})
	}
}

func writeContent(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	yaml := "presets:\n  start:\n    Quest.Step: 1\n"
	if err := os.WriteFile(filepath.Join(dir, "content.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write content failed: %v", err)
	}
	return dir
}

func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("FACTCORE_SAVE_DIR", dir)
	t.Setenv("FACTCORE_SLOTS_DB", filepath.Join(dir, "slots.db"))
	t.Setenv("FACTCORE_LOG_FILE", filepath.Join(dir, "factcore.log"))
	for _, key := range []string{"FACTCORE_CONTENT_DIR", "FACTCORE_PRESETS", "FACTCORE_PLAIN", "FACTCORE_WATCH"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestRun_ReturnsErrors(t *testing.T) {
	isolateEnv(t)
	content := writeContent(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"usage", nil, "Usage:"},
		{"missing content", []string{filepath.Join(t.TempDir(), "nope")}, "loading content"},
		{"unknown preset", []string{"--no-slots", "--preset", "nope", content}, "nope"},
		{"missing script", []string{"--no-slots", "--script", filepath.Join(t.TempDir(), "none.txt"), content}, "opening script"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRun_ScriptReleasesSlots(t *testing.T) {
	env := isolateEnv(t)
	content := writeContent(t)

	script := filepath.Join(t.TempDir(), "script.txt")
	if err := os.WriteFile(script, []byte("preset start\n/save first\n/quit\n"), 0o644); err != nil {
		t.Fatalf("write script failed: %v", err)
	}
	if err := run([]string{"--script", script, content}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// A second run opens the same slot database and reads back the save.
	if err := os.WriteFile(script, []byte("/load first\n/quit\n"), 0o644); err != nil {
		t.Fatalf("write script failed: %v", err)
	}
	if err := run([]string{"--script", script, content}); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	logData, err := os.ReadFile(filepath.Join(env, "factcore.log"))
	if err != nil {
		t.Fatalf("read log failed: %v", err)
	}
	if strings.Contains(string(logData), "save slots unavailable") {
		t.Errorf("expected slot database to reopen cleanly, log:\n%s", logData)
	}
}
