package loader

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/factcore/types"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates definitions from every content file.
type collector struct {
	presets    []rawPreset
	conditions []rawCondition
	source     string
}

// Load reads every .lua, .yaml and .yml file in dir, compiles presets and
// conditions, validates them, and returns the immutable content. Lua files
// run first, in sorted order, then YAML files. The Lua VM is discarded after
// loading. Warnings are written to logger; a nil logger uses log.Default().
func Load(dir string, logger *log.Logger) (*types.Content, error) {
	if logger == nil {
		logger = log.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content directory %s: %w", dir, err)
	}

	var luaFiles, yamlFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".lua":
			luaFiles = append(luaFiles, e.Name())
		case ".yaml", ".yml":
			yamlFiles = append(yamlFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 && len(yamlFiles) == 0 {
		return nil, fmt.Errorf("no .lua or .yaml files found in %s", dir)
	}

	coll := &collector{}

	if len(luaFiles) > 0 {
		if err := runLua(dir, sortedContentFiles(luaFiles), coll); err != nil {
			return nil, err
		}
	}
	for _, f := range sortedContentFiles(yamlFiles) {
		data, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		coll.source = f
		if err := decodeYAML(data, coll); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", f, err)
		}
	}

	content, ve := compile(coll)
	validate(content, ve)
	for _, w := range ve.Warnings {
		logger.Printf("warning: %s", w)
	}
	if len(ve.Errors) > 0 {
		return nil, ve
	}
	return content, nil
}

func runLua(dir string, files []string, coll *collector) error {
	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)
	registerAPI(L, coll)

	for _, f := range files {
		coll.source = f
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return fmt.Errorf("executing %s: %w", f, err)
		}
	}
	return nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the content directory or
// break determinism.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
			tbl.RawSetString("random", lua.LNil)
		}
	}
}
