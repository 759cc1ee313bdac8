// Package loader loads Lua and YAML fact content into Go structs at startup.
// The Lua VM is discarded after loading; zero Lua at runtime.
package loader

import (
	"fmt"
	"math"
	"sort"

	"github.com/nathoo/factcore/engine/rules"
	"github.com/nathoo/factcore/engine/tag"
	"github.com/nathoo/factcore/types"
	lua "github.com/yuin/gopher-lua"
)

// rawPreset holds a preset before compilation.
type rawPreset struct {
	name    string
	source  string
	entries []rawEntry
}

// rawEntry is one tag/value pair as written in the source.
type rawEntry struct {
	tag   string
	value any
}

// rawCondition holds a condition before compilation.
type rawCondition struct {
	name   string
	source string
	all    []rawSimple
	any    []rawSimple
}

// rawSimple is one comparison as written in the source.
type rawSimple struct {
	tag      string
	op       string
	value    any
	hasValue bool
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua scalar to a Go value. Tables and functions
// become nil.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == math.Trunc(f) && f >= math.MinInt64 && f <= math.MaxInt64 {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(val)
	default:
		return nil
	}
}

// toInt32 accepts whole numbers that fit in an int32.
func toInt32(v any) (int32, error) {
	var n int64
	switch val := v.(type) {
	case int:
		n = int64(val)
	case int64:
		n = val
	case uint64:
		if val > math.MaxInt32 {
			return 0, fmt.Errorf("value %d is out of int32 range", val)
		}
		n = int64(val)
	case float64:
		if val != math.Trunc(val) {
			return 0, fmt.Errorf("value %v is not an integer", val)
		}
		if val < math.MinInt32 || val > math.MaxInt32 {
			return 0, fmt.Errorf("value %v is out of int32 range", val)
		}
		n = int64(val)
	case nil:
		return 0, fmt.Errorf("value is missing")
	default:
		return 0, fmt.Errorf("value %v (%T) is not an integer", v, v)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, fmt.Errorf("value %d is out of int32 range", n)
	}
	return int32(n), nil
}

// compile converts collected raw definitions into content. Problems that
// make a definition unusable are recorded as errors; tags that do not parse
// are kept as the invalid tag and reported by validate.
func compile(coll *collector) (*types.Content, *ValidationError) {
	ve := &ValidationError{}
	content := &types.Content{
		Presets:    map[string]types.Preset{},
		Conditions: map[string]types.Condition{},
	}

	presetSources := map[string]string{}
	for _, raw := range coll.presets {
		if prev, ok := presetSources[raw.name]; ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"duplicate preset %q (%s, first defined in %s)", raw.name, raw.source, prev))
			continue
		}
		presetSources[raw.name] = raw.source
		p, errs := compilePreset(raw)
		ve.Errors = append(ve.Errors, errs...)
		content.Presets[raw.name] = p
	}

	conditionSources := map[string]string{}
	for _, raw := range coll.conditions {
		if prev, ok := conditionSources[raw.name]; ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"duplicate condition %q (%s, first defined in %s)", raw.name, raw.source, prev))
			continue
		}
		conditionSources[raw.name] = raw.source
		c, errs := compileCondition(raw)
		ve.Errors = append(ve.Errors, errs...)
		content.Conditions[raw.name] = c
	}

	return content, ve
}

func compilePreset(raw rawPreset) (types.Preset, []string) {
	var errs []string
	p := types.Preset{Name: raw.name}
	seen := map[string]bool{}
	for i, e := range raw.entries {
		v, err := toInt32(e.value)
		if err != nil {
			errs = append(errs, fmt.Sprintf("preset %q entry %d (%s): %v", raw.name, i+1, e.tag, err))
			continue
		}
		if e.tag != "" && seen[e.tag] {
			errs = append(errs, fmt.Sprintf("preset %q sets %s more than once", raw.name, e.tag))
			continue
		}
		seen[e.tag] = true
		p.Entries = append(p.Entries, types.PresetEntry{
			Name:  e.tag,
			Tag:   tag.Request(e.tag),
			Value: v,
		})
	}
	return p, errs
}

func compileCondition(raw rawCondition) (types.Condition, []string) {
	var errs []string
	c := types.Condition{Name: raw.name}

	group := func(label string, in []rawSimple) []types.SimpleCondition {
		var out []types.SimpleCondition
		for i, rs := range in {
			sc, err := compileSimple(rs)
			if err != nil {
				errs = append(errs, fmt.Sprintf("condition %q %s[%d]: %v", raw.name, label, i, err))
				continue
			}
			out = append(out, sc)
		}
		return out
	}
	c.And = group("all", raw.all)
	c.Or = group("any", raw.any)
	return c, errs
}

func compileSimple(rs rawSimple) (types.SimpleCondition, error) {
	if rs.op == "" {
		return types.SimpleCondition{}, fmt.Errorf("missing operator")
	}
	op, ok := rules.ParseOperator(rs.op)
	if !ok {
		return types.SimpleCondition{}, fmt.Errorf("unknown operator %q", rs.op)
	}
	sc := types.SimpleCondition{Tag: tag.Request(rs.tag), Operator: op}
	if rules.UsesValue(op) {
		if !rs.hasValue {
			return types.SimpleCondition{}, fmt.Errorf("operator %s needs a value", rules.OperatorString(op))
		}
		v, err := toInt32(rs.value)
		if err != nil {
			return types.SimpleCondition{}, err
		}
		sc.Wanted = v
	}
	return sc, nil
}

// sortedContentFiles returns files in name order, with init files first.
func sortedContentFiles(files []string) []string {
	out := append([]string(nil), files...)
	sort.Slice(out, func(i, j int) bool {
		ii, ij := isInitFile(out[i]), isInitFile(out[j])
		if ii != ij {
			return ii
		}
		return out[i] < out[j]
	})
	return out
}

func isInitFile(name string) bool {
	switch name {
	case "init.lua", "init.yaml", "init.yml":
		return true
	}
	return false
}
