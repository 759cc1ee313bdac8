package loader

import (
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Preset "name" { ["Quest.Step"] = 1 } or Preset "name" { {"Quest.Step", 1} }.
	// Curried: Preset("name") returns a function that takes a table.
	L.SetGlobal("Preset", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		source := coll.source
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.presets = append(coll.presets, rawPreset{
				name:    name,
				source:  source,
				entries: presetEntriesFromLua(tbl),
			})
			return 0
		}))
		return 1
	}))

	// Condition "name" { all = { ... }, any = { ... } }
	L.SetGlobal("Condition", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		source := coll.source
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.conditions = append(coll.conditions, rawCondition{
				name:   name,
				source: source,
				all:    simplesFromLua(getTable(tbl, "all")),
				any:    simplesFromLua(getTable(tbl, "any")),
			})
			return 0
		}))
		return 1
	}))
}

func registerConditionHelpers(L *lua.LState) {
	// Comparison helpers: Greater("Quest.Step", 2) etc.
	for name, op := range map[string]string{
		"Equals":         "==",
		"NotEquals":      "!=",
		"Greater":        ">",
		"GreaterOrEqual": ">=",
		"Less":           "<",
		"LessOrEqual":    "<=",
	} {
		op := op
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			t := L.CheckString(1)
			value := L.CheckNumber(2)
			tbl := L.NewTable()
			tbl.RawSetString("tag", lua.LString(t))
			tbl.RawSetString("op", lua.LString(op))
			tbl.RawSetString("value", value)
			L.Push(tbl)
			return 1
		}))
	}

	// Definition helpers: IsDefined("Quest.Step"), IsUndefined("Quest.Step").
	for name, op := range map[string]string{
		"IsDefined":   "defined",
		"IsUndefined": "undefined",
	} {
		op := op
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			t := L.CheckString(1)
			tbl := L.NewTable()
			tbl.RawSetString("tag", lua.LString(t))
			tbl.RawSetString("op", lua.LString(op))
			L.Push(tbl)
			return 1
		}))
	}
}

// presetEntriesFromLua reads array-form pairs first, in order, then keyed
// entries sorted by tag name.
func presetEntriesFromLua(tbl *lua.LTable) []rawEntry {
	var entries []rawEntry
	for i := 1; i <= tbl.MaxN(); i++ {
		pair, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			entries = append(entries, rawEntry{value: toGoValue(tbl.RawGetInt(i))})
			continue
		}
		name, _ := pair.RawGetInt(1).(lua.LString)
		entries = append(entries, rawEntry{tag: string(name), value: toGoValue(pair.RawGetInt(2))})
	}

	var keyed []rawEntry
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			keyed = append(keyed, rawEntry{tag: string(ks), value: toGoValue(v)})
		}
	})
	sort.Slice(keyed, func(i, j int) bool { return keyed[i].tag < keyed[j].tag })
	return append(entries, keyed...)
}

func simplesFromLua(tbl *lua.LTable) []rawSimple {
	if tbl == nil {
		return nil
	}
	var out []rawSimple
	for i := 1; i <= tbl.MaxN(); i++ {
		item, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			out = append(out, rawSimple{})
			continue
		}
		rs := rawSimple{
			tag: getString(item, "tag"),
			op:  getString(item, "op"),
		}
		if v := item.RawGetString("value"); v != lua.LNil {
			rs.value = toGoValue(v)
			rs.hasValue = true
		}
		out = append(out, rs)
	}
	return out
}
