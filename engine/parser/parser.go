// Package parser converts console lines into Command structs.
// Intentionally dumb: no grammar, just words and aliases.
package parser

import (
	"strings"

	"github.com/nathoo/factcore/types"
)

var verbAliases = map[string]string{
	// Long console names.
	"facts.changevalue": "set",
	"facts.getvalue":    "get",
	"facts.dump":        "dump",
	"facts.reset":       "reset",

	// Set / Add
	"change": "set",
	"inc":    "add",
	"incr":   "add",

	// Get
	"value": "get",
	"show":  "get",
	"print": "get",

	// Reset
	"clear": "reset",
	"zero":  "reset",

	// Listing
	"ls":   "tags",
	"list": "tags",
	"find": "tags",

	// Conditions
	"test":      "check",
	"eval":      "cond",
	"condition": "cond",

	// Presets
	"load":  "preset",
	"apply": "preset",

	// Watches
	"listen":   "watch",
	"follow":   "watch",
	"unlisten": "unwatch",
	"ignore":   "unwatch",

	// Miscellaneous
	"?": "help",
	"h": "help",
}

// Parse converts a raw console line into a Command. The verb is lowercased
// and resolved through aliases; arguments keep their case because fact tags
// are case-sensitive. Double quotes group words into one argument.
func Parse(input string) types.Command {
	words := split(strings.TrimSpace(input))
	if len(words) == 0 {
		return types.Command{}
	}

	verb := strings.ToLower(words[0])
	if alias, ok := verbAliases[verb]; ok {
		verb = alias
	}

	var args []string
	if len(words) > 1 {
		args = words[1:]
	}
	return types.Command{Verb: verb, Args: args}
}

// split breaks input on whitespace, keeping double-quoted runs together.
// An unterminated quote runs to the end of the line.
func split(input string) []string {
	var (
		words   []string
		current strings.Builder
		quoted  bool
		started bool
	)
	flush := func() {
		if started {
			words = append(words, current.String())
		}
		current.Reset()
		started = false
	}

	for _, r := range input {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case !quoted && (r == ' ' || r == '\t'):
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}
	flush()
	return words
}
