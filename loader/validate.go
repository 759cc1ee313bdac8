package loader

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/nathoo/factcore/engine/rules"
	"github.com/nathoo/factcore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks compiled content for problems that do not stop loading.
// Invalid fact tags are warnings: the preset loader and the evaluator skip
// them one entry at a time.
func validate(content *types.Content, ve *ValidationError) {
	for _, name := range sortedKeys(content.Presets) {
		p := content.Presets[name]
		if len(p.Entries) == 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("preset %q is empty", name))
		}
		for _, e := range p.Entries {
			if !e.Tag.IsValid() {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"preset %q: fact tag %q is not valid and will be skipped", name, e.Name))
			}
		}
	}

	for _, name := range sortedKeys(content.Conditions) {
		if err := rules.Validate(content.Conditions[name]); err != nil {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("condition %q: %v", name, err))
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, cmp.Compare[string])
	return keys
}
