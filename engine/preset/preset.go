// Package preset applies named batches of fact values to a store.
// Each entry is one Set. No logic in presets.
package preset

import (
	"log"

	"github.com/nathoo/factcore/engine/facts"
	"github.com/nathoo/factcore/types"
)

// Apply sets every entry of p on store, in entry order, and returns how many
// entries were applied. Entries with an invalid tag are logged and skipped;
// the rest of the preset still applies.
func Apply(store *facts.Store, p *types.Preset, logger *log.Logger) int {
	if logger == nil {
		logger = log.Default()
	}
	if p == nil {
		logger.Printf("preset: nil preset")
		return 0
	}

	applied := 0
	for _, e := range p.Entries {
		if !e.Tag.IsValid() {
			logger.Printf("preset %s: entry %q has no valid fact tag, skipped", p.Name, e.Name)
			continue
		}
		store.ChangeValue(e.Tag, e.Value, types.Set)
		applied++
	}
	return applied
}

// ApplyAll applies presets in order, skipping nil ones. It returns the total
// number of entries applied.
func ApplyAll(store *facts.Store, presets []*types.Preset, logger *log.Logger) int {
	if logger == nil {
		logger = log.Default()
	}
	total := 0
	for i, p := range presets {
		if p == nil {
			logger.Printf("preset: skipping nil preset at index %d", i)
			continue
		}
		total += Apply(store, p, logger)
	}
	return total
}

// Lookup resolves preset names against content. Unknown names are returned
// separately so callers can report them.
func Lookup(content *types.Content, names []string) (found []*types.Preset, missing []string) {
	for _, name := range names {
		p, ok := content.Presets[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		found = append(found, &p)
	}
	return found, missing
}
