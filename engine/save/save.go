// Package save implements serialization of the fact store: a JSON blob,
// zstd-compressed export files, and named save slots in SQLite.
package save

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/nathoo/factcore/engine/facts"
	"github.com/nathoo/factcore/engine/tag"
)

// Version is the current save format version.
const Version = 1

// SaveData is the JSON-serializable save format. Facts are keyed by tag name.
type SaveData struct {
	Version int              `json:"version"`
	Facts   map[string]int32 `json:"facts"`
}

// Save serializes every defined fact to JSON bytes. Keys come out sorted.
func Save(s *facts.Store) ([]byte, error) {
	data := SaveData{
		Version: Version,
		Facts:   map[string]int32{},
	}
	for t, v := range s.Export() {
		data.Facts[t.String()] = v
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Version > Version {
		return nil, fmt.Errorf("save version %d is newer than supported version %d", sd.Version, Version)
	}
	// Ensure the map is never nil after load.
	if sd.Facts == nil {
		sd.Facts = map[string]int32{}
	}
	return &sd, nil
}

// Apply replaces the store's facts wholesale with sd. Subscriptions are kept
// and no notifications fire. Each malformed tag name is logged and skipped.
// A nil logger uses log.Default().
func Apply(s *facts.Store, sd *SaveData, logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}
	next := make(map[tag.Tag]int32, len(sd.Facts))
	for name, v := range sd.Facts {
		if !tag.IsValidName(name) {
			logger.Printf("save: fact name %q is not a valid tag, skipped", name)
			continue
		}
		next[tag.Request(name)] = v
	}
	s.Replace(next)
}
