package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrManifestMissing marks a dataset with no tiles.json. The viewer
// treats every tile as potentially present and lets fetch misses fall
// through to the live lane
var ErrManifestMissing = errors.New("tile manifest missing")

// Manifest is the set of statically rendered tiles, keyed "L/X/Y".
// A nil Manifest answers true for every key
type Manifest struct {
	keys map[string]struct{}
}

// Has reports whether a tile exists in the static store
func (m *Manifest) Has(key string) bool {
	if m == nil {
		return true
	}
	_, ok := m.keys[key]
	return ok
}

// ManifestFromKeys builds a manifest from explicit keys
func ManifestFromKeys(keys ...string) *Manifest {
	m := &Manifest{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		m.keys[k] = struct{}{}
	}
	return m
}

// Add records a tile that now exists in the static store. Successful
// live renders grow the manifest monotonically. No-op on the
// permissive nil manifest
func (m *Manifest) Add(key string) {
	if m == nil {
		return
	}
	m.keys[key] = struct{}{}
}

// Len reports the manifest size
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// LoadManifest reads datasets/<id>/tiles.json. A missing file returns
// (nil, ErrManifestMissing) so the caller can log the degraded mode once
// and continue with the permissive nil manifest
func LoadManifest(ctx context.Context, src Source, dsID string) (*Manifest, error) {
	b, err := src.Fetch(ctx, "datasets/"+dsID+"/tiles.json")
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrManifestMissing, dsID)
	}
	if err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", dsID, err)
	}

	// tiles.json is a bare array of "L/X/Y" keys; a wrapped
	// {"tiles": [...]} object is tolerated for older exports
	var keys []string
	if err := json.Unmarshal(b, &keys); err != nil {
		var file struct {
			Tiles []string `json:"tiles"`
		}
		if json.Unmarshal(b, &file) != nil || file.Tiles == nil {
			return nil, fmt.Errorf("decode manifest %s: %w", dsID, err)
		}
		keys = file.Tiles
	}
	m := &Manifest{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		m.keys[k] = struct{}{}
	}
	return m, nil
}
